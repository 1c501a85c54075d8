// Package reflection implements the default LM-driven mutation engine: it
// turns a traced minibatch evaluation of a parent candidate into per-component
// feedback and asks a reflection language model for improved component texts.
package reflection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/XiaoConstantine/gepa-go/pkg/core"
	"github.com/XiaoConstantine/gepa-go/pkg/errors"
	"github.com/XiaoConstantine/gepa-go/pkg/logging"
)

// feedbackPlaceholder stands in for feedback examples that could not be
// rendered. Summary rendering is an observability aid and must never abort
// an iteration.
const feedbackPlaceholder = "(feedback example could not be rendered)"

// Engine proposes child candidates. When the adapter implements
// core.Proposer the whole mutation step is delegated to it; otherwise the
// engine runs one reflection LM call per targeted component, strictly in
// selector order.
type Engine struct {
	adapter core.Adapter
	lm      core.ReflectionLM
	hint    string
	logger  *logging.Logger
}

// NewEngine creates a mutation engine. hint is optional free-text steering
// appended to every reflection prompt; lm may be nil only when the adapter
// implements core.Proposer.
func NewEngine(adapter core.Adapter, lm core.ReflectionLM, hint string) *Engine {
	return &Engine{
		adapter: adapter,
		lm:      lm,
		hint:    hint,
		logger:  logging.GetLogger(),
	}
}

// Proposal is the outcome of one mutation step.
type Proposal struct {
	// Child is the proposed candidate. Components without feedback keep the
	// parent's text, so Child may equal the parent.
	Child core.Candidate
	// ParentEval is the traced minibatch evaluation of the parent used to
	// build the feedback. The caller owns budget accounting for it.
	ParentEval *core.EvalBatch
}

// Propose evaluates the parent on the minibatch with traces captured, builds
// the per-component reflective dataset, and produces a child candidate with
// the targeted components rewritten. The fixed component-name set is never
// altered.
func (e *Engine) Propose(ctx context.Context, parent core.Candidate, batch []core.Instance, components []string) (*Proposal, error) {
	eval, err := e.adapter.Evaluate(ctx, batch, parent, true)
	if err != nil {
		return nil, errors.Wrap(err, errors.EvaluationFailed, "traced minibatch evaluation failed")
	}

	dataset, err := e.adapter.MakeReflectiveDataset(ctx, parent, eval, batch, components)
	if err != nil {
		return nil, errors.Wrap(err, errors.ReflectionFailed, "building reflective dataset failed")
	}

	if proposer, ok := e.adapter.(core.Proposer); ok {
		child, err := proposer.ProposeNewTexts(ctx, parent, dataset, components)
		if err != nil {
			return nil, errors.Wrap(err, errors.ReflectionFailed, "adapter proposal failed")
		}
		return &Proposal{Child: child, ParentEval: eval}, nil
	}

	if e.lm == nil {
		return nil, errors.New(errors.InvalidConfig, "no reflection model and adapter does not propose texts")
	}

	child := parent.Clone()
	for _, name := range components {
		examples := dataset[name]
		if len(examples) == 0 {
			// Nothing to learn from; the component keeps its parent text.
			continue
		}

		current, ok := parent.Text(name)
		if !ok {
			continue
		}

		prompt := e.buildPrompt(name, current, examples)
		e.logger.Debug(ctx, "reflecting on component %q with %d feedback examples", name, len(examples))

		result, err := e.lm.Reflect(ctx, prompt)
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.ReflectionFailed, "reflection model call failed"),
				errors.Fields{"component": name},
			)
		}

		child.Texts[name] = trimProposedText(result)
	}

	return &Proposal{Child: child, ParentEval: eval}, nil
}

// buildPrompt composes the mutation request for one component: its current
// text, the rendered feedback examples, and the optional steering hint.
func (e *Engine) buildPrompt(component, current string, examples []core.ReflectiveExample) string {
	var b strings.Builder

	b.WriteString("You are improving one text component of a larger system based on feedback from recent executions.\n\n")
	fmt.Fprintf(&b, "Component name: %s\n\nCurrent text:\n```\n%s\n```\n\n", component, current)

	b.WriteString("Feedback from execution traces:\n")
	for i, example := range examples {
		fmt.Fprintf(&b, "Example %d:\n%s\n", i+1, renderExample(example))
	}

	if e.hint != "" {
		fmt.Fprintf(&b, "\nAdditional guidance: %s\n", e.hint)
	}

	b.WriteString("\nWrite an improved version of the component text that addresses the feedback. ")
	b.WriteString("Respond with the new text only, no commentary.")

	return b.String()
}

// renderExample serializes a feedback example for the prompt, degrading to a
// placeholder when it cannot be rendered.
func renderExample(example core.ReflectiveExample) string {
	data, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		return feedbackPlaceholder
	}
	return string(data)
}

// trimProposedText strips whitespace and a surrounding code fence, a common
// reflection-model response habit.
func trimProposedText(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop a language tag on the opening fence line.
		if idx := strings.IndexByte(text, '\n'); idx >= 0 && !strings.ContainsAny(text[:idx], " \t") {
			text = text[idx+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
