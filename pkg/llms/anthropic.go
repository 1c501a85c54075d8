// Package llms provides the language model clients gepa-go ships with. The
// Anthropic client serves as both the reflection model and, wrapped in an
// adapter, the task model.
package llms

import (
	"context"
	stderrors "errors"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/XiaoConstantine/gepa-go/pkg/errors"
	"github.com/XiaoConstantine/gepa-go/pkg/logging"
)

const defaultMaxTokens = 1024

// Response is a generated completion with its token usage.
type Response struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// AnthropicLM is a thin client over the Anthropic messages API.
type AnthropicLM struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int
	logger    *logging.Logger
}

// NewAnthropicLM creates a client for the given model. An empty apiKey falls
// back to the ANTHROPIC_API_KEY environment variable; maxTokens <= 0 uses the
// default.
func NewAnthropicLM(apiKey, model string, maxTokens int) (*AnthropicLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New(errors.InvalidConfig, "Anthropic API key not provided and ANTHROPIC_API_KEY not set")
	}
	if model == "" {
		return nil, errors.New(errors.InvalidConfig, "Anthropic model name is required")
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicLM{
		client:    &client,
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		logger:    logging.GetLogger(),
	}, nil
}

// Generate sends a single user message and returns the text completion.
func (a *AnthropicLM) Generate(ctx context.Context, prompt string) (*Response, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: a.model,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
		MaxTokens: int64(a.maxTokens),
	})

	if err != nil {
		var apiErr *anthropic.Error
		if stderrors.As(err, &apiErr) {
			a.logger.Error(ctx, "Anthropic API error: status code %d", apiErr.StatusCode)
		}
		return nil, errors.WithFields(
			errors.Wrap(err, errors.EvaluationFailed, "Anthropic generation failed"),
			errors.Fields{"model": string(a.model)})
	}

	if message == nil || len(message.Content) == 0 {
		return nil, errors.New(errors.EvaluationFailed, "received empty content from Anthropic API")
	}

	var text string
	if block := message.Content[0]; block.Type == "text" {
		text = block.Text
	}

	a.logger.Debug(ctx, "Anthropic response: %d prompt tokens, %d completion tokens",
		message.Usage.InputTokens, message.Usage.OutputTokens)

	return &Response{
		Text:             text,
		PromptTokens:     int(message.Usage.InputTokens),
		CompletionTokens: int(message.Usage.OutputTokens),
	}, nil
}

// Reflect implements core.ReflectionLM.
func (a *AnthropicLM) Reflect(ctx context.Context, prompt string) (string, error) {
	resp, err := a.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
