// Package metrics provides ready-made scoring functions for the default
// adapter. Each constructor binds the instance field holding the expected
// answer and returns an adapters.MetricFunc.
package metrics

import (
	"fmt"
	"strings"

	"github.com/XiaoConstantine/gepa-go/pkg/adapters"
	"github.com/XiaoConstantine/gepa-go/pkg/core"
)

// ExactMatch scores 1 when the output equals the expected answer after
// whitespace trimming and case folding, 0 otherwise.
func ExactMatch(answerKey string) adapters.MetricFunc {
	return func(instance core.Instance, output interface{}) float64 {
		expected, actual, ok := answerPair(instance, answerKey, output)
		if !ok {
			return 0
		}
		if normalize(actual) == normalize(expected) {
			return 1
		}
		return 0
	}
}

// Contains scores 1 when the output contains the expected answer as a
// substring, case-insensitively. Useful for free-form model output that
// embeds the answer in prose.
func Contains(answerKey string) adapters.MetricFunc {
	return func(instance core.Instance, output interface{}) float64 {
		expected, actual, ok := answerPair(instance, answerKey, output)
		if !ok {
			return 0
		}
		if strings.Contains(normalize(actual), normalize(expected)) {
			return 1
		}
		return 0
	}
}

// TokenF1 scores the token-level F1 overlap between the output and the
// expected answer, in [0, 1].
func TokenF1(answerKey string) adapters.MetricFunc {
	return func(instance core.Instance, output interface{}) float64 {
		expected, actual, ok := answerPair(instance, answerKey, output)
		if !ok {
			return 0
		}

		expectedTokens := strings.Fields(normalize(expected))
		actualTokens := strings.Fields(normalize(actual))
		if len(expectedTokens) == 0 && len(actualTokens) == 0 {
			return 1
		}
		if len(expectedTokens) == 0 || len(actualTokens) == 0 {
			return 0
		}

		overlap := countOverlap(expectedTokens, actualTokens)
		if overlap == 0 {
			return 0
		}
		precision := float64(overlap) / float64(len(actualTokens))
		recall := float64(overlap) / float64(len(expectedTokens))
		return 2 * precision * recall / (precision + recall)
	}
}

// ByName resolves a metric constructor by its configured name.
func ByName(name, answerKey string) (adapters.MetricFunc, bool) {
	switch name {
	case "exact":
		return ExactMatch(answerKey), true
	case "contains":
		return Contains(answerKey), true
	case "f1":
		return TokenF1(answerKey), true
	default:
		return nil, false
	}
}

func answerPair(instance core.Instance, answerKey string, output interface{}) (expected, actual string, ok bool) {
	raw, found := instance[answerKey]
	if !found || raw == nil || output == nil {
		return "", "", false
	}
	return fmt.Sprintf("%v", raw), fmt.Sprintf("%v", output), true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func countOverlap(a, b []string) int {
	counts := make(map[string]int, len(a))
	for _, tok := range a {
		counts[tok]++
	}
	overlap := 0
	for _, tok := range b {
		if counts[tok] > 0 {
			counts[tok]--
			overlap++
		}
	}
	return overlap
}
