package logging

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput records entries for assertions.
type captureOutput struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (c *captureOutput) Write(e LogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return nil
}

func (c *captureOutput) Sync() error  { return nil }
func (c *captureOutput) Close() error { return nil }

func (c *captureOutput) all() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LogEntry(nil), c.entries...)
}

func TestSeverityFiltering(t *testing.T) {
	out := &captureOutput{}
	logger := NewLogger(Config{Severity: WARN, Outputs: []Output{out}})
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	entries := out.all()
	require.Len(t, entries, 2)
	assert.Equal(t, WARN, entries[0].Severity)
	assert.Equal(t, ERROR, entries[1].Severity)
}

func TestMessageFormatting(t *testing.T) {
	out := &captureOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

	logger.Info(context.Background(), "accepted candidate %d with score %.2f", 3, 0.75)

	entries := out.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "accepted candidate 3 with score 0.75", entries[0].Message)
	assert.NotEmpty(t, entries[0].File)
	assert.NotZero(t, entries[0].Line)
}

func TestContextCarriesRunIDAndIteration(t *testing.T) {
	out := &captureOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

	ctx := WithIteration(WithRunID(context.Background(), "run-42"), 7)
	logger.Info(ctx, "step done")

	entries := out.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "run-42", entries[0].RunID)
	assert.Equal(t, 7, entries[0].Iteration)
}

func TestDefaultFieldsAttached(t *testing.T) {
	out := &captureOutput{}
	logger := NewLogger(Config{
		Severity:      DEBUG,
		Outputs:       []Output{out},
		DefaultFields: map[string]interface{}{"component": "optimizer"},
	})

	logger.Info(context.Background(), "hello")

	entries := out.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "optimizer", entries[0].Fields["component"])
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("DEBUG"))
	assert.Equal(t, WARN, ParseSeverity("WARN"))
	assert.Equal(t, FATAL, ParseSeverity("FATAL"))
	assert.Equal(t, INFO, ParseSeverity("garbage"))
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "ERROR", ERROR.String())
	assert.Equal(t, "DEBUG", DEBUG.String())
}

func TestFormatFieldsTruncatesPrompts(t *testing.T) {
	long := strings.Repeat("x", 300)
	formatted := formatFields(map[string]interface{}{"prompt": long})

	assert.Less(t, len(formatted), 150)
	assert.Contains(t, formatted, "...")

	// other fields are not truncated
	formatted = formatFields(map[string]interface{}{"detail": long})
	assert.Contains(t, formatted, long)
}

func TestGlobalLoggerReplacement(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	out := &captureOutput{}
	replacement := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})
	SetLogger(replacement)

	GetLogger().Info(context.Background(), "through the global")
	require.Len(t, out.all(), 1)
}
