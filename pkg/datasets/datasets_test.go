package datasets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/gepa-go/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSONL(t *testing.T) {
	path := writeFile(t, "train.jsonl", `{"question": "2+2", "answer": "4"}

{"question": "3+3", "answer": "6", "difficulty": 1}
`)

	instances, err := LoadJSONL(path)
	require.NoError(t, err)
	require.Len(t, instances, 2, "blank lines are skipped")

	assert.Equal(t, "2+2", instances[0]["question"])
	assert.Equal(t, "4", instances[0]["answer"])
	assert.Equal(t, float64(1), instances[1]["difficulty"])
}

func TestLoadJSONLReportsLineNumber(t *testing.T) {
	path := writeFile(t, "bad.jsonl", `{"ok": true}
{broken`)

	_, err := LoadJSONL(path)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
	assert.Contains(t, err.Error(), "line=2")
}

func TestLoadJSONLMissingFile(t *testing.T) {
	_, err := LoadJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	path := writeFile(t, "data.JSONL", `{"x": 1}`)

	instances, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, instances, 1)

	_, err = Load("data.csv")
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestLoadEmptyJSONL(t *testing.T) {
	path := writeFile(t, "empty.jsonl", "")
	instances, err := LoadJSONL(path)
	require.NoError(t, err)
	assert.Empty(t, instances)
}
