// Package datasets loads training and validation instances from local files.
// Instances are free-form named fields; JSON lines and Parquet layouts are
// supported.
package datasets

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet/file"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"

	"github.com/XiaoConstantine/gepa-go/pkg/core"
	"github.com/XiaoConstantine/gepa-go/pkg/errors"
)

// Load reads instances from the given path, dispatching on extension:
// .jsonl/.json for JSON lines, .parquet for Parquet.
func Load(path string) ([]core.Instance, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".json":
		return LoadJSONL(path)
	case ".parquet":
		return LoadParquet(path)
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unsupported dataset format"),
			errors.Fields{"path": path},
		)
	}
}

// LoadJSONL reads one JSON object per line; blank lines are skipped.
func LoadJSONL(path string) ([]core.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "opening dataset")
	}
	defer f.Close()

	var instances []core.Instance
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var instance core.Instance
		if err := json.Unmarshal([]byte(text), &instance); err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.InvalidInput, "parsing dataset line"),
				errors.Fields{"path": path, "line": line},
			)
		}
		instances = append(instances, instance)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "reading dataset")
	}
	return instances, nil
}

// LoadParquet reads every row of a Parquet file into an instance, one field
// per column. Unsupported column types are rendered through the column's
// string form.
func LoadParquet(path string) ([]core.Instance, error) {
	reader, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "opening parquet file")
	}
	defer reader.Close()

	arrowReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "reading parquet file")
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "reading parquet table")
	}
	defer table.Release()

	schema := table.Schema()
	instances := make([]core.Instance, table.NumRows())
	for i := range instances {
		instances[i] = make(core.Instance, len(schema.Fields()))
	}

	for col := 0; col < int(table.NumCols()); col++ {
		name := schema.Field(col).Name
		row := 0
		chunks := table.Column(col).Data()
		for _, chunk := range chunks.Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				instances[row][name] = columnValue(chunk, i)
				row++
			}
		}
	}

	return instances, nil
}

func columnValue(chunk arrow.Array, i int) interface{} {
	if chunk.IsNull(i) {
		return nil
	}
	switch v := chunk.(type) {
	case *array.String:
		return v.Value(i)
	case *array.LargeString:
		return v.Value(i)
	case *array.Int64:
		return v.Value(i)
	case *array.Int32:
		return int64(v.Value(i))
	case *array.Float64:
		return v.Value(i)
	case *array.Float32:
		return float64(v.Value(i))
	case *array.Boolean:
		return v.Value(i)
	default:
		return chunk.ValueStr(i)
	}
}
