package fs

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/galaxies/pkg/core"
)

// Serializer writes a stream of examples in one format.
type Serializer interface {
	// Write encodes one example.
	Write(ex core.Example) error
	// Flush writes any buffered data.
	Flush() error
}

// Formats lists the names accepted by NewSerializer.
var Formats = []string{"jsonl", "yaml", "csv"}

// NewSerializer returns a serializer for format writing to w. The schema
// fixes the column order of CSV output.
func NewSerializer(format string, w io.Writer, schema core.Dict) (Serializer, error) {
	switch format {
	case "jsonl", "json":
		return &JSONLinesSerializer{enc: json.NewEncoder(w)}, nil
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &YAMLSerializer{enc: enc}, nil
	case "csv":
		return NewCSVSerializer(w, schema), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %v)", format, Formats)
	}
}

// --- JSON Lines Serializer ---

// JSONLinesSerializer writes one {"key", "features"} object per line.
// NaN and infinities, which JSON cannot represent, are written as null.
type JSONLinesSerializer struct {
	enc *json.Encoder
}

type jsonExample struct {
	Key      string `json:"key"`
	Features any    `json:"features"`
}

func (s *JSONLinesSerializer) Write(ex core.Example) error {
	return s.enc.Encode(jsonExample{Key: ex.Key, Features: JSONSafe(ex.Features)})
}

func (s *JSONLinesSerializer) Flush() error {
	return nil
}

// JSONSafe replaces NaN and infinities with nil, recursively.
func JSONSafe(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	case float32:
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = JSONSafe(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = JSONSafe(e)
		}
		return out
	}
	return v
}

// --- YAML Serializer ---

// YAMLSerializer writes one document per example. NaN is kept as .nan.
type YAMLSerializer struct {
	enc *yaml.Encoder
}

type yamlExample struct {
	Key      string         `yaml:"key"`
	Features map[string]any `yaml:"features"`
}

func (s *YAMLSerializer) Write(ex core.Example) error {
	return s.enc.Encode(yamlExample{Key: ex.Key, Features: ex.Features})
}

func (s *YAMLSerializer) Flush() error {
	return s.enc.Close()
}

// --- CSV Serializer ---

// CSVSerializer flattens examples into rows. Nested dict fields become
// "parent/child" columns, sequences are JSON arrays, images are their path
// and NaN is an empty cell.
type CSVSerializer struct {
	w       *csv.Writer
	columns []string
	wrote   bool
}

// NewCSVSerializer derives the columns from schema. Without a schema the
// columns of the first example are used, sorted.
func NewCSVSerializer(w io.Writer, schema core.Dict) *CSVSerializer {
	return &CSVSerializer{w: csv.NewWriter(w), columns: flatNames("", schema)}
}

func flatNames(prefix string, d core.Dict) []string {
	var names []string
	for _, f := range d.Fields {
		name := prefix + f.Name
		if nested, ok := f.Feature.(core.Dict); ok {
			names = append(names, flatNames(name+"/", nested)...)
			continue
		}
		names = append(names, name)
	}
	return names
}

func (s *CSVSerializer) Write(ex core.Example) error {
	flat := make(map[string]string)
	if err := flatten("", ex.Features, flat); err != nil {
		return fmt.Errorf("example %s: %w", ex.Key, err)
	}

	if !s.wrote {
		if len(s.columns) == 0 {
			for k := range flat {
				s.columns = append(s.columns, k)
			}
			sort.Strings(s.columns)
		}
		if err := s.w.Write(append([]string{"key"}, s.columns...)); err != nil {
			return err
		}
		s.wrote = true
	}

	record := make([]string, 0, len(s.columns)+1)
	record = append(record, ex.Key)
	for _, c := range s.columns {
		record = append(record, flat[c])
	}
	return s.w.Write(record)
}

func (s *CSVSerializer) Flush() error {
	s.w.Flush()
	return s.w.Error()
}

func flatten(prefix string, v any, out map[string]string) error {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			if err := flatten(prefix+k+"/", e, out); err != nil {
				return err
			}
		}
		return nil
	}

	key := prefix[:len(prefix)-1]
	s, err := MarshalCSVValue(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	out[key] = s
	return nil
}

// MarshalCSVValue renders one leaf feature value as a cell.
func MarshalCSVValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float32:
		if math.IsNaN(float64(x)) {
			return "", nil
		}
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		if math.IsNaN(x) {
			return "", nil
		}
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case core.FileRef:
		if x.HDU > 0 {
			return x.Path + "[" + strconv.Itoa(x.HDU) + "]", nil
		}
		return x.Path, nil
	case []any:
		b, err := json.Marshal(JSONSafe(x))
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(x), nil
	}
}
