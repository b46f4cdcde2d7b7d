// Example is the central entity of the domain.
package core

import (
	"fmt"
	"strings"
)

// Example is one record of a dataset, keyed by the identifier of its source
// row or file. Features follow the dataset schema; nested dicts are
// map[string]any.
type Example struct {
	Key      string
	Features map[string]any
}

// Row is one record of a tabular metadata source, addressed by column name.
type Row struct {
	Line   int
	values map[string]string
}

// NewRow pairs a header with a record. Short records leave trailing columns unset.
func NewRow(line int, header, record []string) Row {
	values := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(record) {
			values[h] = record[i]
		}
	}
	return Row{Line: line, values: values}
}

// RowOf builds a row from a column map.
func RowOf(line int, values map[string]string) Row {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Row{Line: line, values: cp}
}

// Get returns the raw text of a column.
func (r Row) Get(column string) (string, error) {
	v, ok := r.values[column]
	if !ok {
		return "", fmt.Errorf("line %d: %w %q", r.Line, ErrMissingColumn, column)
	}
	return v, nil
}

// Lookup returns the raw text of a column and whether it exists.
func (r Row) Lookup(column string) (string, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Pick copies the named columns into a raw map suitable for Dict.Encode.
func (r Row) Pick(columns []string) (map[string]any, error) {
	out := make(map[string]any, len(columns))
	for _, c := range columns {
		v, err := r.Get(c)
		if err != nil {
			return nil, err
		}
		out[c] = v
	}
	return out, nil
}

// Len returns the number of columns in the row.
func (r Row) Len() int {
	return len(r.values)
}

// EventType represents the type of change in a watched directory.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change in a manual download directory.
type Event struct {
	Type      EventType
	Path      string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return strings.ToLower(string(e.Type)) + " " + e.Path
}

// Merge returns a row holding the columns of both rows. Columns already
// present in r win.
func (r Row) Merge(other Row) Row {
	values := make(map[string]string, len(r.values)+len(other.values))
	for k, v := range other.values {
		values[k] = v
	}
	for k, v := range r.values {
		values[k] = v
	}
	return Row{Line: r.Line, values: values}
}
