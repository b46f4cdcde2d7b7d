package fs

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/aretw0/galaxies/pkg/core"
)

// CSVSource streams the rows of a CSV file with a header line.
// The file is opened on every pass and closed when the pass ends.
type CSVSource struct {
	Path string
	// Comment, when set, marks lines to ignore (e.g. '#').
	Comment rune
}

// Rows implements core.RowSource.
func (s CSVSource) Rows(ctx context.Context) iter.Seq2[core.Row, error] {
	return func(yield func(core.Row, error) bool) {
		f, err := os.Open(s.Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				err = fmt.Errorf("%w: %s", core.ErrNoManualData, s.Path)
			}
			yield(core.Row{}, err)
			return
		}
		defer f.Close()

		for row, err := range ReadRows(ctx, f, s.Comment) {
			if err != nil {
				yield(core.Row{}, fmt.Errorf("%s: %w", s.Path, err))
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

// ReadRows streams the records of r as rows addressed by the header line.
func ReadRows(ctx context.Context, r io.Reader, comment rune) iter.Seq2[core.Row, error] {
	return func(yield func(core.Row, error) bool) {
		reader := newReader(r, comment)
		header, err := readHeader(reader)
		if err != nil {
			yield(core.Row{}, err)
			return
		}

		for {
			if err := ctx.Err(); err != nil {
				yield(core.Row{}, err)
				return
			}
			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(core.Row{}, fmt.Errorf("failed to read csv row: %w", err))
				return
			}
			line, _ := reader.FieldPos(0)
			if !yield(core.NewRow(line, header, record), nil) {
				return
			}
		}
	}
}

func newReader(r io.Reader, comment rune) *csv.Reader {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comment = comment
	reader.FieldsPerRecord = -1
	return reader
}

func readHeader(reader *csv.Reader) ([]string, error) {
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty csv: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return header, nil
}

// Table is a CSV held in memory.
type Table struct {
	Header  []string
	Records []core.Row
}

// ReadTable reads all of r.
func ReadTable(ctx context.Context, r io.Reader, comment rune) (*Table, error) {
	reader := newReader(r, comment)
	header, err := readHeader(reader)
	if err != nil {
		return nil, err
	}

	t := &Table{Header: header}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		t.Records = append(t.Records, core.NewRow(line, header, record))
	}
}

// LoadTable reads the CSV file at path.
func LoadTable(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadTable(ctx, f, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Rows implements core.RowSource.
func (t *Table) Rows(ctx context.Context) iter.Seq2[core.Row, error] {
	return core.Rows(t.Records).Rows(ctx)
}

// Has reports whether the table has column.
func (t *Table) Has(column string) bool {
	for _, h := range t.Header {
		if h == column {
			return true
		}
	}
	return false
}

// Write encodes the table as CSV. Columns a row lacks are written empty.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	record := make([]string, len(t.Header))
	for _, row := range t.Records {
		for i, h := range t.Header {
			record[i], _ = row.Lookup(h)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path atomically.
func (t *Table) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := t.Write(&buf); err != nil {
		return err
	}
	return WriteFileAtomic(path, buf.Bytes(), 0644)
}

// OuterMerge joins t and other on column, keeping unmatched rows of both
// sides. Shared columns keep the value from t.
func (t *Table) OuterMerge(other *Table, column string) (*Table, error) {
	if !t.Has(column) || !other.Has(column) {
		return nil, fmt.Errorf("outer merge: %w %q", core.ErrMissingColumn, column)
	}
	index, err := IndexBy(context.Background(), other, column)
	if err != nil {
		return nil, err
	}

	merged := &Table{Header: append([]string(nil), t.Header...)}
	for _, h := range other.Header {
		if !t.Has(h) {
			merged.Header = append(merged.Header, h)
		}
	}

	matched := make(map[string]bool)
	for _, row := range t.Records {
		key, _ := row.Lookup(column)
		rights := index[key]
		if len(rights) == 0 {
			merged.Records = append(merged.Records, row)
			continue
		}
		matched[key] = true
		for _, right := range rights {
			merged.Records = append(merged.Records, row.Merge(right))
		}
	}
	for _, row := range other.Records {
		if key, _ := row.Lookup(column); !matched[key] {
			merged.Records = append(merged.Records, row)
		}
	}
	return merged, nil
}

// Index groups rows by the value of one column.
type Index map[string][]core.Row

// IndexBy reads src fully and groups its rows by column.
func IndexBy(ctx context.Context, src core.RowSource, column string) (Index, error) {
	index := make(Index)
	for row, err := range src.Rows(ctx) {
		if err != nil {
			return nil, err
		}
		key, err := row.Get(column)
		if err != nil {
			return nil, err
		}
		index[key] = append(index[key], row)
	}
	return index, nil
}

// Lookup returns the rows for key in source order.
func (ix Index) Lookup(key string) []core.Row {
	return ix[key]
}

// InnerMerge pairs every row of left with the rows of right whose key equals
// the value of leftColumn. Unmatched left rows are dropped.
func InnerMerge(left core.RowSource, leftColumn string, right Index) core.RowSource {
	return mergeSource{left: left, column: leftColumn, right: right}
}

type mergeSource struct {
	left   core.RowSource
	column string
	right  Index
}

func (m mergeSource) Rows(ctx context.Context) iter.Seq2[core.Row, error] {
	return func(yield func(core.Row, error) bool) {
		for row, err := range m.left.Rows(ctx) {
			if err != nil {
				yield(core.Row{}, err)
				return
			}
			key, err := row.Get(m.column)
			if err != nil {
				yield(core.Row{}, err)
				return
			}
			for _, other := range m.right[key] {
				if !yield(row.Merge(other), nil) {
					return
				}
			}
		}
	}
}
