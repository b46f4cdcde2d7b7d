package core

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"
)

// Stats counts the outcome of a generation pass.
type Stats struct {
	Seen     int `json:"seen"`
	Yielded  int `json:"yielded"`
	Skipped  int `json:"skipped"`
	Filtered int `json:"filtered"`
}

// Role is a file associated with each row, e.g. one camera orientation.
// The located path is stored under Field.
type Role struct {
	Field    string
	Locator  Locator
	Optional bool
}

// RowJoin generates examples from a tabular-primary dataset: every row is
// matched against its files through the Roles. A row missing a required
// role is skipped; a missing optional role leaves its field out.
type RowJoin struct {
	Schema    Dict
	KeyColumn string
	Roles     []Role
	// Filter drops rows before any file lookup. Nil keeps every row.
	Filter func(Row) (bool, error)
	// Fields maps a row onto the raw, non-file fields of the schema.
	Fields func(key string, row Row) (map[string]any, error)
	Logger *slog.Logger
	// Stats receives the counters of each pass. Nil falls back to the
	// Stats attached to the context, if any.
	Stats *Stats
}

// Generate returns the lazy example sequence for the rows of src.
// A resolution miss is skipped; any other error ends the sequence.
func (j *RowJoin) Generate(ctx context.Context, src RowSource) iter.Seq2[Example, error] {
	return func(yield func(Example, error) bool) {
		stats := statsFor(ctx, j.Stats)
		logger := orDiscard(j.Logger)

		for row, err := range src.Rows(ctx) {
			if err != nil {
				yield(Example{}, err)
				return
			}
			stats.Seen++

			key, err := row.Get(j.KeyColumn)
			if err != nil {
				yield(Example{}, err)
				return
			}

			if j.Filter != nil {
				keep, err := j.Filter(row)
				if err != nil {
					yield(Example{}, fmt.Errorf("example %s: %w", key, err))
					return
				}
				if !keep {
					stats.Filtered++
					continue
				}
			}

			files, missing := j.resolve(key)
			if missing != "" {
				stats.Skipped++
				logger.Debug("skipping row", "key", key, "line", row.Line, "missing", missing)
				continue
			}

			raw := make(map[string]any)
			if j.Fields != nil {
				raw, err = j.Fields(key, row)
				if err != nil {
					yield(Example{}, fmt.Errorf("example %s: %w", key, err))
					return
				}
				if raw == nil {
					raw = make(map[string]any)
				}
			}
			for field, path := range files {
				raw[field] = path
			}

			ex, err := Encode(j.Schema, key, raw)
			if err != nil {
				yield(Example{}, err)
				return
			}
			stats.Yielded++
			if !yield(ex, nil) {
				return
			}
		}
	}
}

// resolve locates every role. It reports the first required role it could
// not find, probing roles in declaration order.
func (j *RowJoin) resolve(key string) (map[string]string, string) {
	files := make(map[string]string, len(j.Roles))
	for _, role := range j.Roles {
		path, ok := role.Locator.Locate(key)
		if !ok {
			if role.Optional {
				continue
			}
			return nil, role.Field
		}
		files[role.Field] = path
	}
	return files, ""
}

// KeyFunc derives an example key from a file path. ok is false when the
// filename does not follow the dataset's naming convention.
type KeyFunc func(path string) (key string, ok bool)

// StemKey keys a file by its name up to the first ".".
func StemKey(path string) (string, bool) {
	stem, _, _ := strings.Cut(filepath.Base(path), ".")
	return stem, stem != ""
}

// NumericStemKey is StemKey restricted to stems made of decimal digits.
func NumericStemKey(path string) (string, bool) {
	stem, ok := StemKey(path)
	if !ok {
		return "", false
	}
	for _, r := range stem {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return stem, true
}

// SegmentKey keys a file by segment i of its name split on sep.
func SegmentKey(sep string, i int) KeyFunc {
	return func(path string) (string, bool) {
		parts := strings.Split(filepath.Base(path), sep)
		if i < 0 || i >= len(parts) || parts[i] == "" {
			return "", false
		}
		return parts[i], true
	}
}

// FileJoin generates examples from a file-primary dataset: every discovered
// file is keyed by its name and, when Index is set, joined with the rows
// sharing that key. Files without rows are skipped; several rows yield
// several examples with the same key.
type FileJoin struct {
	Schema Dict
	Key    KeyFunc
	Index  func(key string) []Row
	// Fields maps a file and its row onto the raw schema fields. Row is the
	// zero Row when Index is nil.
	Fields func(key, path string, row Row) (map[string]any, error)
	Logger *slog.Logger
	Stats  *Stats
}

// Generate returns the lazy example sequence for the files of src.
func (j *FileJoin) Generate(ctx context.Context, src FileSource) iter.Seq2[Example, error] {
	return func(yield func(Example, error) bool) {
		stats := statsFor(ctx, j.Stats)
		logger := orDiscard(j.Logger)

		for path, err := range src.Files(ctx) {
			if err != nil {
				yield(Example{}, err)
				return
			}
			stats.Seen++

			key, ok := j.Key(path)
			if !ok {
				stats.Skipped++
				logger.Debug("skipping file with unexpected name", "path", path)
				continue
			}

			rows := []Row{{}}
			if j.Index != nil {
				rows = j.Index(key)
				if len(rows) == 0 {
					stats.Skipped++
					logger.Debug("skipping file without metadata", "key", key, "path", path)
					continue
				}
			}

			for _, row := range rows {
				raw, err := j.Fields(key, path, row)
				if err != nil {
					yield(Example{}, fmt.Errorf("example %s: %w", key, err))
					return
				}
				ex, err := Encode(j.Schema, key, raw)
				if err != nil {
					yield(Example{}, err)
					return
				}
				stats.Yielded++
				if !yield(ex, nil) {
					return
				}
			}
		}
	}
}

// Encode builds a keyed example from raw fields using schema.
func Encode(schema Dict, key string, raw map[string]any) (Example, error) {
	v, err := schema.Encode(raw)
	if err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			fe.Key = key
			return Example{}, fe
		}
		return Example{}, fmt.Errorf("example %s: %w", key, err)
	}
	return Example{Key: key, Features: v.(map[string]any)}, nil
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
