package core

import (
	"context"
	"iter"
)

// Locator resolves an identifier to the path of an existing file.
// It only checks existence and never fails: a miss is ("", false).
type Locator interface {
	Locate(id string) (string, bool)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(id string) (string, bool)

func (f LocatorFunc) Locate(id string) (string, bool) {
	return f(id)
}

// RowSource yields the rows of a tabular metadata source in source order.
type RowSource interface {
	Rows(ctx context.Context) iter.Seq2[Row, error]
}

// FileSource yields file paths discovered under a directory.
type FileSource interface {
	Files(ctx context.Context) iter.Seq2[string, error]
}

// Generator produces the examples of a dataset from a manual download directory.
type Generator interface {
	Generate(ctx context.Context, manualDir string) iter.Seq2[Example, error]
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, manualDir string) iter.Seq2[Example, error]

func (f GeneratorFunc) Generate(ctx context.Context, manualDir string) iter.Seq2[Example, error] {
	return f(ctx, manualDir)
}

// Rows adapts a slice to a RowSource.
type Rows []Row

func (rs Rows) Rows(ctx context.Context) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for _, r := range rs {
			if err := ctx.Err(); err != nil {
				yield(Row{}, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Files adapts a slice of paths to a FileSource.
type Files []string

func (fs Files) Files(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, f := range fs {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}
