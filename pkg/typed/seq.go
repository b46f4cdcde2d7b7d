package typed

import (
	"iter"

	"github.com/aretw0/galaxies/pkg/core"
)

// Seq decodes every example of seq. Iteration stops at the first error.
func Seq[T any](seq iter.Seq2[core.Example, error]) iter.Seq2[*Model[T], error] {
	return func(yield func(*Model[T], error) bool) {
		for ex, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			m, err := Decode[T](ex)
			if !yield(m, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains seq into a slice.
func Collect[T any](seq iter.Seq2[core.Example, error]) ([]*Model[T], error) {
	var out []*Model[T]
	for m, err := range Seq[T](seq) {
		if err != nil {
			return out, err
		}
		out = append(out, m)
	}
	return out, nil
}
