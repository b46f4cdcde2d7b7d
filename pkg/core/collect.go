package core

import (
	"fmt"
	"iter"
)

// DuplicatePolicy decides what happens when a key is yielded more than once.
// Generators never deduplicate; the policy is applied by the consumer.
type DuplicatePolicy string

const (
	// DuplicateError fails the pass on the first repeated key.
	DuplicateError DuplicatePolicy = "error"
	// DuplicateFirst keeps the first example of each key.
	DuplicateFirst DuplicatePolicy = "first"
	// DuplicateKeep passes every example through.
	DuplicateKeep DuplicatePolicy = "keep"
)

// ParseDuplicatePolicy validates a policy name.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(s); p {
	case DuplicateError, DuplicateFirst, DuplicateKeep:
		return p, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q (want error, first or keep)", s)
}

// Dedupe applies policy to seq.
func Dedupe(seq iter.Seq2[Example, error], policy DuplicatePolicy) iter.Seq2[Example, error] {
	if policy == DuplicateKeep {
		return seq
	}
	return func(yield func(Example, error) bool) {
		seen := make(map[string]bool)
		for ex, err := range seq {
			if err != nil {
				yield(Example{}, err)
				return
			}
			if seen[ex.Key] {
				if policy == DuplicateFirst {
					continue
				}
				yield(Example{}, fmt.Errorf("%w: %s", ErrDuplicateKey, ex.Key))
				return
			}
			seen[ex.Key] = true
			if !yield(ex, nil) {
				return
			}
		}
	}
}

// Collect drains seq under policy. Nothing is returned on error.
func Collect(seq iter.Seq2[Example, error], policy DuplicatePolicy) ([]Example, error) {
	var out []Example
	for ex, err := range Dedupe(seq, policy) {
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, nil
}
