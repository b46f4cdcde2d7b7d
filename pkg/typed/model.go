// Package typed decodes examples into caller-defined structs.
package typed

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/galaxies/pkg/core"
)

// Model is a typed view of an example.
type Model[T any] struct {
	Key  string
	Data T
}

// Decode maps the features of ex onto T using its yaml tags. The features
// are round-tripped through YAML, which keeps NaN values intact.
func Decode[T any](ex core.Example) (*Model[T], error) {
	raw, err := yaml.Marshal(ex.Features)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal example %s: %w", ex.Key, err)
	}

	var data T
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode example %s: %w", ex.Key, err)
	}
	return &Model[T]{Key: ex.Key, Data: data}, nil
}
