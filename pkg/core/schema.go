package core

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Feature declares the type of one field of an example.
// Encode converts a raw value, usually text read from a table, into the
// typed Go value stored in an Example.
type Feature interface {
	Encode(raw any) (any, error)
	Info() FeatureInfo
}

// FeatureInfo is the serializable description of a feature tree.
type FeatureInfo struct {
	Name       string        `json:"name,omitempty" yaml:"name,omitempty"`
	Type       string        `json:"type" yaml:"type"`
	DType      DType         `json:"dtype,omitempty" yaml:"dtype,omitempty"`
	Shape      []int         `json:"shape,omitempty" yaml:"shape,omitempty,flow"`
	Encoding   string        `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	NumClasses int           `json:"num_classes,omitempty" yaml:"num_classes,omitempty"`
	Length     int           `json:"length,omitempty" yaml:"length,omitempty"`
	Optional   bool          `json:"optional,omitempty" yaml:"optional,omitempty"`
	Element    *FeatureInfo  `json:"element,omitempty" yaml:"element,omitempty"`
	Fields     []FeatureInfo `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FileRef points at a file that holds the value of an image feature.
// HDU selects a header/data unit for multi-extension FITS files.
type FileRef struct {
	Path string `json:"path" yaml:"path"`
	HDU  int    `json:"hdu,omitempty" yaml:"hdu,omitempty"`
}

// Scalar is a single primitive value.
type Scalar struct {
	DType DType
}

func (s Scalar) Encode(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return s.DType.Parse(Substitute(v))
	case int64:
		if s.DType == Int64 {
			return v, nil
		}
	case int:
		if s.DType == Int64 {
			return int64(v), nil
		}
	case float64:
		switch s.DType {
		case Float64:
			return v, nil
		case Float32:
			return float32(v), nil
		}
	case float32:
		if s.DType == Float32 {
			return v, nil
		}
	case bool:
		if s.DType == Bool {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot use %T as %s", ErrMalformedValue, raw, s.DType)
}

func (s Scalar) Info() FeatureInfo {
	return FeatureInfo{Type: "scalar", DType: s.DType}
}

// Text is a free-form string.
type Text struct{}

func (Text) Encode(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: cannot use %T as text", ErrMalformedValue, raw)
	}
	return Substitute(s), nil
}

func (Text) Info() FeatureInfo {
	return FeatureInfo{Type: "text", DType: String}
}

// Image references an image on disk. A zero in Shape means the dimension is
// not fixed. Pixels are never read.
type Image struct {
	Shape    [3]int
	Encoding string
	DType    DType
}

func (im Image) Encode(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%w: empty image path", ErrMalformedValue)
		}
		return FileRef{Path: v}, nil
	case FileRef:
		if v.Path == "" {
			return nil, fmt.Errorf("%w: empty image path", ErrMalformedValue)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: cannot use %T as image", ErrMalformedValue, raw)
}

func (im Image) Info() FeatureInfo {
	dtype := im.DType
	if dtype == "" {
		dtype = Uint8
	}
	return FeatureInfo{
		Type:     "image",
		DType:    dtype,
		Shape:    im.Shape[:],
		Encoding: im.Encoding,
	}
}

// ClassLabel is an integer label in [0, NumClasses).
type ClassLabel struct {
	NumClasses int
}

func (c ClassLabel) Encode(raw any) (any, error) {
	v, err := Scalar{DType: Int64}.Encode(raw)
	if err != nil {
		return nil, err
	}
	label := v.(int64)
	if label < 0 || label >= int64(c.NumClasses) {
		return nil, fmt.Errorf("%w: label %d outside [0, %d)", ErrMalformedValue, label, c.NumClasses)
	}
	return label, nil
}

func (c ClassLabel) Info() FeatureInfo {
	return FeatureInfo{Type: "class_label", DType: Int64, NumClasses: c.NumClasses}
}

// Sequence is a list of elements. Length zero means variable length.
// Text input is a literal list such as "[0.1, 0.2, nan]".
type Sequence struct {
	Feature Feature
	Length  int
}

func (s Sequence) Encode(raw any) (any, error) {
	var items []any
	switch v := raw.(type) {
	case string:
		v = Substitute(v)
		if v == Placeholder {
			items = make([]any, s.Length)
			for i := range items {
				items[i] = Placeholder
			}
			break
		}
		var elems []string
		if err := yaml.Unmarshal([]byte(v), &elems); err != nil {
			return nil, fmt.Errorf("%w: not a list literal", ErrMalformedValue)
		}
		items = make([]any, len(elems))
		for i, e := range elems {
			items[i] = e
		}
	case []string:
		items = make([]any, len(v))
		for i, e := range v {
			items[i] = e
		}
	case []any:
		items = v
	default:
		return nil, fmt.Errorf("%w: cannot use %T as sequence", ErrMalformedValue, raw)
	}

	if s.Length > 0 && len(items) != s.Length {
		return nil, fmt.Errorf("%w: expected %d elements, got %d", ErrMalformedValue, s.Length, len(items))
	}

	out := make([]any, len(items))
	for i, item := range items {
		val, err := s.Feature.Encode(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = val
	}
	return out, nil
}

func (s Sequence) Info() FeatureInfo {
	elem := s.Feature.Info()
	return FeatureInfo{Type: "sequence", Length: s.Length, Element: &elem}
}

// Field is a named member of a Dict.
// Optional fields are omitted from the output when absent from the input.
type Field struct {
	Name     string
	Feature  Feature
	Optional bool
}

// F declares a required field.
func F(name string, feature Feature) Field {
	return Field{Name: name, Feature: feature}
}

// Dict is an ordered mapping of sub-features. A dataset schema is a Dict.
type Dict struct {
	Fields []Field
}

// NewDict builds a Dict from fields in declaration order.
func NewDict(fields ...Field) Dict {
	return Dict{Fields: fields}
}

// Lookup returns the field with the given name.
func (d Dict) Lookup(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the field names in declaration order.
func (d Dict) Names() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// Validate checks that field names are unique and every field has a feature.
func (d Dict) Validate() error {
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field without a name", ErrInvalidSchema)
		}
		if f.Feature == nil {
			return fmt.Errorf("%w: field %q has no feature", ErrInvalidSchema, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = true
		if sub, ok := f.Feature.(Dict); ok {
			if err := sub.Validate(); err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
		}
	}
	return nil
}

// Encode converts a raw nested map into a typed one. Every required field
// must be present; keys not declared by the schema are ignored.
func (d Dict) Encode(raw any) (any, error) {
	m, err := asMap(raw)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		v, ok := m[f.Name]
		if !ok {
			if f.Optional {
				continue
			}
			return nil, &FieldError{Field: f.Name, Err: ErrMissingField}
		}

		val, err := f.Feature.Encode(v)
		if err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				return nil, &FieldError{Field: f.Name + "/" + fe.Field, Value: fe.Value, Err: fe.Err}
			}
			return nil, &FieldError{Field: f.Name, Value: fmt.Sprint(v), Err: err}
		}
		out[f.Name] = val
	}
	return out, nil
}

func (d Dict) Info() FeatureInfo {
	fields := make([]FeatureInfo, len(d.Fields))
	for i, f := range d.Fields {
		info := f.Feature.Info()
		info.Name = f.Name
		info.Optional = f.Optional
		fields[i] = info
	}
	return FeatureInfo{Type: "dict", Fields: fields}
}

func asMap(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case map[string]any:
		return v, nil
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: cannot use %T as dict", ErrMalformedValue, raw)
}
