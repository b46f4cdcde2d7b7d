package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Placeholder is substituted for empty tabular values before type coercion.
// Morphology vote tables routinely leave columns blank.
const Placeholder = "nan"

// Substitute returns Placeholder for an empty value and the value otherwise.
func Substitute(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

// DType is the primitive type of a scalar feature.
type DType string

const (
	Int64   DType = "int64"
	Float32 DType = "float32"
	Float64 DType = "float64"
	Bool    DType = "bool"
	String  DType = "string"
	Uint8   DType = "uint8"
)

// Parse converts already-substituted text into the Go value for d.
func (d DType) Parse(s string) (any, error) {
	switch d {
	case Int64:
		return parseInt(s)
	case Float32:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
		if err != nil {
			return nil, fmt.Errorf("%w: not a float32", ErrMalformedValue)
		}
		return float32(f), nil
	case Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: not a float64", ErrMalformedValue)
		}
		return f, nil
	case Bool:
		if strings.EqualFold(s, Placeholder) {
			return false, nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("%w: not a bool", ErrMalformedValue)
		}
		return b, nil
	case String:
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unsupported dtype %q", ErrInvalidSchema, string(d))
	}
}

// parseInt accepts plain integers and integral floats ("12.0"), which is how
// tables with a sparse integer column are usually written out.
func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: not an integer", ErrMalformedValue)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: integer out of range", ErrMalformedValue)
	}
	return int64(f), nil
}
