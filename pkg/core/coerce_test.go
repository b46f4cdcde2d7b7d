package core_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aretw0/galaxies/pkg/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubstitute(t *testing.T) {
	assert.Equal(t, core.Placeholder, core.Substitute(""))
	assert.Equal(t, "nan", core.Substitute(""))
	assert.Equal(t, "1.5", core.Substitute("1.5"))
	assert.Equal(t, " ", core.Substitute(" "))
}

func TestDTypeParse(t *testing.T) {
	tests := []struct {
		name  string
		dtype core.DType
		in    string
		want  any
	}{
		{"int", core.Int64, "42", int64(42)},
		{"negative int", core.Int64, "-1", int64(-1)},
		{"integral float as int", core.Int64, "12.0", int64(12)},
		{"float32", core.Float32, "1.5", float32(1.5)},
		{"float64", core.Float64, "0.25", 0.25},
		{"bool python style", core.Bool, "True", true},
		{"bool placeholder", core.Bool, "nan", false},
		{"string placeholder", core.String, "nan", "nan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.dtype.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDTypeParseNaN(t *testing.T) {
	f64, err := core.Float64.Parse(core.Placeholder)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f64.(float64)))

	f32, err := core.Float32.Parse(core.Placeholder)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(f32.(float32))))
}

func TestDTypeParseMalformed(t *testing.T) {
	tests := []struct {
		dtype core.DType
		in    string
	}{
		{core.Int64, core.Placeholder},
		{core.Int64, "1.5"},
		{core.Int64, "abc"},
		{core.Float64, "1,5"},
		{core.Float32, "x"},
		{core.Bool, "maybe"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dtype)+"/"+tt.in, func(t *testing.T) {
			_, err := tt.dtype.Parse(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrMalformedValue))
		})
	}
}

func TestDTypeParseUnknown(t *testing.T) {
	_, err := core.DType("complex128").Parse("1")
	assert.ErrorIs(t, err, core.ErrInvalidSchema)
}
