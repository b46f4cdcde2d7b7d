package datasets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/galaxies/pkg/core"
	"github.com/aretw0/galaxies/pkg/datasets"
)

func TestRegistry(t *testing.T) {
	r := datasets.New(nil)

	names := r.Names()
	assert.Len(t, names, 12)
	assert.Contains(t, names, "eagle/RecalL0025N0752")
	assert.Contains(t, names, "galaxy_zoo_decals/auto")
	assert.Contains(t, names, "gama")

	b, err := r.Lookup("eagle")
	require.NoError(t, err)
	assert.Equal(t, "eagle/RefL0100N1504", b.FullName(), "a bare name resolves to the first configuration")

	b, err = r.Lookup("galaxy_zoo_challenge/test")
	require.NoError(t, err)
	assert.Equal(t, "test", b.Config)

	_, err = r.Lookup("sdss")
	assert.ErrorIs(t, err, core.ErrUnknownDataset)
}

func TestEveryBuilderIsComplete(t *testing.T) {
	for _, b := range datasets.New(nil).All() {
		t.Run(b.FullName(), func(t *testing.T) {
			require.NoError(t, b.Schema.Validate())
			assert.NotEmpty(t, b.Description)
			assert.NotEmpty(t, b.Citation)
			assert.NotEmpty(t, b.Homepage)
			assert.NotEmpty(t, b.ManualDownloadInstructions)
			assert.Equal(t, "1.0.0", b.Version)
			assert.NotNil(t, b.Generator)
		})
	}
}
