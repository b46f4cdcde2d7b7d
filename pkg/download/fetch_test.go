package download_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/galaxies/pkg/download"
)

// sha1 of "hello galaxy"
const helloSHA1 = "aff79167a764aa38af3aa12042d6090935387065"

func fileServer(t *testing.T, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchFile(t *testing.T) {
	var calls atomic.Int32
	srv := fileServer(t, "hello galaxy", &calls)
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "map.fits.gz")

	err := newClient(t).FetchFile(context.Background(), srv.URL, target, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello galaxy", string(data))
}

func TestFetchFileChecksumMismatch(t *testing.T) {
	var calls atomic.Int32
	srv := fileServer(t, "hello galaxy", &calls)
	dir := t.TempDir()
	target := filepath.Join(dir, "map.fits.gz")

	err := newClient(t).FetchFile(context.Background(), srv.URL, target, download.SHA1("0000"))
	require.ErrorIs(t, err, download.ErrChecksumMismatch)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "neither the target nor a temp file is left behind")
}

func TestFetchIfMissing(t *testing.T) {
	var calls atomic.Int32
	srv := fileServer(t, "hello galaxy", &calls)
	target := filepath.Join(t.TempDir(), "map.fits.gz")
	c := newClient(t)
	ctx := context.Background()

	fetched, err := c.FetchIfMissing(ctx, srv.URL, target, nil)
	require.NoError(t, err)
	assert.True(t, fetched)

	fetched, err = c.FetchIfMissing(ctx, srv.URL, target, nil)
	require.NoError(t, err)
	assert.False(t, fetched)
	assert.Equal(t, int32(1), calls.Load())
}
