package download

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/galaxies/pkg/adapters/fs"
)

// Verify inspects the hex SHA-1 of a download before it is committed.
type Verify func(sum string) error

// FetchFile streams url into path. The target only appears once the whole
// body has been written and verify, if set, has accepted it.
func (c *Client) FetchFile(ctx context.Context, url, path string, verify Verify) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	resp, err := c.Get(ctx, url, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	f, err := fs.CreateAtomic(path, 0644)
	if err != nil {
		return err
	}

	h := sha1.New()
	if _, err := io.Copy(io.MultiWriter(f, h), resp.Body); err != nil {
		f.Abort()
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	if verify != nil {
		if err := verify(hex.EncodeToString(h.Sum(nil))); err != nil {
			f.Abort()
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	return f.Commit()
}

// FetchIfMissing downloads url into path unless path already exists. It
// reports whether a request was made.
func (c *Client) FetchIfMissing(ctx context.Context, url, path string, verify Verify) (bool, error) {
	if fs.Exists(path) {
		return false, nil
	}
	if err := c.FetchFile(ctx, url, path, verify); err != nil {
		return true, err
	}
	return true, nil
}

// SHA1 returns a Verify that requires the digest want.
func SHA1(want string) Verify {
	return func(sum string) error {
		if sum != want {
			return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, sum, want)
		}
		return nil
	}
}
