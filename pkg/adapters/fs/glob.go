package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/galaxies/pkg/core"
)

var errStopWalk = errors.New("stop walk")

// GlobSource lists the files under Root matching a doublestar Pattern
// (e.g. "*.jpg" or "**/*.gz"), lazily and in lexical order per directory.
type GlobSource struct {
	Root    string
	Pattern string
}

// Files implements core.FileSource.
func (g GlobSource) Files(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !doublestar.ValidatePattern(g.Pattern) {
			yield("", fmt.Errorf("invalid glob pattern %q", g.Pattern))
			return
		}
		if !isDir(g.Root) {
			yield("", fmt.Errorf("%w: %s", core.ErrNoManualData, g.Root))
			return
		}

		stopped := false
		err := doublestar.GlobWalk(os.DirFS(g.Root), g.Pattern, func(path string, d iofs.DirEntry) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !yield(filepath.Join(g.Root, filepath.FromSlash(path)), nil) {
				stopped = true
				return errStopWalk
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", fmt.Errorf("failed to list %s: %w", g.Root, err))
		}
	}
}

// Match reports whether the slash-separated path matches pattern.
func Match(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, filepath.ToSlash(path))
	return err == nil && ok
}
