package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/galaxies/pkg/core"
)

// FlatLocator finds "<dir>/<Pattern % id>" in the first directory of Dirs
// that has it.
type FlatLocator struct {
	Dirs    []string
	Pattern string
	// Listing, when set, answers existence from cached directory contents.
	Listing *Listing
}

// Locate implements core.Locator.
func (l FlatLocator) Locate(id string) (string, bool) {
	name := fmt.Sprintf(l.Pattern, id)
	for _, dir := range l.Dirs {
		if l.Listing != nil {
			if l.Listing.Has(dir, name) {
				return filepath.Join(dir, name), true
			}
			continue
		}
		path := filepath.Join(dir, name)
		if isFile(path) {
			return path, true
		}
	}
	return "", false
}

// ShardedLocator finds "<dir>/<id[:PrefixLen]>/<id><Ext>" across Dirs, the
// layout used by archives split into parts and bucketed by name prefix.
type ShardedLocator struct {
	Dirs      []string
	PrefixLen int
	Ext       string
}

// Locate implements core.Locator.
func (l ShardedLocator) Locate(id string) (string, bool) {
	if len(id) < l.PrefixLen || id == "" {
		return "", false
	}
	shard := id[:l.PrefixLen]
	for _, dir := range l.Dirs {
		sub := filepath.Join(dir, shard)
		if !isDir(sub) {
			continue
		}
		path := filepath.Join(sub, id+l.Ext)
		if isFile(path) {
			return path, true
		}
	}
	return "", false
}

var (
	_ core.Locator = FlatLocator{}
	_ core.Locator = ShardedLocator{}
)

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
