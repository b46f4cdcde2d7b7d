package fs

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// listingEntry holds the file names of one directory.
type listingEntry struct {
	Names        map[string]bool
	LastModified time.Time
}

// Listing caches directory contents so that high-cardinality lookups do not
// stat every candidate. An entry is reloaded when the directory mtime changes.
type Listing struct {
	mu      sync.RWMutex
	entries map[string]*listingEntry
	loads   int
}

// NewListing returns an empty listing cache.
func NewListing() *Listing {
	return &Listing{entries: make(map[string]*listingEntry)}
}

// Has reports whether dir contains a regular file (or symlink) called name.
// A missing or unreadable directory contains nothing.
func (l *Listing) Has(dir, name string) bool {
	entry := l.get(dir)
	return entry != nil && entry.Names[name]
}

func (l *Listing) get(dir string) *listingEntry {
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}
	mtime := info.ModTime()

	l.mu.RLock()
	entry, ok := l.entries[dir]
	l.mu.RUnlock()
	if ok && entry.LastModified.Equal(mtime) {
		return entry
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	entry = &listingEntry{Names: make(map[string]bool, len(entries)), LastModified: mtime}
	for _, e := range entries {
		if e.Type().IsRegular() || e.Type()&os.ModeSymlink != 0 {
			entry.Names[e.Name()] = true
		}
	}

	l.mu.Lock()
	l.entries[dir] = entry
	l.loads++
	l.mu.Unlock()
	return entry
}

// Loads returns how many times a directory was read from disk.
func (l *Listing) Loads() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loads
}

// Len returns the number of cached directories.
func (l *Listing) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Prune drops every cached directory not in keep.
func (l *Listing) Prune(keep map[string]bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for dir := range l.entries {
		if !keep[dir] {
			delete(l.entries, dir)
		}
	}
}
