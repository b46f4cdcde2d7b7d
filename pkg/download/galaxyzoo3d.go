package download

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// GalaxyZoo3DURL is the SDSS DR17 folder of the Galaxy Zoo 3D maps.
	GalaxyZoo3DURL = "https://data.sdss.org/sas/dr17/manga/morphology/galaxyzoo3d/v4_0_0/"
	// GalaxyZoo3DManifest lists every map with its SHA-1.
	GalaxyZoo3DManifest = "manga_morphology_galaxyzoo3d_v4_0_0.sha1sum"
)

// ManifestEntry is one line of a sha1sum file.
type ManifestEntry struct {
	SHA1 string
	Name string
}

// ParseManifest reads "<sha1>  <name>" lines. Blank lines are ignored.
func ParseManifest(r io.Reader) ([]ManifestEntry, error) {
	var entries []ManifestEntry
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("manifest line %d: expected checksum and name", line)
		}
		entries = append(entries, ManifestEntry{SHA1: fields[0], Name: strings.TrimPrefix(fields[1], "*")})
	}
	return entries, scanner.Err()
}

// GalaxyZoo3D downloads the segmentation maps into Dir.
type GalaxyZoo3D struct {
	Client *Client
	// BaseURL defaults to GalaxyZoo3DURL.
	BaseURL string
	Dir     string
	Logger  *slog.Logger
	// Progress receives the progress bar. Nil hides it.
	Progress io.Writer
}

// Report summarises a download run.
type Report struct {
	Downloaded int
	Skipped    int
	Elapsed    time.Duration
}

// Download fetches the manifest if it is missing, then every listed file
// that is not on disk yet. Fresh files are verified against the manifest.
func (g *GalaxyZoo3D) Download(ctx context.Context) (Report, error) {
	var report Report
	start := time.Now()
	logger := g.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	base := g.BaseURL
	if base == "" {
		base = GalaxyZoo3DURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	if err := os.MkdirAll(g.Dir, 0755); err != nil {
		return report, err
	}
	manifest := filepath.Join(g.Dir, GalaxyZoo3DManifest)
	if _, err := g.Client.FetchIfMissing(ctx, base+GalaxyZoo3DManifest, manifest, nil); err != nil {
		return report, fmt.Errorf("manifest: %w", err)
	}

	f, err := os.Open(manifest)
	if err != nil {
		return report, err
	}
	entries, err := ParseManifest(f)
	f.Close()
	if err != nil {
		return report, err
	}

	bar := newBar(g.Progress, len(entries), "galaxyzoo3d")
	for _, e := range entries {
		fetched, err := g.Client.FetchIfMissing(ctx, base+e.Name, filepath.Join(g.Dir, e.Name), SHA1(e.SHA1))
		if err != nil {
			report.Elapsed = time.Since(start)
			logger.Error("download failed", "file", e.Name, "completed", report.Downloaded+report.Skipped, "total", len(entries), "error", err)
			return report, err
		}
		if fetched {
			report.Downloaded++
		} else {
			report.Skipped++
		}
		bar.Add(1)
	}
	bar.Finish()

	report.Elapsed = time.Since(start)
	logger.Info("download complete", "downloaded", report.Downloaded, "skipped", report.Skipped, "elapsed", report.Elapsed.Round(time.Second))
	return report, nil
}
