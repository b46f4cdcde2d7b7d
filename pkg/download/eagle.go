package download

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/aretw0/galaxies/pkg/adapters/fs"
	"github.com/aretw0/galaxies/pkg/core"
)

const (
	// DefaultDatabaseURL is the query endpoint of the EAGLE public database.
	DefaultDatabaseURL = "http://virgodb.dur.ac.uk:8080/Eagle/"
	// DatabaseHomepage is where accounts for the database are requested.
	DatabaseHomepage = "http://icc.dur.ac.uk/Eagle/database.php"

	DefaultStartSnap   = 12
	DefaultStopSnap    = 28
	DefaultMinMassStar = 1e8
)

// EagleTables are queried for every snapshot and merged on GalaxyID.
var EagleTables = []string{"Subhalo", "Sizes"}

// EagleImageColumns hold the image URL of each camera orientation.
var EagleImageColumns = []string{"Image_face", "Image_edge", "Image_box"}

//go:embed table_query.sql
var tableQuery string

var tableQueryTmpl = template.Must(template.New("table_query").Parse(tableQuery))

// Query selects one table of the galaxies of a snapshot above a stellar mass.
type Query struct {
	Simulation  string
	SnapNum     int
	MinMassStar float64
	Table       string
}

// SQL renders the query.
func (q Query) SQL() (string, error) {
	var b strings.Builder
	err := tableQueryTmpl.Execute(&b, struct {
		Simulation  string
		SnapNum     int
		MinMassStar string
		Table       string
	}{q.Simulation, q.SnapNum, strconv.FormatFloat(q.MinMassStar, 'g', -1, 64), q.Table})
	if err != nil {
		return "", fmt.Errorf("failed to render query: %w", err)
	}
	return b.String(), nil
}

// WebDB runs SQL against the EAGLE public database over HTTP.
type WebDB struct {
	client *Client
	url    string
	auth   BasicAuth
}

// NewWebDB returns a connection to the database at dbURL. An empty dbURL
// selects DefaultDatabaseURL.
func NewWebDB(client *Client, dbURL, user, password string) *WebDB {
	if dbURL == "" {
		dbURL = DefaultDatabaseURL
	}
	return &WebDB{client: client, url: dbURL, auth: BasicAuth{User: user, Password: password}}
}

// Execute runs sql. The reply is a CSV whose comment lines start with "#".
func (db *WebDB) Execute(ctx context.Context, sql string) (*fs.Table, error) {
	q := url.Values{"action": {"doQuery"}, "SQL": {sql}}
	resp, err := db.client.Get(ctx, db.url+"?"+q.Encode(), &db.auth)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}
	if msg, ok := queryError(body); ok {
		return nil, fmt.Errorf("%w: %s", ErrQuery, msg)
	}

	t, err := fs.ReadTable(ctx, bytes.NewReader(body), '#')
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return t, nil
}

// queryError finds an error reported in the comment lines of a reply.
func queryError(body []byte) (string, bool) {
	for line := range strings.Lines(string(body)) {
		if !strings.HasPrefix(line, "#") {
			break
		}
		text := strings.TrimSpace(strings.TrimLeft(line, "#"))
		if strings.HasPrefix(strings.ToUpper(text), "ERROR") {
			return text, true
		}
	}
	return "", false
}

var imageURL = regexp.MustCompile(`'(.*)'`)

// StripImageURL extracts the address from an "<img src='...'>" cell. Values
// without quotes are returned unchanged.
func StripImageURL(v string) string {
	if m := imageURL.FindStringSubmatch(v); m != nil {
		return m[1]
	}
	return v
}

// Eagle downloads the catalogue and images of one simulation.
type Eagle struct {
	DB     *WebDB
	Client *Client
	Logger *slog.Logger
	// Progress receives the progress bars. Nil hides them.
	Progress io.Writer
}

// EagleRequest selects the snapshots [StartSnap, StopSnap) of Simulation.
type EagleRequest struct {
	Simulation  string
	StartSnap   int
	StopSnap    int
	MinMassStar float64
	ManualDir   string
}

// SnapshotDir is where the data of one snapshot is stored.
func SnapshotDir(manualDir, simulation string, snap int) string {
	return filepath.Join(manualDir, simulation, strconv.Itoa(snap))
}

// Download fetches every snapshot of req. Snapshots whose data.csv exists
// are not queried again; images already on disk are not downloaded again.
func (e *Eagle) Download(ctx context.Context, req EagleRequest) error {
	if req.StopSnap <= req.StartSnap {
		return fmt.Errorf("empty snapshot range [%d, %d)", req.StartSnap, req.StopSnap)
	}
	logger := e.logger().With("simulation", req.Simulation)
	start := time.Now()

	for snap := req.StartSnap; snap < req.StopSnap; snap++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		dir := SnapshotDir(req.ManualDir, req.Simulation, snap)
		slogger := logger.With("snapshot", snap)

		if err := e.saveData(ctx, req, snap, dir, slogger); err != nil {
			return fmt.Errorf("snapshot %d: %w", snap, err)
		}
		if err := e.saveImages(ctx, dir, slogger); err != nil {
			return fmt.Errorf("snapshot %d: %w", snap, err)
		}
	}

	logger.Info("download complete", "snapshots", req.StopSnap-req.StartSnap, "elapsed", time.Since(start).Round(time.Second))
	return nil
}

func (e *Eagle) saveData(ctx context.Context, req EagleRequest, snap int, dir string, logger *slog.Logger) error {
	path := filepath.Join(dir, "data.csv")
	if fs.Exists(path) {
		logger.Info("data already downloaded", "path", path)
		return nil
	}

	var merged *fs.Table
	for _, table := range EagleTables {
		sql, err := Query{
			Simulation:  req.Simulation,
			SnapNum:     snap,
			MinMassStar: req.MinMassStar,
			Table:       table,
		}.SQL()
		if err != nil {
			return err
		}
		logger.Debug("querying table", "table", table)
		t, err := e.DB.Execute(ctx, sql)
		if err != nil {
			return fmt.Errorf("table %s: %w", table, err)
		}
		if merged == nil {
			merged = t
			continue
		}
		if merged, err = merged.OuterMerge(t, "GalaxyID"); err != nil {
			return err
		}
	}

	CleanImageURLs(merged)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := merged.WriteFile(path); err != nil {
		return err
	}
	logger.Info("data saved", "path", path, "galaxies", len(merged.Records))
	return nil
}

// CleanImageURLs strips the HTML wrapper from the image columns of t.
func CleanImageURLs(t *fs.Table) {
	for i, row := range t.Records {
		values := make(map[string]string, row.Len())
		for _, h := range t.Header {
			v, ok := row.Lookup(h)
			if !ok {
				continue
			}
			if slices.Contains(EagleImageColumns, h) {
				v = StripImageURL(v)
			}
			values[h] = v
		}
		t.Records[i] = core.RowOf(row.Line, values)
	}
}

func (e *Eagle) saveImages(ctx context.Context, dir string, logger *slog.Logger) error {
	t, err := fs.LoadTable(ctx, filepath.Join(dir, "data.csv"))
	if err != nil {
		return err
	}
	images := filepath.Join(dir, "images")

	for _, column := range EagleImageColumns {
		var urls []string
		for _, row := range t.Records {
			if u, ok := row.Lookup(column); ok && u != "" {
				urls = append(urls, u)
			}
		}

		bar := newBar(e.Progress, len(urls), column)
		done := 0
		for _, u := range urls {
			target := filepath.Join(images, path.Base(u))
			if _, err := e.Client.FetchIfMissing(ctx, u, target, nil); err != nil {
				logger.Error("image download failed", "orientation", column, "completed", done, "total", len(urls), "error", err)
				return err
			}
			done++
			bar.Add(1)
		}
		bar.Finish()
		logger.Info("images downloaded", "orientation", column, "count", done)
	}
	return nil
}

func (e *Eagle) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}
