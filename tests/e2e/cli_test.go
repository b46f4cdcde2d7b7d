package e2e

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeEagle lays out one EAGLE snapshot with two complete galaxies and one
// galaxy without images.
func writeEagle(t *testing.T, manual string) {
	t.Helper()
	snap := filepath.Join(manual, "RefL0025N0752", "27")
	if err := os.MkdirAll(filepath.Join(snap, "images"), 0755); err != nil {
		t.Fatal(err)
	}
	data := "GalaxyID,Image_ID,SnapNum,R_halfmass30,R_halfmass100,R_halfmass30_projected,R_halfmass100_projected\n" +
		"89,1,27,1.5,2,,4\n" +
		"90,2,27,1,1,1,1\n" +
		"91,-1,27,1,1,1,1\n"
	if err := os.WriteFile(filepath.Join(snap, "data.csv"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"89", "90"} {
		for _, prefix := range []string{"galrand", "galedge", "galface"} {
			if err := os.WriteFile(filepath.Join(snap, "images", prefix+"_"+id+".png"), nil, 0644); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestCLI(t *testing.T) {
	tmpDir := t.TempDir()
	bin := buildBinary(t, tmpDir)
	manual := filepath.Join(tmpDir, "manual")
	writeEagle(t, manual)

	t.Run("Version", func(t *testing.T) {
		out, err := run(t, tmpDir, bin, "version")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(out, "galaxies version ") {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("List", func(t *testing.T) {
		out, err := run(t, tmpDir, bin, "list")
		if err != nil {
			t.Fatal(err)
		}
		for _, name := range []string{"eagle/RefL0025N0752", "galaxy_zoo_decals/auto", "gama"} {
			if !strings.Contains(out, name) {
				t.Errorf("list output misses %s:\n%s", name, out)
			}
		}
	})

	t.Run("Info JSON", func(t *testing.T) {
		out, err := run(t, tmpDir, bin, "info", "galaxy_zoo_challenge/train", "--format", "json")
		if err != nil {
			t.Fatal(err)
		}
		var info struct {
			Name           string `json:"name"`
			Config         string `json:"config"`
			SupervisedKeys struct {
				Input  string `json:"input"`
				Target string `json:"target"`
			} `json:"supervised_keys"`
		}
		if err := json.Unmarshal([]byte(out), &info); err != nil {
			t.Fatalf("invalid json: %v\n%s", err, out)
		}
		if info.Name != "galaxy_zoo_challenge" || info.Config != "train" || info.SupervisedKeys.Target != "label" {
			t.Errorf("unexpected info: %+v", info)
		}
	})

	t.Run("Generate", func(t *testing.T) {
		out, err := run(t, tmpDir, bin, "generate", "eagle/RefL0025N0752", "--manual-dir", manual)
		if err != nil {
			t.Fatal(err)
		}

		byKey := map[string]map[string]any{}
		scanner := bufio.NewScanner(strings.NewReader(out))
		for scanner.Scan() {
			var line struct {
				Key      string         `json:"key"`
				Features map[string]any `json:"features"`
			}
			if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
				t.Fatalf("invalid json line: %v\n%s", err, scanner.Text())
			}
			byKey[line.Key] = line.Features
		}
		if len(byKey) != 2 {
			t.Fatalf("expected 2 examples, got %d:\n%s", len(byKey), out)
		}

		sizes := byKey["89"]["Sizes"].(map[string]any)
		if sizes["R_halfmass30_projected"] != nil {
			t.Errorf("empty size should be null, got %v", sizes["R_halfmass30_projected"])
		}
		face := byKey["89"]["Image_face"].(map[string]any)
		if !strings.HasSuffix(face["path"].(string), "galface_89.png") {
			t.Errorf("unexpected image reference: %v", face)
		}
	})

	t.Run("Generate Limit", func(t *testing.T) {
		out, err := run(t, tmpDir, bin, "generate", "eagle/RefL0025N0752", "--manual-dir", manual, "--limit", "1")
		if err != nil {
			t.Fatal(err)
		}
		if n := strings.Count(out, "\n"); n != 1 {
			t.Errorf("expected 1 line, got %d", n)
		}
	})

	t.Run("Generate CSV", func(t *testing.T) {
		out, err := run(t, tmpDir, bin, "generate", "eagle/RefL0025N0752", "--manual-dir", manual, "--format", "csv")
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d:\n%s", len(lines), out)
		}
		if !strings.HasPrefix(lines[0], "key,GalaxyID,") || !strings.Contains(lines[0], "Sizes/R_halfmass30") {
			t.Errorf("unexpected header: %s", lines[0])
		}
	})

	t.Run("Manual Dir From Env File", func(t *testing.T) {
		work := t.TempDir()
		if err := os.WriteFile(filepath.Join(work, ".env"), []byte("GALAXIES_MANUAL_DIR="+manual+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		out, err := run(t, work, bin, "generate", "eagle/RefL0025N0752", "--limit", "1")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, `"key"`) {
			t.Errorf("expected an example, got %q", out)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		if _, err := run(t, tmpDir, bin, "info", "sdss"); err == nil {
			t.Error("expected failure for unknown dataset")
		}
		if _, err := run(t, tmpDir, bin, "generate", "gama", "--on-duplicate", "sometimes"); err == nil {
			t.Error("expected failure for unknown duplicate policy")
		}
		if _, err := run(t, tmpDir, bin, "generate", "gama", "--format", "parquet"); err == nil {
			t.Error("expected failure for unknown format")
		}
		if _, err := run(t, tmpDir, bin, "generate", "galaxy_zoo_2", "--manual-dir", manual); err == nil {
			t.Error("expected failure for missing manual data")
		}
	})
}
