package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildBinary builds the galaxies binary in the specified directory and returns its path.
func buildBinary(t *testing.T, dir string) string {
	t.Helper()
	bin := filepath.Join(dir, "galaxies.exe")
	// Assumes tests are running from tests/e2e.
	buildCmd := exec.Command("go", "build", "-o", bin, "../../cmd/galaxies")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build galaxies: %v\n%s", err, string(out))
	}
	return bin
}

// run executes the binary in dir and returns stdout. The environment is
// stripped of the caller's GALAXIES_MANUAL_DIR and EAGLE_PASSWORD.
func run(t *testing.T, dir, bin string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "GALAXIES_MANUAL_DIR=") || strings.HasPrefix(kv, "EAGLE_PASSWORD=") {
			continue
		}
		cmd.Env = append(cmd.Env, kv)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		t.Logf("%s %v stderr:\n%s", filepath.Base(bin), args, stderr.String())
	}
	return stdout.String(), err
}
