package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvManualDir overrides the manual download directory.
const EnvManualDir = "GALAXIES_MANUAL_DIR"

// DefaultManualDir is where the raw data is expected when nothing else is
// configured: ~/tensorflow_datasets/downloads/manual.
func DefaultManualDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, "tensorflow_datasets", "downloads", "manual"), nil
}

// ResolveManualDir picks the manual directory from, in order: flag, the
// GALAXIES_MANUAL_DIR environment variable, the config file and the default.
// A leading "~" is expanded.
func ResolveManualDir(flag string, cfg *Config) (string, error) {
	candidates := []string{flag, os.Getenv(EnvManualDir)}
	if cfg != nil {
		candidates = append(candidates, cfg.ManualDir)
	}
	for _, dir := range candidates {
		if dir = strings.TrimSpace(dir); dir != "" {
			return expandHome(dir)
		}
	}
	return DefaultManualDir()
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Clean(path), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
