package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveManualDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	defaultDir := filepath.Join(home, "tensorflow_datasets", "downloads", "manual")

	tests := []struct {
		name    string
		flag    string
		env     string
		config  string
		wantDir string
	}{
		{
			name:    "Flag Wins",
			flag:    "/data/flag",
			env:     "/data/env",
			config:  "/data/config",
			wantDir: "/data/flag",
		},
		{
			name:    "Env Before Config",
			env:     "/data/env",
			config:  "/data/config",
			wantDir: "/data/env",
		},
		{
			name:    "Config Before Default",
			config:  "/data/config/",
			wantDir: "/data/config",
		},
		{
			name:    "Default",
			wantDir: defaultDir,
		},
		{
			name:    "Home Is Expanded",
			flag:    "~/manual",
			wantDir: filepath.Join(home, "manual"),
		},
		{
			name:    "Blank Flag Is Ignored",
			flag:    "  ",
			config:  "/data/config",
			wantDir: "/data/config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvManualDir, tt.env)

			got, err := ResolveManualDir(tt.flag, &Config{ManualDir: tt.config})
			if err != nil {
				t.Fatalf("ResolveManualDir() error = %v", err)
			}
			if got != filepath.Clean(tt.wantDir) {
				t.Errorf("ResolveManualDir() = %v, want %v", got, tt.wantDir)
			}
		})
	}
}
