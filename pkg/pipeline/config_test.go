package pipeline

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/planvia/clusterplan/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clusterplan.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() = %v, want nil", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[pipeline]
solver = "trivial"
prune = true
formats = ["dot", "svg"]
detailed = true

[cache]
dir = "/tmp/clusterplan-cache"
enabled = true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() = %v, want nil", err)
	}
	if !cfg.Options.Prune {
		t.Error("Prune = false, want true")
	}
	if !cfg.Options.Detailed {
		t.Error("Detailed = false, want true")
	}
	if want := []string{"dot", "svg"}; !reflect.DeepEqual(cfg.Options.Formats, want) {
		t.Errorf("Formats = %v, want %v", cfg.Options.Formats, want)
	}
	if cfg.CacheDir != "/tmp/clusterplan-cache" || !cfg.CacheEnabled {
		t.Errorf("cache = (%q, %v), want (/tmp/clusterplan-cache, true)", cfg.CacheDir, cfg.CacheEnabled)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() = %v, want nil", err)
	}
	if cfg.Options.Solver != SolverTrivial {
		t.Errorf("Solver = %q, want %q", cfg.Options.Solver, SolverTrivial)
	}
	if !reflect.DeepEqual(cfg.Options.Formats, []string{FormatJSON}) {
		t.Errorf("Formats = %v, want [json]", cfg.Options.Formats)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantCode errors.Code
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.toml"), errors.ErrCodeFileNotFound},
		{"bad toml", writeConfig(t, "[pipeline\n"), errors.ErrCodeInvalidInput},
		{"bad format", writeConfig(t, "[pipeline]\nformats = [\"png\"]\n"), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path)
			if err == nil {
				t.Fatal("LoadConfig() = nil, want error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("GetCode() = %q, want %q", got, tt.wantCode)
			}
		})
	}
}
