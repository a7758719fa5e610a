package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"webfonts/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("WEBFONTS_SUBSETTER", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "webfonts", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".local", "state", "webfonts", "logs"); cfg.Paths.LogDir != want {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, want)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) || filepath.Base(cfg.Paths.OutputDir) != "dist" {
		t.Fatalf("expected absolute dist output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Subsetter.Command != config.DefaultSubsetterCommand {
		t.Fatalf("unexpected subsetter command: %q", cfg.Subsetter.Command)
	}
	if cfg.Subsetter.TimeoutSeconds != 0 {
		t.Fatalf("expected no subsetter timeout by default, got %d", cfg.Subsetter.TimeoutSeconds)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Paths.Catalogue != "" {
		t.Fatalf("expected built-in catalogue by default, got %q", cfg.Paths.Catalogue)
	}
	if got := cfg.HistoryPath(); got != filepath.Join(tempHome, ".local", "state", "webfonts", "history.db") {
		t.Fatalf("unexpected history path: %q", got)
	}
	if cfg.SubsetterBinary() != "cn-font-split" {
		t.Fatalf("unexpected subsetter binary: %q", cfg.SubsetterBinary())
	}
}

func TestLoadUsesSubsetterEnvFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WEBFONTS_SUBSETTER", "fake-split {input} {output}")
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Subsetter.Command != "fake-split {input} {output}" {
		t.Fatalf("expected env subsetter command, got %q", cfg.Subsetter.Command)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `[paths]
source_dir = "~/fonts/src"
output_dir = "~/fonts/dist"
scratch_dir = "~/fonts/.scratch"
catalogue = "~/fonts/catalogue.toml"

[subsetter]
command = "split {input} {output}"
timeout_seconds = 90

[logging]
format = "JSON"
level = "Warning"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "fonts", "dist") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Paths.Catalogue != filepath.Join(tempHome, "fonts", "catalogue.toml") {
		t.Fatalf("unexpected catalogue: %q", cfg.Paths.Catalogue)
	}
	if cfg.Subsetter.TimeoutSeconds != 90 {
		t.Fatalf("unexpected timeout: %d", cfg.Subsetter.TimeoutSeconds)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "warn" {
		t.Fatalf("unexpected logging normalization: %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nlibrary_dir = \"/x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidateRejectsOverlappingRoots(t *testing.T) {
	cases := map[string]func(*config.Config){
		"same":           func(c *config.Config) { c.Paths.ScratchDir = c.Paths.OutputDir },
		"scratch inside": func(c *config.Config) { c.Paths.ScratchDir = filepath.Join(c.Paths.OutputDir, "tmp") },
		"output inside":  func(c *config.Config) { c.Paths.OutputDir = filepath.Join(c.Paths.ScratchDir, "out") },
		"missing output": func(c *config.Config) { c.Paths.OutputDir = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig(t)
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]struct {
		mutate func(*config.Config)
		want   string
	}{
		"timeout":      {func(c *config.Config) { c.Subsetter.TimeoutSeconds = -1 }, "subsetter.timeout_seconds"},
		"placeholders": {func(c *config.Config) { c.Subsetter.Command = "split" }, "{input}"},
		"format":       {func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		"request":      {func(c *config.Config) { c.Acquisition.RequestTimeoutSeconds = -5 }, "request_timeout_seconds"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if decoded.Paths.OutputDir != "dist" {
		t.Fatalf("unexpected sample output dir: %q", decoded.Paths.OutputDir)
	}

	t.Setenv("HOME", t.TempDir())
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}

func validConfig(t *testing.T) config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "src")
	cfg.Paths.OutputDir = filepath.Join(base, "dist")
	cfg.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Subsetter.Command = config.DefaultSubsetterCommand
	if err := cfg.Validate(); err != nil {
		t.Fatalf("baseline config invalid: %v", err)
	}
	return cfg
}
