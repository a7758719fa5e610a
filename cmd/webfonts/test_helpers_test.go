package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"webfonts/internal/config"
	"webfonts/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

const testCatalogue = `
[[typeface]]
label = "Alpha Regular"
source = "alpha.ttf"
locale = "en"
[typeface.style]
family = "Alpha"
weight = "400"

[[typeface]]
label = "Beta Regular"
source = "beta.ttf"
locale = "en"
[typeface.style]
family = "Beta"
weight = "400"

[[typeface]]
label = "Gamma Regular"
source = "gamma.ttf"
locale = "zh"
[typeface.style]
family = "Gamma"
weight_range = "300 700"

[[source]]
name = "Alpha Regular"
url = "https://fonts.invalid/alpha.ttf"
filename = "alpha.ttf"
`

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("NO_COLOR", "1")

	cataloguePath := filepath.Join(base, "catalogue.toml")
	if err := os.WriteFile(cataloguePath, []byte(testCatalogue), 0o644); err != nil {
		t.Fatalf("write catalogue: %v", err)
	}

	opts = append([]testsupport.ConfigOption{
		testsupport.WithStubSubsetter(),
		testsupport.WithCatalogue(cataloguePath),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	testsupport.WriteSources(t, cfg.Paths.SourceDir, "alpha.ttf", "beta.ttf", "gamma.ttf")

	configPath := filepath.Join(homeDir, ".config", "webfonts", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", needle, haystack)
	}
}
