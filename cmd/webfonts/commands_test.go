package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"webfonts/internal/catalogue"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "3 entries across 2 locales")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestCatalogueShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"catalogue", "show", "--sources"}, env.configPath)
	if err != nil {
		t.Fatalf("catalogue show: %v", err)
	}
	requireContains(t, out, "Alpha Regular")
	requireContains(t, out, "300 700")
	requireContains(t, out, "https://fonts.invalid/alpha.ttf")

	out, _, err = runCLI(t, []string{"--json", "catalog", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("catalogue show --json: %v", err)
	}
	var cat catalogue.Catalogue
	if err := json.Unmarshal([]byte(out), &cat); err != nil {
		t.Fatalf("decode catalogue: %v", err)
	}
	if len(cat.Typefaces) != 3 || cat.Typefaces[2].Locale != "zh" {
		t.Fatalf("unexpected catalogue: %+v", cat.Typefaces)
	}
}

func TestWorkspaceListAndClean(t *testing.T) {
	env := setupCLITestEnv(t)

	leftover := filepath.Join(env.cfg.Paths.ScratchDir, "en-alpha-regular")
	if err := os.MkdirAll(leftover, 0o755); err != nil {
		t.Fatalf("mkdir scratch: %v", err)
	}
	if err := os.WriteFile(filepath.Join(leftover, "a.woff2"), []byte("1234"), 0o644); err != nil {
		t.Fatalf("write scratch file: %v", err)
	}

	out, _, err := runCLI(t, []string{"workspace", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("workspace list: %v", err)
	}
	requireContains(t, out, "en-alpha-regular")

	out, _, err = runCLI(t, []string{"workspace", "clean"}, env.configPath)
	if err != nil {
		t.Fatalf("workspace clean: %v", err)
	}
	requireContains(t, out, "Removed "+env.cfg.Paths.ScratchDir)
	if _, err := os.Stat(env.cfg.Paths.ScratchDir); !os.IsNotExist(err) {
		t.Fatalf("expected scratch removed, stat err=%v", err)
	}

	out, _, err = runCLI(t, []string{"workspace", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("workspace list: %v", err)
	}
	requireContains(t, out, "No scratch directories")
}

func TestFetchSkipsPresentSources(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "fetch"}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	var result struct {
		Downloaded []string `json:"downloaded"`
		Skipped    []string `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode fetch output: %v", err)
	}
	if len(result.Downloaded) != 0 || len(result.Skipped) != 1 || result.Skipped[0] != "Alpha Regular" {
		t.Fatalf("unexpected fetch result: %+v", result)
	}
}

func TestFetchRejectsUnknownSource(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"fetch", "--only", "nope.ttf"}, env.configPath)
	if err == nil {
		t.Fatal("expected unknown source error")
	}
	requireContains(t, err.Error(), "nope.ttf")
}

func TestSelectSourcesMatchesNameOrFilename(t *testing.T) {
	downloads := []catalogue.Download{
		{Name: "Alpha", Filename: "alpha.ttf"},
		{Name: "Beta", Filename: "beta.otf"},
		{Name: "Gamma", Filename: "gamma.ttf"},
	}
	got, err := selectSources(downloads, []string{"gamma.ttf", "alpha"})
	if err != nil {
		t.Fatalf("selectSources: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Alpha" || got[1].Name != "Gamma" {
		t.Fatalf("unexpected selection: %+v", got)
	}
}

func TestDepsReportsMissingSubsetter(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Subsetter.Command = "webfonts-missing-subsetter-binary {input} {output}"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"deps"}, env.configPath)
	if err == nil {
		t.Fatal("expected deps to fail")
	}
	requireContains(t, out, "[ERROR]")
	requireContains(t, out, "webfonts-missing-subsetter-binary")
}
