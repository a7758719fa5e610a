package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"webfonts/internal/history"
	"webfonts/internal/testsupport"
)

func TestBuildWritesLocaleManifests(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "build"}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}

	var result buildOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode build output: %v\n%s", err, out)
	}
	if result.Status != history.StatusSucceeded {
		t.Fatalf("status = %q, want succeeded", result.Status)
	}
	if result.Report.Entries != 3 {
		t.Fatalf("entries = %d, want 3", result.Report.Entries)
	}
	if len(result.Report.Summaries) != 2 {
		t.Fatalf("expected 2 locale summaries, got %+v", result.Report.Summaries)
	}
	en, zh := result.Report.Summaries[0], result.Report.Summaries[1]
	if en.Locale != "en" || en.FaceCount != 2 || en.BinaryCount != 2 {
		t.Fatalf("unexpected en summary: %+v", en)
	}
	if zh.Locale != "zh" || zh.FaceCount != 1 || zh.BinaryCount != 1 {
		t.Fatalf("unexpected zh summary: %+v", zh)
	}

	css, err := os.ReadFile(filepath.Join(env.cfg.Paths.OutputDir, "en", "index.css"))
	if err != nil {
		t.Fatalf("read en manifest: %v", err)
	}
	want := `@font-face{font-family:"Alpha";src:url(./Alpha.woff2) format("woff2")}` + "\n" +
		`@font-face{font-family:"Beta";src:url(./Beta.woff2) format("woff2")}`
	if string(css) != want {
		t.Fatalf("en manifest mismatch:\n got %q\nwant %q", css, want)
	}

	if _, err := os.Stat(env.cfg.Paths.ScratchDir); !os.IsNotExist(err) {
		t.Fatalf("expected scratch root removed, stat err=%v", err)
	}
}

func TestBuildTableOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"build", "--quiet"}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	requireContains(t, out, "Locale")
	requireContains(t, out, "Alpha, Beta")
	requireContains(t, out, "[OK]")
}

func TestBuildMissingSourceFailsWithoutManifest(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.Remove(filepath.Join(env.cfg.Paths.SourceDir, "beta.ttf")); err != nil {
		t.Fatalf("remove source: %v", err)
	}

	out, _, err := runCLI(t, []string{"--json", "build"}, env.configPath)
	if err == nil {
		t.Fatal("expected build to fail")
	}

	var result buildOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode build output: %v\n%s", err, out)
	}
	if result.Status != history.StatusFailed || result.ErrorKind != "missing_source" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Report.Entries != 1 {
		t.Fatalf("entries = %d, want 1 processed before failure", result.Report.Entries)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "en", "index.css")); !os.IsNotExist(err) {
		t.Fatalf("manifest must not be written on failure, stat err=%v", err)
	}
}

func TestHistoryListsRecordedBuilds(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory())

	if _, _, err := runCLI(t, []string{"build", "--quiet"}, env.configPath); err != nil {
		t.Fatalf("build: %v", err)
	}

	out, _, err := runCLI(t, []string{"--json", "history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var records []history.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Status != history.StatusSucceeded || records[0].Entries != 3 {
		t.Fatalf("unexpected record: %+v", records[0])
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	requireContains(t, out, "en:2/2 zh:1/1")
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "disabled")
}

func TestLogsShowsLatestBuildLog(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "build"}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var result buildOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode build output: %v", err)
	}

	out, _, err = runCLI(t, []string{"logs", "-n", "0"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "build-"+result.Report.BuildID+".log")
	requireContains(t, out, `"event_type":"build_complete"`)

	if _, _, err := runCLI(t, []string{"logs", result.Report.BuildID[:8]}, env.configPath); err != nil {
		t.Fatalf("logs by prefix: %v", err)
	}
}
