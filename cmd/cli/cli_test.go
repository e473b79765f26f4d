package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const analysisFixture = `{
  "track": {"duration": 200.0, "tempo": 128.0, "loudness": -7.0},
  "sections": [
    {"start": 0, "duration": 30, "loudness": -20, "tempo_confidence": 0.5},
    {"start": 60, "duration": 30, "loudness": -8, "tempo_confidence": 0.8}
  ],
  "segments": [
    {"start": 10, "loudness_max": -15},
    {"start": 20, "loudness_max": -15},
    {"start": 150, "loudness_max": -15}
  ],
  "bars": [{"start": 60, "confidence": 0.9}]
}`

const testTrackID = "4uLU6hMCjMI75M1A2tKUQC"

type cliTestEnv struct {
	configPath  string
	analysisDir string
	cachePath   string
}

func setupCLITestEnv(t *testing.T) cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)
	for _, key := range []string{"DROPDNA_CONFIG", "DROPDNA_TOKEN", "DROPDNA_CACHE_PATH", "LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	env := cliTestEnv{
		configPath:  filepath.Join(base, "config.toml"),
		analysisDir: filepath.Join(base, "analysis"),
		cachePath:   filepath.Join(base, "drops.json"),
	}
	if err := os.MkdirAll(env.analysisDir, 0o755); err != nil {
		t.Fatalf("mkdir analysis: %v", err)
	}
	if err := os.WriteFile(filepath.Join(env.analysisDir, testTrackID+".json"), []byte(analysisFixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	contents := "[cache]\nbackend = \"json\"\npath = \"" + filepath.ToSlash(env.cachePath) + "\"\n\n" +
		"[provider]\nanalysis_dir = \"" + filepath.ToSlash(env.analysisDir) + "\"\n\n" +
		"[logging]\nlevel = \"error\"\n"
	if err := os.WriteFile(env.configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, env cliTestEnv, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestDetectCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "detect", "spotify:track:"+testTrackID, "--duration-ms", "200000")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	requireContains(t, out, "Drop for "+testTrackID)
	requireContains(t, out, "1:00.000 (60000 ms)")
	requireContains(t, out, "1:20.000 (80000 ms)")
	requireContains(t, out, "sections")
}

func TestDetectCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "detect", testTrackID, "--duration-ms", "200000", "--preview-ms", "15000", "--json")
	if err != nil {
		t.Fatalf("detect --json: %v", err)
	}

	var got struct {
		TrackID         string  `json:"track_id"`
		DropStartMs     int     `json:"drop_start_ms"`
		Confidence      float64 `json:"confidence"`
		Method          string  `json:"method"`
		PreviewLengthMs int     `json:"preview_length_ms"`
		Playback        struct {
			StartMs int `json:"start_ms"`
			StopMs  int `json:"stop_ms"`
		} `json:"playback"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if got.TrackID != testTrackID || got.Method != "sections" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Playback.StartMs != 60000 || got.Playback.StopMs != 75000 {
		t.Fatalf("unexpected playback window: %+v", got.Playback)
	}
	if got.Confidence <= 0 || got.Confidence >= 1 {
		t.Fatalf("confidence out of range: %v", got.Confidence)
	}
}

func TestDetectCommandValidation(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, err := runCLI(t, env, "detect", testTrackID); err == nil {
		t.Fatal("expected missing --duration-ms to fail")
	}
	if _, err := runCLI(t, env, "detect", "not a track!", "--duration-ms", "1000"); err == nil {
		t.Fatal("expected invalid reference to fail")
	}
	if _, err := runCLI(t, env, "detect", testTrackID, "--duration-ms", "-5"); err == nil {
		t.Fatal("expected negative duration to fail")
	}
}

func TestDetectUnknownTrackUsesErrorFallback(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "detect", "missingtrack", "--duration-ms", "100000")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	requireContains(t, out, "error-fallback")
	requireContains(t, out, "0:20.000")
}

func TestCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "Cache is empty")

	if _, err := runCLI(t, env, "detect", testTrackID, "--duration-ms", "200000"); err != nil {
		t.Fatalf("detect: %v", err)
	}
	if _, err := runCLI(t, env, "detect", testTrackID, "--duration-ms", "200000", "--offset-db", "5"); err != nil {
		t.Fatalf("detect: %v", err)
	}

	out, err = runCLI(t, env, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, testTrackID)
	requireContains(t, out, "2 cached result(s)")

	out, err = runCLI(t, env, "cache", "remove", testTrackID)
	if err != nil {
		t.Fatalf("cache remove: %v", err)
	}
	requireContains(t, out, "Removed 2 cached result(s)")

	if _, err := runCLI(t, env, "cache", "clear"); err == nil {
		t.Fatal("expected clear without --yes to fail")
	}
	out, err = runCLI(t, env, "cache", "clear", "--yes")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared 0 cached result(s)")
}

func TestConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("DROPDNA_TOKEN", "super-secret")

	out, err := runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "[cache]")
	requireContains(t, out, "json")
	if strings.Contains(out, "super-secret") {
		t.Fatal("config show leaked the provider token")
	}

	out, err = runCLI(t, env, "config", "sample")
	if err != nil {
		t.Fatalf("config sample: %v", err)
	}
	requireContains(t, out, "[detection]")

	target := filepath.Join(t.TempDir(), "written.toml")
	out, err = runCLI(t, env, "config", "sample", "--path", target)
	if err != nil {
		t.Fatalf("config sample --path: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := runCLI(t, env, "config", "sample", "--path", target); err == nil {
		t.Fatal("expected existing file to be protected without --overwrite")
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatMs(61500); got != "1:01.500" {
		t.Errorf("formatMs(61500) = %q", got)
	}
	if got := formatMs(-1); got != "0:00.000" {
		t.Errorf("formatMs(-1) = %q", got)
	}

	now := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	if got := formatAge(now.Add(-3*time.Hour).UnixMilli(), now); got != "3 hours ago" {
		t.Errorf("formatAge = %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Track", "Drop"}, [][]string{{"abc", "1:00.000"}, {"short"}}, []columnAlignment{alignLeft, alignRight})
	requireContains(t, out, "Track")
	requireContains(t, out, "1:00.000")
	requireContains(t, out, "short")

	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}
