package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/levelscore/internal/config"
	"github.com/verte-zerg/levelscore/internal/store"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, key := range []string{"LEVELSCORE_ADDR", "LEVELSCORE_LEVELS", "LEVELSCORE_SNAPSHOT", "LEVELSCORE_LOG_DIR", "LEVELSCORE_RAW_LOG", "LEVELSCORE_PERSIST", "LEVELSCORE_RESUME"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template should be valid TOML: %v", err)
	}
	uncommented := strings.ReplaceAll(defaultConfigTemplate(), "# addr", "addr")
	if _, err := toml.Decode(uncommented, &cfg); err != nil {
		t.Fatalf("uncommented template should decode: %v", err)
	}
	if cfg.Server.Addr == nil || *cfg.Server.Addr != defaultAddr {
		t.Fatalf("expected addr %q, got %v", defaultAddr, cfg.Server.Addr)
	}
}

func TestWriteLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := writeLevels(&buf, config.DefaultLevels()); err != nil {
		t.Fatalf("write levels: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "1. easy") || !strings.Contains(lines[0], "hints=yes") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[2], "labels=16") {
		t.Fatalf("unexpected hard line %q", lines[2])
	}
}

func TestSnapshotCommandWritesFresh(t *testing.T) {
	dir := isolateEnv(t)
	snapshot := filepath.Join(dir, "game_data.json")
	out := filepath.Join(dir, "export.json")

	root := newRootCmd()
	root.SetArgs([]string{"snapshot", "--snapshot", snapshot, "--out", out})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	t.Cleanup(func() { snapshotOut = "" })

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	state, err := store.DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(state.Levels) != 3 || state.CurrentLevel != 0 || state.GameOver {
		t.Fatalf("unexpected fresh state: %+v", state)
	}
	if _, err := os.Stat(snapshot); err != nil {
		t.Fatalf("expected snapshot to be created: %v", err)
	}
}

func TestStatsPlainReadsSnapshotFromEnv(t *testing.T) {
	dir := isolateEnv(t)
	snapshot := filepath.Join(dir, "env_snapshot.json")
	t.Setenv("LEVELSCORE_SNAPSHOT", snapshot)

	root := newRootCmd()
	root.SetArgs([]string{"snapshot"})
	var discard bytes.Buffer
	root.SetOut(&discard)
	if err := root.Execute(); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	root = newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"stats", "--plain"})
	if err := root.Execute(); err != nil {
		t.Fatalf("stats: %v", err)
	}
	t.Cleanup(func() { statsPlain = false })
	if !strings.Contains(buf.String(), "Game: in progress (level 1 of 3: easy)") {
		t.Fatalf("unexpected stats output:\n%s", buf.String())
	}
}

func TestLevelsCommandRejectsBadFile(t *testing.T) {
	dir := isolateEnv(t)
	path := filepath.Join(dir, "levels.yaml")
	if err := os.WriteFile(path, []byte("levels:\n  - id: Bad Name\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"levels", "--levels", path})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected invalid level id to be rejected")
	}
	t.Cleanup(func() { serveLevels = "" })
}

func TestStartServiceResetsStaleSnapshot(t *testing.T) {
	dir := isolateEnv(t)
	newRootCmd()
	serveSnapshot = filepath.Join(dir, "game_data.json")
	serveRawLog = false
	logger := log.New(io.Discard, "", 0)
	ctx := context.Background()

	first, err := startService(ctx, logger)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	body := `{"score":10,"correct_steps":5,"wrong_steps":1,"interstep_times":[0.5],"step_types":["A"],"level_complete":true}`
	if _, err := first.SubmitRound(ctx, []byte(body)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := startService(ctx, logger); err != nil {
		t.Fatalf("restart: %v", err)
	}
	state, err := store.NewSnapshotFile(serveSnapshot).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.CurrentLevel != 0 || state.LevelData["easy"].Score != 0 {
		t.Fatalf("expected restart to reset the stored snapshot, got %+v", state)
	}

	if _, err := first.SubmitRound(ctx, []byte(body)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	serveResume = true
	t.Cleanup(func() { serveResume = false })
	resumed, err := startService(ctx, logger)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got := resumed.State(); got.CurrentLevel != 2 {
		t.Fatalf("expected resumed level 2, got %d", got.CurrentLevel)
	}
}
