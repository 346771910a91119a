package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/levelscore/internal/model"
)

func testLevels() []model.Level {
	return []model.Level{
		{ID: "easy", Config: model.LevelConfig{UseColorHints: true, Labels: []string{"A", "1"}}},
		{ID: "hard", Config: model.LevelConfig{Labels: []string{"A", "1", "B", "2"}}},
	}
}

func TestSnapshotSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "game_data.json")
	st := NewSnapshotFile(path)
	ctx := context.Background()

	if _, err := st.Read(ctx); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error before first save, got %v", err)
	}

	state := model.NewGameState(testLevels())
	agg := state.LevelData["easy"]
	agg.Score = 12
	agg.InterstepTimes = append(agg.InterstepTimes, 0.5, 0.75)
	agg.StepTypes = append(agg.StepTypes, "A", "1")
	state.LevelData["easy"] = agg
	state.CurrentLevel = 1

	if err := st.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.CurrentLevel != 1 {
		t.Fatalf("expected current level 1, got %d", loaded.CurrentLevel)
	}
	if got := loaded.LevelData["easy"].Score; got != 12 {
		t.Fatalf("expected score 12, got %v", got)
	}
	if len(loaded.LevelData["hard"].RoundTimes) != 0 || loaded.LevelData["hard"].RoundTimes == nil {
		t.Fatalf("expected empty non-nil round times for hard")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the snapshot file, got %d entries", len(entries))
	}
}

func TestSnapshotFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_data.json")
	st := NewSnapshotFile(path)
	if err := st.Save(context.Background(), model.NewGameState(testLevels())); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"current_level", "levels", "level_config", "level_data", "game_over"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("expected key %q in snapshot", key)
		}
	}
	if len(doc) != 5 {
		t.Fatalf("expected 5 keys, got %d", len(doc))
	}
	if !strings.Contains(string(data), `"round_times": []`) {
		t.Fatalf("expected empty sequences to serialize as []: %s", data)
	}
}

func TestDecodeSnapshotRejectsEmpty(t *testing.T) {
	if _, err := DecodeSnapshot([]byte(`{"levels":[]}`)); err == nil {
		t.Fatalf("expected error for snapshot without levels")
	}
	if _, err := DecodeSnapshot([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestLevelLogAppend(t *testing.T) {
	dir := t.TempDir()
	lg := NewLevelLog(dir)
	ctx := context.Background()

	first := []byte(`{"score": 10, "step_types": ["A", "1"]}`)
	second := []byte(`{"score":3}`)
	path, err := lg.Append(ctx, "easy", first)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if path != filepath.Join(dir, "level_easy_data.json") {
		t.Fatalf("unexpected path %q", path)
	}
	if _, err := lg.Append(ctx, "easy", second); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, err := lg.Entries("easy")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	var decoded []map[string]any
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("log is not a JSON array: %v", err)
	}
	if decoded[0]["score"] != 10.0 || decoded[1]["score"] != 3.0 {
		t.Fatalf("unexpected entry order: %v", decoded)
	}

	other, err := lg.Entries("hard")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no entries for untouched level, got %d", len(other))
	}
}

func TestLevelLogRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	lg := NewLevelLog(dir)
	if err := os.WriteFile(lg.PathFor("easy"), []byte(`{"not":"an array"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := lg.Append(context.Background(), "easy", []byte(`{}`)); err == nil {
		t.Fatalf("expected error appending to a non-array log")
	}
}
