// Package store handles flat-file persistence of game snapshots and raw submissions.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/levelscore/internal/model"
)

const snapshotIndent = "    "

// SnapshotFile stores the game state as one JSON document.
type SnapshotFile struct {
	path string
}

// NewSnapshotFile returns a snapshot store writing to path.
func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path}
}

// Path returns the snapshot file location.
func (s *SnapshotFile) Path() string {
	return s.path
}

// Save replaces the snapshot file with the encoded state.
func (s *SnapshotFile) Save(ctx context.Context, state model.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", snapshotIndent)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return writeFileAtomic(s.path, append(data, '\n'))
}

// Read returns the raw snapshot bytes.
func (s *SnapshotFile) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.path)
}

// Load decodes the snapshot file.
func (s *SnapshotFile) Load(ctx context.Context) (model.GameState, error) {
	data, err := s.Read(ctx)
	if err != nil {
		return model.GameState{}, err
	}
	return DecodeSnapshot(data)
}

// DecodeSnapshot parses a snapshot document.
func DecodeSnapshot(data []byte) (model.GameState, error) {
	var state model.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.GameState{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if len(state.Levels) == 0 {
		return model.GameState{}, fmt.Errorf("snapshot has no levels")
	}
	if state.LevelData == nil {
		state.LevelData = map[string]model.LevelAggregate{}
	}
	if state.LevelConfig == nil {
		state.LevelConfig = map[string]model.LevelConfig{}
	}
	for _, id := range state.Levels {
		state.LevelData[id] = state.LevelData[id].Normalize()
	}
	return state, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
