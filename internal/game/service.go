// Package game owns the game progress state and applies round submissions.
package game

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/verte-zerg/levelscore/internal/model"
)

// PersistPolicy controls when the snapshot is written.
type PersistPolicy string

const (
	// PersistAlways writes the snapshot after every submission.
	PersistAlways PersistPolicy = "always"
	// PersistCompletion writes the snapshot only when the game is completed.
	PersistCompletion PersistPolicy = "completion"
)

// ParsePersistPolicy parses a policy name; empty selects PersistAlways.
func ParsePersistPolicy(value string) (PersistPolicy, error) {
	switch PersistPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PersistAlways:
		return PersistAlways, nil
	case PersistCompletion:
		return PersistCompletion, nil
	default:
		return "", fmt.Errorf("unknown persist policy %q (want %q or %q)", value, PersistAlways, PersistCompletion)
	}
}

// SnapshotStore persists whole game state documents.
// Read and Load return an error matching fs.ErrNotExist when nothing was saved yet.
type SnapshotStore interface {
	Save(ctx context.Context, state model.GameState) error
	Read(ctx context.Context) ([]byte, error)
	Load(ctx context.Context) (model.GameState, error)
}

// SubmissionLog records raw submissions per level.
type SubmissionLog interface {
	Append(ctx context.Context, levelID string, raw []byte) (string, error)
}

// Options configures a Service.
type Options struct {
	Snapshots SnapshotStore
	// RawLog is optional; when set every accepted submission is appended to it.
	RawLog  SubmissionLog
	Persist PersistPolicy
	Logger  *log.Logger
}

// Service serializes all access to the game state.
type Service struct {
	mu        sync.Mutex
	state     model.GameState
	snapshots SnapshotStore
	rawLog    SubmissionLog
	persist   PersistPolicy
	logger    *log.Logger
	// dirty is set while the stored snapshot may differ from state.
	dirty   bool
	version uint64
}

// NewService creates a service with a fresh state for the given levels.
func NewService(levels []model.Level, opts Options) (*Service, error) {
	if len(levels) == 0 {
		return nil, errors.New("at least one level is required")
	}
	seen := make(map[string]struct{}, len(levels))
	for _, lvl := range levels {
		if lvl.ID == "" {
			return nil, errors.New("level id must not be empty")
		}
		if _, ok := seen[lvl.ID]; ok {
			return nil, fmt.Errorf("duplicate level id %q", lvl.ID)
		}
		seen[lvl.ID] = struct{}{}
	}
	if opts.Snapshots == nil {
		return nil, errors.New("snapshot store is required")
	}
	persist := opts.Persist
	if persist == "" {
		persist = PersistAlways
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		state:     model.NewGameState(levels),
		snapshots: opts.Snapshots,
		rawLog:    opts.RawLog,
		persist:   persist,
		logger:    logger,
		dirty:     true,
	}, nil
}

// SubmitRound validates a raw JSON submission and applies it to the current level.
// The returned level name and config are those of the level that was updated,
// which precedes any advance caused by level_complete.
func (s *Service) SubmitRound(ctx context.Context, body []byte) (model.SubmitResult, error) {
	sub, err := ParseSubmission(body)
	if err != nil {
		return model.SubmitResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.SubmitResult{}, internalError("request canceled", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	levelID := s.state.CurrentLevelID()
	result := model.SubmitResult{
		LevelName:   levelID,
		LevelConfig: s.state.LevelConfig[levelID].Clone(),
	}

	if s.rawLog != nil {
		path, err := s.rawLog.Append(ctx, levelID, body)
		if err != nil {
			s.logger.Printf("append raw submission for level %s: %v", levelID, err)
			return model.SubmitResult{}, internalError("failed to append raw submission", err)
		}
		result.RawLogPath = path
	}

	s.applyLocked(levelID, sub)
	wasOver := s.state.GameOver
	if sub.LevelComplete {
		s.advanceLevelLocked()
	}
	s.version++
	s.dirty = true

	if s.shouldPersist(wasOver) {
		if err := s.saveLocked(ctx); err != nil {
			s.logger.Printf("save snapshot: %v", err)
			return model.SubmitResult{}, internalError("failed to save snapshot", err)
		}
	}

	result.State = s.state.Clone()
	result.Version = s.version
	return result, nil
}

func (s *Service) applyLocked(levelID string, sub model.Submission) {
	agg := s.state.LevelData[levelID]
	agg.Score += sub.Score
	agg.CorrectSteps += sub.CorrectSteps
	agg.WrongSteps += sub.WrongSteps
	agg.InterstepTimes = append(agg.InterstepTimes, sub.InterstepTimes...)
	agg.StepTypes = append(agg.StepTypes, sub.StepTypes...)
	if sub.RoundTime != nil {
		agg.RoundTimes = append(agg.RoundTimes, *sub.RoundTime)
	}
	s.state.LevelData[levelID] = agg
}

// advanceLevelLocked moves to the next level, or ends the game on the last one.
func (s *Service) advanceLevelLocked() {
	if s.state.CurrentLevel < len(s.state.Levels)-1 {
		s.state.CurrentLevel++
		return
	}
	s.state.GameOver = true
}

func (s *Service) shouldPersist(wasOver bool) bool {
	switch s.persist {
	case PersistCompletion:
		return s.state.GameOver && !wasOver
	default:
		return true
	}
}

func (s *Service) saveLocked(ctx context.Context) error {
	if err := s.snapshots.Save(ctx, s.state); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Flush writes the in-memory state to the snapshot store.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveLocked(ctx); err != nil {
		return internalError("failed to save snapshot", err)
	}
	return nil
}

// ExportSnapshot serializes the current state. The stored snapshot is returned
// as is when it matches memory; otherwise it is rewritten first.
func (s *Service) ExportSnapshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		data, err := s.snapshots.Read(ctx)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, internalError("failed to read snapshot", err)
		}
	}
	if err := s.saveLocked(ctx); err != nil {
		return nil, internalError("failed to save snapshot", err)
	}
	data, err := s.snapshots.Read(ctx)
	if err != nil {
		return nil, internalError("failed to read snapshot", err)
	}
	return data, nil
}

// Resume replaces the in-memory state with the persisted snapshot, if any.
// It reports whether a snapshot was loaded.
func (s *Service) Resume(ctx context.Context) (bool, error) {
	loaded, err := s.snapshots.Load(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Equal(loaded.Levels, s.state.Levels) {
		return false, fmt.Errorf("snapshot levels %v do not match configured levels %v", loaded.Levels, s.state.Levels)
	}
	if loaded.CurrentLevel < 0 || loaded.CurrentLevel >= len(s.state.Levels) {
		return false, fmt.Errorf("snapshot current_level %d out of range", loaded.CurrentLevel)
	}
	next := s.state.Clone()
	next.CurrentLevel = loaded.CurrentLevel
	next.GameOver = loaded.GameOver
	for _, id := range next.Levels {
		if agg, ok := loaded.LevelData[id]; ok {
			next.LevelData[id] = agg.Normalize().Clone()
		}
	}
	s.state = next
	s.dirty = !reflect.DeepEqual(next, loaded)
	return true, nil
}

// State returns a copy of the current state.
func (s *Service) State() model.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// VersionedState returns a copy of the current state with its version, which
// increases with every applied submission.
func (s *Service) VersionedState() (model.GameState, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), s.version
}

// CurrentLevel returns the id and config of the level being played.
func (s *Service) CurrentLevel() (string, model.LevelConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.state.CurrentLevelID()
	return id, s.state.LevelConfig[id].Clone()
}
