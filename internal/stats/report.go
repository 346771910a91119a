package stats

import (
	"context"

	"github.com/verte-zerg/levelscore/internal/model"
)

// SnapshotLoader reads a persisted game state.
type SnapshotLoader interface {
	Load(ctx context.Context) (model.GameState, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	State  model.GameState
	Levels []LevelSummary
}

// BuildReport loads the snapshot and prepares per-level summaries.
func BuildReport(ctx context.Context, st SnapshotLoader) (Report, error) {
	state, err := st.Load(ctx)
	if err != nil {
		return Report{}, err
	}
	return NewReport(state), nil
}

// NewReport summarizes an in-memory state.
func NewReport(state model.GameState) Report {
	return Report{State: state, Levels: Summarize(state)}
}
