// Package model defines shared data structures.
package model

// Level pairs a level id with its static configuration.
type Level struct {
	ID     string
	Config LevelConfig
}

// LevelConfig holds the per-level settings the game page reads.
type LevelConfig struct {
	UseColorHints bool     `json:"use_color_hints"`
	Labels        []string `json:"labels"`
}

// LevelAggregate accumulates round results for one level.
type LevelAggregate struct {
	Score          float64   `json:"score"`
	CorrectSteps   float64   `json:"correct_steps"`
	WrongSteps     float64   `json:"wrong_steps"`
	RoundTimes     []float64 `json:"round_times"`
	InterstepTimes []float64 `json:"interstep_times"`
	StepTypes      []string  `json:"step_types"`
}

// GameState is the full progress document; it is also the snapshot format.
type GameState struct {
	CurrentLevel int                       `json:"current_level"`
	Levels       []string                  `json:"levels"`
	LevelConfig  map[string]LevelConfig    `json:"level_config"`
	LevelData    map[string]LevelAggregate `json:"level_data"`
	GameOver     bool                      `json:"game_over"`
}

// Submission is one decoded round result.
type Submission struct {
	Score          float64   `json:"score"`
	CorrectSteps   float64   `json:"correct_steps"`
	WrongSteps     float64   `json:"wrong_steps"`
	InterstepTimes []float64 `json:"interstep_times"`
	StepTypes      []string  `json:"step_types"`
	LevelComplete  bool      `json:"level_complete"`
	RoundTime      *float64  `json:"round_time,omitempty"`
}

// SubmitResult is returned after a submission has been applied.
type SubmitResult struct {
	State       GameState
	LevelName   string
	LevelConfig LevelConfig
	// RawLogPath is set when the submission was also appended to a raw log.
	RawLogPath string
	// Version orders results; later submissions carry higher versions.
	Version uint64
}

// NewGameState builds a fresh state with every level's aggregate zeroed.
func NewGameState(levels []Level) GameState {
	state := GameState{
		Levels:      make([]string, 0, len(levels)),
		LevelConfig: make(map[string]LevelConfig, len(levels)),
		LevelData:   make(map[string]LevelAggregate, len(levels)),
	}
	for _, lvl := range levels {
		state.Levels = append(state.Levels, lvl.ID)
		state.LevelConfig[lvl.ID] = lvl.Config.Clone()
		state.LevelData[lvl.ID] = NewLevelAggregate()
	}
	return state
}

// NewLevelAggregate returns a zeroed aggregate with empty, non-nil sequences.
func NewLevelAggregate() LevelAggregate {
	return LevelAggregate{
		RoundTimes:     []float64{},
		InterstepTimes: []float64{},
		StepTypes:      []string{},
	}
}

// CurrentLevelID returns the id of the level currently being played.
func (s GameState) CurrentLevelID() string {
	if s.CurrentLevel < 0 || s.CurrentLevel >= len(s.Levels) {
		return ""
	}
	return s.Levels[s.CurrentLevel]
}

// Clone returns a deep copy.
func (s GameState) Clone() GameState {
	out := GameState{
		CurrentLevel: s.CurrentLevel,
		Levels:       append([]string{}, s.Levels...),
		LevelConfig:  make(map[string]LevelConfig, len(s.LevelConfig)),
		LevelData:    make(map[string]LevelAggregate, len(s.LevelData)),
		GameOver:     s.GameOver,
	}
	for id, cfg := range s.LevelConfig {
		out.LevelConfig[id] = cfg.Clone()
	}
	for id, agg := range s.LevelData {
		out.LevelData[id] = agg.Clone()
	}
	return out
}

// Clone returns a deep copy.
func (c LevelConfig) Clone() LevelConfig {
	labels := make([]string, len(c.Labels))
	copy(labels, c.Labels)
	return LevelConfig{UseColorHints: c.UseColorHints, Labels: labels}
}

// Clone returns a deep copy.
func (a LevelAggregate) Clone() LevelAggregate {
	return LevelAggregate{
		Score:          a.Score,
		CorrectSteps:   a.CorrectSteps,
		WrongSteps:     a.WrongSteps,
		RoundTimes:     append([]float64{}, a.RoundTimes...),
		InterstepTimes: append([]float64{}, a.InterstepTimes...),
		StepTypes:      append([]string{}, a.StepTypes...),
	}
}

// Normalize replaces nil sequences with empty ones so they serialize as [].
func (a LevelAggregate) Normalize() LevelAggregate {
	if a.RoundTimes == nil {
		a.RoundTimes = []float64{}
	}
	if a.InterstepTimes == nil {
		a.InterstepTimes = []float64{}
	}
	if a.StepTypes == nil {
		a.StepTypes = []string{}
	}
	return a
}
