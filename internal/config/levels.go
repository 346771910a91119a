package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/levelscore/internal/model"
)

// Level ids end up in log file names, so they are restricted.
var levelIDPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// LevelsFile is the YAML level definition document.
type LevelsFile struct {
	Levels []LevelDef `yaml:"levels"`
}

// LevelDef describes one level in play order.
type LevelDef struct {
	ID            string   `yaml:"id"`
	UseColorHints bool     `yaml:"use_color_hints"`
	Labels        []string `yaml:"labels"`
}

// DefaultLevels returns the built-in easy/medium/hard progression.
func DefaultLevels() []model.Level {
	return []model.Level{
		{ID: "easy", Config: model.LevelConfig{
			UseColorHints: true,
			Labels:        []string{"A", "1", "B", "2", "C", "3", "D", "4", "E", "5"},
		}},
		{ID: "medium", Config: model.LevelConfig{
			Labels: []string{"A", "1", "B", "2", "C", "3", "D", "4"},
		}},
		{ID: "hard", Config: model.LevelConfig{
			Labels: []string{"A", "1", "B", "2", "C", "3", "D", "4", "E", "5", "F", "6", "G", "7", "H", "8"},
		}},
	}
}

// LoadLevels reads level definitions from a YAML file.
// An empty path selects DefaultLevels.
func LoadLevels(path string) ([]model.Level, error) {
	if path == "" {
		return DefaultLevels(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels file: %w", err)
	}
	return ParseLevels(data)
}

// ParseLevels decodes and validates a YAML level document.
func ParseLevels(data []byte) ([]model.Level, error) {
	var file LevelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse levels file: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("invalid levels file: %w", err)
	}
	levels := make([]model.Level, 0, len(file.Levels))
	for _, def := range file.Levels {
		labels := def.Labels
		if labels == nil {
			labels = []string{}
		}
		levels = append(levels, model.Level{
			ID:     def.ID,
			Config: model.LevelConfig{UseColorHints: def.UseColorHints, Labels: labels},
		})
	}
	return levels, nil
}

// Validate checks that ids are present, unique and file-name safe.
func (f LevelsFile) Validate() error {
	if len(f.Levels) == 0 {
		return fmt.Errorf("no levels defined")
	}
	seen := make(map[string]struct{}, len(f.Levels))
	for i, def := range f.Levels {
		if def.ID == "" {
			return fmt.Errorf("level %d: id is empty", i)
		}
		if !levelIDPattern.MatchString(def.ID) {
			return fmt.Errorf("level %d: id %q must match %s", i, def.ID, levelIDPattern)
		}
		if _, ok := seen[def.ID]; ok {
			return fmt.Errorf("level %d: duplicate id %q", i, def.ID)
		}
		seen[def.ID] = struct{}{}
	}
	return nil
}
