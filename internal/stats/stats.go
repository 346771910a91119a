// Package stats contains per-level statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/levelscore/internal/model"
)

const (
	sparkChars      = " .:-=+*#%@"
	sparkWindow     = 3
	topStepTypes    = 5
	defaultMaxSpark = 60
)

// LevelSummary holds the derived metrics of one level.
type LevelSummary struct {
	ID           string
	Current      bool
	TimedRounds  int
	Steps        int
	Score        float64
	Correct      float64
	Wrong        float64
	Accuracy     float64
	AvgInterstep float64
	AvgRoundTime float64
	StepTypes    []StepTypeCount
	Interstep    []float64
}

// Accuracy returns correct / (correct + wrong), or 0 when nothing was recorded.
func Accuracy(correct, wrong float64) float64 {
	den := correct + wrong
	if den <= 0 {
		return 0
	}
	return correct / den
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Summarize computes a summary per level in play order.
func Summarize(state model.GameState) []LevelSummary {
	out := make([]LevelSummary, 0, len(state.Levels))
	for i, id := range state.Levels {
		agg := state.LevelData[id].Normalize()
		out = append(out, LevelSummary{
			ID:           id,
			Current:      i == state.CurrentLevel && !state.GameOver,
			TimedRounds:  len(agg.RoundTimes),
			Steps:        len(agg.StepTypes),
			Score:        agg.Score,
			Correct:      agg.CorrectSteps,
			Wrong:        agg.WrongSteps,
			Accuracy:     Accuracy(agg.CorrectSteps, agg.WrongSteps),
			AvgInterstep: Mean(agg.InterstepTimes),
			AvgRoundTime: Mean(agg.RoundTimes),
			StepTypes:    CountStepTypes(agg.StepTypes),
			Interstep:    append([]float64(nil), agg.InterstepTimes...),
		})
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Downsample averages values into at most width buckets.
func Downsample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return append([]float64(nil), values...)
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		out[i] = Mean(values[start:end])
	}
	return out
}

// InterstepSparkline smooths and fits the inter-step times of a level into width columns.
func InterstepSparkline(s LevelSummary, width int) string {
	if width <= 0 {
		width = defaultMaxSpark
	}
	return Sparkline(Downsample(MovingAverage(s.Interstep, sparkWindow), width))
}

// RenderSummary prints the game status and a table of per-level metrics.
func RenderSummary(w io.Writer, state model.GameState) error {
	if len(state.Levels) == 0 {
		_, err := fmt.Fprintln(w, "No levels found.")
		return err
	}
	status := "in progress"
	if state.GameOver {
		status = "completed"
	}
	if _, err := fmt.Fprintf(w, "Game: %s (level %d of %d: %s)\n", status, state.CurrentLevel+1, len(state.Levels), state.CurrentLevelID()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	summaries := Summarize(state)
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, SummaryRow(s))
	}
	if err := writeTable(w, summaryColumns, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderLevelDetails prints step type counts and an inter-step sparkline per level.
func RenderLevelDetails(w io.Writer, state model.GameState, width int) error {
	for _, s := range Summarize(state) {
		if _, err := fmt.Fprintf(w, "Level %s\n", s.ID); err != nil {
			return err
		}
		if len(s.StepTypes) == 0 {
			if _, err := fmt.Fprintln(w, "  no steps recorded"); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "  Top steps: %s\n", FormatStepTypes(TopStepTypes(s.StepTypes, topStepTypes))); err != nil {
			return err
		}
		if slow := SlowestStepTypes(state.LevelData[s.ID], topStepTypes); len(slow) > 0 {
			if _, err := fmt.Fprintf(w, "  Slowest:   %s\n", FormatStepTimes(slow)); err != nil {
				return err
			}
		}
		if spark := InterstepSparkline(s, width-4); spark != "" {
			if _, err := fmt.Fprintf(w, "  [%s]\n", spark); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
