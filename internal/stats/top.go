package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/levelscore/internal/model"
)

// StepTypeCount is how often a step type was recorded.
type StepTypeCount struct {
	Type  string
	Count int
}

// StepTypeTime is the mean inter-step time leading to a step type.
type StepTypeTime struct {
	Type string
	Mean float64
	N    int
}

// CountStepTypes counts step types, most frequent first.
func CountStepTypes(types []string) []StepTypeCount {
	counts := map[string]int{}
	for _, t := range types {
		counts[t]++
	}
	out := make([]StepTypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, StepTypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Type < out[j].Type
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// TopStepTypes returns the first n counts.
func TopStepTypes(counts []StepTypeCount, n int) []StepTypeCount {
	if n <= 0 || len(counts) == 0 {
		return nil
	}
	if n > len(counts) {
		n = len(counts)
	}
	return counts[:n]
}

// SlowestStepTypes pairs inter-step times with step types by index and returns
// the n types with the highest mean time. Unpaired trailing entries are ignored.
func SlowestStepTypes(agg model.LevelAggregate, n int) []StepTypeTime {
	pairs := min(len(agg.StepTypes), len(agg.InterstepTimes))
	if n <= 0 || pairs == 0 {
		return nil
	}
	sums := map[string]float64{}
	counts := map[string]int{}
	for i := 0; i < pairs; i++ {
		sums[agg.StepTypes[i]] += agg.InterstepTimes[i]
		counts[agg.StepTypes[i]]++
	}
	out := make([]StepTypeTime, 0, len(sums))
	for t, sum := range sums {
		out = append(out, StepTypeTime{Type: t, Mean: sum / float64(counts[t]), N: counts[t]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean == out[j].Mean {
			return out[i].Type < out[j].Type
		}
		return out[i].Mean > out[j].Mean
	})
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}

// FormatStepTypes renders counts as "A×3 1×2".
func FormatStepTypes(counts []StepTypeCount) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s×%d", c.Type, c.Count))
	}
	return strings.Join(parts, " ")
}

// FormatStepTimes renders mean times as "B 1.20s".
func FormatStepTimes(times []StepTypeTime) string {
	parts := make([]string, 0, len(times))
	for _, t := range times {
		parts = append(parts, fmt.Sprintf("%s %.2fs", t.Type, t.Mean))
	}
	return strings.Join(parts, ", ")
}
