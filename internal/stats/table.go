package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

type column struct {
	title string
	right bool
}

// summaryColumns matches the cells produced by SummaryRow.
var summaryColumns = []column{
	{title: "Level"},
	{title: "Score", right: true},
	{title: "Correct", right: true},
	{title: "Wrong", right: true},
	{title: "Accuracy", right: true},
	{title: "Steps", right: true},
	{title: "Avg Step (s)", right: true},
	{title: "Rounds", right: true},
	{title: "Avg Round (s)", right: true},
}

// SummaryRow formats a summary as table cells.
func SummaryRow(s LevelSummary) []string {
	label := s.ID
	if s.Current {
		label += " *"
	}
	return []string{
		label,
		formatNumber(s.Score),
		formatNumber(s.Correct),
		formatNumber(s.Wrong),
		fmt.Sprintf("%.2f%%", s.Accuracy*100),
		fmt.Sprintf("%d", s.Steps),
		fmt.Sprintf("%.3f", s.AvgInterstep),
		fmt.Sprintf("%d", s.TimedRounds),
		fmt.Sprintf("%.2f", s.AvgRoundTime),
	}
}

// writeTable renders rows under cols, one line per row, header first.
func writeTable(w io.Writer, cols []column, rows [][]string) error {
	for _, line := range formatTable(cols, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// formatTable pads every cell to its column width. Rows shorter than cols are
// padded with empty cells; extra cells are dropped.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
	}
	all := append([][]string{header}, rows...)
	for _, row := range all {
		for i := range cols {
			if w := runewidth.StringWidth(cell(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, len(all))
	for n, row := range all {
		parts := make([]string, len(cols))
		for i, c := range cols {
			parts[i] = pad(cell(row, i), widths[i], c.right)
		}
		lines[n] = strings.Join(parts, " ")
	}
	return lines
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func pad(value string, width int, right bool) string {
	gap := width - runewidth.StringWidth(value)
	if gap <= 0 {
		return value
	}
	if right {
		return strings.Repeat(" ", gap) + value
	}
	return value + strings.Repeat(" ", gap)
}
