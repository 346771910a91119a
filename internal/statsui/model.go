// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/levelscore/internal/stats"
)

const (
	tabOverview = iota
	tabLevels
	tabDetail
)

const defaultRefresh = 2 * time.Second

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	sparkStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

type refreshMsg time.Time

// Options configures the stats UI.
type Options struct {
	// Source names the snapshot in the header.
	Source string
	// Refresh is the reload interval; zero selects the default, negative disables it.
	Refresh time.Duration
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	loader stats.SnapshotLoader
	opts   Options

	report   stats.Report
	errMsg   string
	loadedAt time.Time

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	levelTable table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model reading from loader.
func NewModel(loader stats.SnapshotLoader, opts Options) *Model {
	if opts.Refresh == 0 {
		opts.Refresh = defaultRefresh
	}
	m := &Model{
		loader: loader,
		opts:   opts,
		tabs:   []string{"Overview", "Levels", "Detail"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.levelTable = buildLevelTable(nil, 0, 1)
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.scheduleRefresh()
}

func (m *Model) scheduleRefresh() tea.Cmd {
	if m.opts.Refresh < 0 {
		return nil
	}
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case refreshMsg:
		m.refreshReport()
		return m, m.scheduleRefresh()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.refreshReport()
			return m, nil
		case "enter":
			if m.activeTab == tabLevels {
				m.renderTabContents()
				m.activeTab = tabDetail
				m.levelTable.Blur()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabLevels {
				m.levelTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabLevels {
				m.levelTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabLevels {
				var cmd tea.Cmd
				m.levelTable, cmd = m.levelTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.levelTable.SetWidth(m.width)
	m.levelTable.SetHeight(max(1, vpHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.activeTab == tabDetail {
		m.renderTabContents()
	}
	if m.activeTab == tabLevels {
		m.levelTable.Focus()
	} else {
		m.levelTable.Blur()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.loader)
	if err != nil {
		m.errMsg = err.Error()
		m.renderTabContents()
		return
	}
	m.errMsg = ""
	m.report = report
	m.loadedAt = time.Now()
	cursor := m.levelTable.Cursor()
	columns, rows := buildLevelTableData(report.Levels)
	m.levelTable.SetColumns(fitColumns(columns, m.width))
	m.levelTable.SetRows(rows)
	if cursor >= 0 && cursor < len(rows) {
		m.levelTable.SetCursor(cursor)
	}
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if len(m.report.Levels) == 0 {
		msg := "No snapshot loaded."
		if m.errMsg != "" {
			msg = "Failed to load stats."
		}
		for i := range m.viewports {
			m.viewports[i].SetContent(msg)
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabDetail].SetContent(renderDetail(m.selectedLevel(), width))
}

func (m *Model) selectedLevel() stats.LevelSummary {
	idx := m.levelTable.Cursor()
	if idx < 0 || idx >= len(m.report.Levels) {
		idx = 0
	}
	if len(m.report.Levels) == 0 {
		return stats.LevelSummary{}
	}
	return m.report.Levels[idx]
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	source := m.opts.Source
	if source == "" {
		source = "snapshot"
	}
	loaded := "never"
	if !m.loadedAt.IsZero() {
		loaded = m.loadedAt.Format("15:04:05")
	}
	summary := truncateLine(fmt.Sprintf("Source: %s  loaded=%s", source, loaded), m.width)
	return tabs + "\n" + headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Reload: r  Quit: q"
	if m.activeTab == tabLevels {
		help = "Nav: left/right  Select: up/down  Detail: enter  Reload: r  Quit: q"
	}
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabLevels {
		if len(m.report.Levels) == 0 {
			return fitLines("No levels found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.levelTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func renderOverview(report stats.Report, width int) string {
	state := report.State
	var score, correct, wrong float64
	for _, s := range report.Levels {
		score += s.Score
		correct += s.Correct
		wrong += s.Wrong
	}
	status := "In progress"
	if state.GameOver {
		status = "Completed"
	}
	cards := []string{
		metricCard("Status", status),
		metricCard("Level", fmt.Sprintf("%d/%d %s", state.CurrentLevel+1, len(state.Levels), state.CurrentLevelID())),
		metricCard("Score", fmt.Sprintf("%.0f", score)),
		metricCard("Accuracy", fmt.Sprintf("%.1f%%", stats.Accuracy(correct, wrong)*100)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	lines := []string{summary, "", headerStyle.Render("Inter-step time per level")}
	sparkWidth := max(10, width-16)
	for _, s := range report.Levels {
		spark := stats.InterstepSparkline(s, sparkWidth)
		if spark == "" {
			spark = headerStyle.Render("no data")
		} else {
			spark = sparkStyle.Render(spark)
		}
		lines = append(lines, fmt.Sprintf("%-12s %s", truncateLine(s.ID, 12), spark))
	}
	return strings.Join(lines, "\n")
}

func renderDetail(s stats.LevelSummary, width int) string {
	if s.ID == "" {
		return "No level selected."
	}
	lines := []string{
		cardValueStyle.Render("Level " + s.ID),
		"",
		fmt.Sprintf("Score:          %s", stats.SummaryRow(s)[1]),
		fmt.Sprintf("Correct/Wrong:  %.0f / %.0f (%.2f%%)", s.Correct, s.Wrong, s.Accuracy*100),
		fmt.Sprintf("Steps:          %d  avg %.3fs", s.Steps, s.AvgInterstep),
		fmt.Sprintf("Timed rounds:   %d  avg %.2fs", s.TimedRounds, s.AvgRoundTime),
	}
	if len(s.StepTypes) > 0 {
		lines = append(lines, "", headerStyle.Render("Step types"))
		for _, c := range s.StepTypes {
			lines = append(lines, fmt.Sprintf("  %-8s %d", c.Type, c.Count))
		}
	}
	if spark := stats.InterstepSparkline(s, max(10, width-4)); spark != "" {
		lines = append(lines, "", headerStyle.Render("Inter-step time"), "  "+sparkStyle.Render(spark))
	}
	return strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildLevelTable(levels []stats.LevelSummary, width, height int) table.Model {
	columns, rows := buildLevelTableData(levels)
	t := table.New(
		table.WithColumns(fitColumns(columns, width)),
		table.WithRows(rows),
		table.WithHeight(max(1, height-1)),
		table.WithFocused(false),
	)
	t.SetStyles(levelTableStyles())
	return t
}

func buildLevelTableData(levels []stats.LevelSummary) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Level", Width: 10},
		{Title: "Score", Width: 8},
		{Title: "Correct", Width: 8},
		{Title: "Wrong", Width: 6},
		{Title: "Accuracy", Width: 9},
		{Title: "Steps", Width: 6},
		{Title: "Avg Step", Width: 9},
		{Title: "Rounds", Width: 7},
		{Title: "Avg Round", Width: 9},
	}
	rows := make([]table.Row, 0, len(levels))
	for _, s := range levels {
		rows = append(rows, table.Row(stats.SummaryRow(s)))
	}
	return columns, rows
}

// fitColumns widens the first column to use leftover width.
func fitColumns(columns []table.Column, width int) []table.Column {
	if width <= 0 || len(columns) == 0 {
		return columns
	}
	used := 0
	for _, c := range columns {
		used += c.Width + 1
	}
	if extra := width - used; extra > 0 {
		columns[0].Width += extra
	}
	return columns
}

func levelTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
