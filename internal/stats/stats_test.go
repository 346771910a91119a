package stats

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/levelscore/internal/model"
)

func sampleState() model.GameState {
	state := model.NewGameState([]model.Level{
		{ID: "easy", Config: model.LevelConfig{UseColorHints: true, Labels: []string{"A", "1"}}},
		{ID: "medium", Config: model.LevelConfig{Labels: []string{"A", "1", "B"}}},
	})
	state.LevelData["easy"] = model.LevelAggregate{
		Score:          15,
		CorrectSteps:   9,
		WrongSteps:     1,
		RoundTimes:     []float64{12, 18},
		InterstepTimes: []float64{0.5, 1.5, 1.0, 2.0},
		StepTypes:      []string{"A", "1", "A", "B"},
	}
	state.CurrentLevel = 1
	return state
}

func TestSummarize(t *testing.T) {
	sums := Summarize(sampleState())
	if len(sums) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(sums))
	}
	easy := sums[0]
	if easy.ID != "easy" || easy.Current {
		t.Fatalf("unexpected easy summary: %+v", easy)
	}
	if easy.Accuracy != 0.9 {
		t.Fatalf("expected accuracy 0.9, got %v", easy.Accuracy)
	}
	if easy.AvgInterstep != 1.25 {
		t.Fatalf("expected avg interstep 1.25, got %v", easy.AvgInterstep)
	}
	if easy.AvgRoundTime != 15 || easy.TimedRounds != 2 {
		t.Fatalf("unexpected round stats: %+v", easy)
	}
	if easy.StepTypes[0] != (StepTypeCount{Type: "A", Count: 2}) {
		t.Fatalf("expected A to be the most frequent step, got %+v", easy.StepTypes)
	}
	if !sums[1].Current || sums[1].Accuracy != 0 {
		t.Fatalf("unexpected medium summary: %+v", sums[1])
	}
}

func TestSummarizeGameOverHasNoCurrent(t *testing.T) {
	state := sampleState()
	state.GameOver = true
	for _, s := range Summarize(state) {
		if s.Current {
			t.Fatalf("expected no current level after game over, got %s", s.ID)
		}
	}
}

func TestSlowestStepTypes(t *testing.T) {
	agg := model.LevelAggregate{
		InterstepTimes: []float64{0.5, 1.5, 1.0},
		StepTypes:      []string{"A", "1", "A", "B"},
	}
	slow := SlowestStepTypes(agg, 5)
	if len(slow) != 2 {
		t.Fatalf("expected 2 paired types, got %d", len(slow))
	}
	if slow[0].Type != "1" || slow[0].Mean != 1.5 {
		t.Fatalf("unexpected slowest entry: %+v", slow[0])
	}
	if slow[1].Type != "A" || slow[1].Mean != 0.75 || slow[1].N != 2 {
		t.Fatalf("unexpected second entry: %+v", slow[1])
	}
	if got := SlowestStepTypes(model.LevelAggregate{}, 3); got != nil {
		t.Fatalf("expected nil for empty aggregate, got %v", got)
	}
}

func TestTopStepTypes(t *testing.T) {
	counts := CountStepTypes([]string{"b", "a", "b", "c", "a"})
	top := TopStepTypes(counts, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 types, got %d", len(top))
	}
	if top[0].Type != "a" || top[1].Type != "b" {
		t.Fatalf("unexpected order: %v", top)
	}
	if got := FormatStepTypes(top); got != "a×2 b×2" {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{2, 2, 2}); got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline for no values")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 3, 5, 7}, 2)
	want := []float64{1, 2, 4, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestDownsample(t *testing.T) {
	got := Downsample([]float64{1, 3, 5, 7}, 2)
	if len(got) != 2 || got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected downsample %v", got)
	}
	if len(Downsample([]float64{1, 2}, 10)) != 2 {
		t.Fatalf("expected short input to be returned unchanged")
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sampleState()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Game: in progress (level 2 of 2: medium)") {
		t.Fatalf("missing status line:\n%s", out)
	}
	if !strings.Contains(out, "90.00%") {
		t.Fatalf("missing easy accuracy:\n%s", out)
	}
	if !strings.Contains(out, "medium *") {
		t.Fatalf("expected current level marker:\n%s", out)
	}
}

func TestRenderLevelDetails(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderLevelDetails(&buf, sampleState(), 40); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Top steps: A×2") {
		t.Fatalf("missing top steps:\n%s", out)
	}
	if !strings.Contains(out, "no steps recorded") {
		t.Fatalf("expected empty level note:\n%s", out)
	}
}

type fakeLoader struct {
	state model.GameState
	err   error
}

func (f fakeLoader) Load(context.Context) (model.GameState, error) {
	return f.state, f.err
}

func TestBuildReport(t *testing.T) {
	report, err := BuildReport(context.Background(), fakeLoader{state: sampleState()})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Levels) != 2 || report.State.CurrentLevel != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	boom := errors.New("boom")
	if _, err := BuildReport(context.Background(), fakeLoader{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
}
