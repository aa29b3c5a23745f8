package conformance

import (
	"context"
	"testing"
	"time"

	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/dfg"
	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/ptree"
	"github.com/conformly/conformly/pkg/temporal"
)

func seqTree(labels ...string) *ptree.Node {
	nodes := make([]*ptree.Node, len(labels))
	for i, l := range labels {
		nodes[i] = ptree.Activity(l)
	}
	return ptree.Sequence(nodes...)
}

func logOf(variants ...[]string) *model.EventLog {
	log := model.NewEventLog()
	for i, acts := range variants {
		log.Append(model.Case{
			ID:     string(rune('1' + i)),
			Events: model.TraceFromActivities(DefaultActivityKey, acts),
		})
	}
	return log
}

func TestFitnessTokenBasedReplay(t *testing.T) {
	sys, err := seqTree("a", "b", "c").AsPetriNet()
	if err != nil {
		t.Fatalf("AsPetriNet failed: %v", err)
	}

	log := logOf(
		[]string{"a", "b", "c"},
		[]string{"a", "b", "c"},
		[]string{"a", "c"},
		[]string{"a", "b", "c"},
	)

	result, err := FitnessTokenBasedReplay(context.Background(), log, sys)
	if err != nil {
		t.Fatalf("FitnessTokenBasedReplay failed: %v", err)
	}
	if result.PercentageOfFittingTraces != 75.0 {
		t.Errorf("PercentageOfFittingTraces = %v, want 75.0", result.PercentageOfFittingTraces)
	}
	if result.AverageTraceFitness >= 1.0 || result.AverageTraceFitness <= 0 {
		t.Errorf("AverageTraceFitness = %v, want in (0,1)", result.AverageTraceFitness)
	}
}

func TestFitnessAlignments_AllModelShapes(t *testing.T) {
	log := logOf([]string{"a", "b"})

	tree := seqTree("a", "b")
	sys, err := tree.AsPetriNet()
	if err != nil {
		t.Fatalf("AsPetriNet failed: %v", err)
	}
	graph := dfg.New().AddEdge("a", "b", 1).AddStart("a", 1).AddEnd("b", 1)

	for name, m := range map[string]any{
		"petri": sys,
		"tree":  tree,
		"dfg":   graph,
	} {
		result, err := FitnessAlignments(context.Background(), log, m)
		if err != nil {
			t.Fatalf("%s: FitnessAlignments failed: %v", name, err)
		}
		if result.AverageTraceFitness != 1.0 {
			t.Errorf("%s: AverageTraceFitness = %v, want 1.0", name, result.AverageTraceFitness)
		}
		if result.PercentageOfFittingTraces != 100.0 {
			t.Errorf("%s: PercentageOfFittingTraces = %v, want 100.0", name, result.PercentageOfFittingTraces)
		}
	}
}

func TestFitness_EmptyLog(t *testing.T) {
	sys, _ := seqTree("a").AsPetriNet()
	result, err := FitnessTokenBasedReplay(context.Background(), model.NewEventLog(), sys)
	if err != nil {
		t.Fatalf("FitnessTokenBasedReplay failed: %v", err)
	}
	if result.AverageTraceFitness != 1.0 || result.PercentageOfFittingTraces != 100.0 {
		t.Errorf("empty log should be vacuously fit, got %+v", result)
	}
}

func TestDiagnostics_OrderMatchesLog(t *testing.T) {
	sys, _ := seqTree("a", "b").AsPetriNet()
	log := logOf(
		[]string{"a", "b"},
		[]string{"b"},
		[]string{"a", "b"},
	)

	replayResults, err := DiagnosticsTokenBasedReplay(context.Background(), log, sys)
	if err != nil {
		t.Fatalf("DiagnosticsTokenBasedReplay failed: %v", err)
	}
	alignResults, err := DiagnosticsAlignments(context.Background(), log, sys)
	if err != nil {
		t.Fatalf("DiagnosticsAlignments failed: %v", err)
	}

	if len(replayResults) != 3 || len(alignResults) != 3 {
		t.Fatalf("expected 3 results each, got %d and %d", len(replayResults), len(alignResults))
	}
	if !replayResults[0].IsFit || replayResults[1].IsFit || !replayResults[2].IsFit {
		t.Error("replay results out of log order")
	}
	if alignResults[0].Fitness != 1.0 || alignResults[1].Fitness >= 1.0 || alignResults[2].Fitness != 1.0 {
		t.Error("alignment results out of log order")
	}
}

func TestNewProperties_InputShape(t *testing.T) {
	if _, err := FitnessAlignments(context.Background(), nil, seqTree("a")); err == nil {
		t.Error("nil log must fail")
	} else if !errors.IsInputShape(err) {
		t.Errorf("expected input shape error, got %v", err)
	}

	var nilLog *model.EventLog
	if _, err := FitnessAlignments(context.Background(), nilLog, seqTree("a")); err == nil {
		t.Error("typed nil log must fail")
	}
}

func TestRoute_UnsupportedModel(t *testing.T) {
	log := logOf([]string{"a"})
	_, err := FitnessAlignments(context.Background(), log, 42)
	if err == nil {
		t.Fatal("unsupported model must fail")
	}
	if !errors.IsUnsupportedModel(err) {
		t.Errorf("expected unsupported model error, got %v", err)
	}
}

func TestPrecision_Bounds(t *testing.T) {
	exact := seqTree("a", "b")
	loose := ptree.Sequence(ptree.Activity("a"), ptree.Xor(ptree.Activity("b"), ptree.Activity("c")))

	log := logOf([]string{"a", "b"})

	exactSys, _ := exact.AsPetriNet()
	pExact, err := PrecisionTokenBasedReplay(context.Background(), log, exactSys)
	if err != nil {
		t.Fatalf("PrecisionTokenBasedReplay failed: %v", err)
	}
	if pExact != 1.0 {
		t.Errorf("precision of exact model = %v, want 1.0", pExact)
	}

	looseSys, err := loose.AsPetriNet()
	if err != nil {
		t.Fatalf("AsPetriNet failed: %v", err)
	}
	pLoose, err := PrecisionAlignments(context.Background(), log, looseSys)
	if err != nil {
		t.Fatalf("PrecisionAlignments failed: %v", err)
	}
	if pLoose < 0 || pLoose > 1 {
		t.Errorf("precision out of range: %v", pLoose)
	}
	if pLoose >= pExact {
		t.Errorf("looser model should be less precise: loose=%v exact=%v", pLoose, pExact)
	}
}

func TestConformanceTemporalProfile(t *testing.T) {
	profile := temporal.Profile{}.Set("register", "approve", 3600, 120)

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	mkCase := func(id string, gap time.Duration) model.Case {
		return model.Case{ID: id, Events: model.Trace{
			{Attributes: map[string]any{DefaultActivityKey: "register", DefaultTimestampKey: base}},
			{Attributes: map[string]any{DefaultActivityKey: "approve", DefaultTimestampKey: base.Add(gap)}},
		}}
	}
	log := model.NewEventLog(
		mkCase("ok", time.Hour),
		mkCase("slow", 24*time.Hour),
	)

	deviations, err := ConformanceTemporalProfile(context.Background(), log, profile, WithZeta(1.0))
	if err != nil {
		t.Fatalf("ConformanceTemporalProfile failed: %v", err)
	}
	if len(deviations) != 2 {
		t.Fatalf("expected one entry per case, got %d", len(deviations))
	}
	if len(deviations[0]) != 0 {
		t.Errorf("case within the profile flagged: %+v", deviations[0])
	}
	if len(deviations[1]) != 1 {
		t.Fatalf("slow case should carry one deviation, got %+v", deviations[1])
	}
	d := deviations[1][0]
	if d.Source != "register" || d.Target != "approve" {
		t.Errorf("deviation pair = %s -> %s", d.Source, d.Target)
	}
	if d.ObservedGap != 86400 {
		t.Errorf("ObservedGap = %v, want 86400", d.ObservedGap)
	}
	if d.AllowedBound != 120 {
		t.Errorf("AllowedBound = %v, want zeta*stddev = 120", d.AllowedBound)
	}
}

func TestConformanceTemporalProfile_ZetaWidens(t *testing.T) {
	profile := temporal.Profile{}.Set("a", "b", 100, 10)

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	log := model.NewEventLog(model.Case{ID: "1", Events: model.Trace{
		{Attributes: map[string]any{DefaultActivityKey: "a", DefaultTimestampKey: base}},
		{Attributes: map[string]any{DefaultActivityKey: "b", DefaultTimestampKey: base.Add(130 * time.Second)}},
	}})

	tight, err := ConformanceTemporalProfile(context.Background(), log, profile, WithZeta(1.0))
	if err != nil {
		t.Fatal(err)
	}
	loose, err := ConformanceTemporalProfile(context.Background(), log, profile, WithZeta(6.0))
	if err != nil {
		t.Fatal(err)
	}
	if len(tight[0]) != 1 {
		t.Errorf("gap of 3 sigma should deviate at zeta=1, got %+v", tight[0])
	}
	if len(loose[0]) != 0 {
		t.Errorf("gap of 3 sigma should pass at zeta=6, got %+v", loose[0])
	}
}
