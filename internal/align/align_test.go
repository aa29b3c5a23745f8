package align

import (
	"context"
	"reflect"
	"testing"

	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/cache"
	"github.com/conformly/conformly/pkg/petri"
	"github.com/conformly/conformly/pkg/ptree"
)

const actKey = "concept:name"

func seqSystem(t *testing.T, labels ...string) *petri.System {
	t.Helper()
	nodes := make([]*ptree.Node, len(labels))
	for i, l := range labels {
		nodes[i] = ptree.Activity(l)
	}
	sys, err := ptree.Sequence(nodes...).AsPetriNet()
	if err != nil {
		t.Fatalf("AsPetriNet failed: %v", err)
	}
	return sys
}

func trace(acts ...string) model.Trace {
	return model.TraceFromActivities(actKey, acts)
}

func TestApplyTrace_Fitting(t *testing.T) {
	sys := seqSystem(t, "a", "b", "c")
	r, err := ApplyTrace(trace("a", "b", "c"), sys, actKey)
	if err != nil {
		t.Fatalf("ApplyTrace failed: %v", err)
	}

	if r.Fitness != 1.0 {
		t.Errorf("Fitness = %v, want exactly 1.0", r.Fitness)
	}
	for _, m := range r.Moves {
		if m.Type == MoveLog {
			t.Errorf("fitting trace produced log move %+v", m)
		}
		if m.Type == MoveModel && m.Transition == "" {
			t.Error("model move without transition name")
		}
	}
}

func TestApplyTrace_LogMove(t *testing.T) {
	sys := seqSystem(t, "a", "b")
	r, err := ApplyTrace(trace("a", "z", "b"), sys, actKey)
	if err != nil {
		t.Fatalf("ApplyTrace failed: %v", err)
	}

	if r.Fitness >= 1.0 {
		t.Errorf("Fitness = %v, want < 1.0", r.Fitness)
	}
	foundLog := false
	for _, m := range r.Moves {
		if m.Type == MoveLog && m.Activity == "z" {
			foundLog = true
		}
	}
	if !foundLog {
		t.Errorf("expected a log move for z, moves: %+v", r.Moves)
	}
}

func TestApplyTrace_ModelMove(t *testing.T) {
	sys := seqSystem(t, "a", "b")
	r, err := ApplyTrace(trace("a"), sys, actKey)
	if err != nil {
		t.Fatalf("ApplyTrace failed: %v", err)
	}

	if r.Fitness >= 1.0 {
		t.Errorf("Fitness = %v, want < 1.0", r.Fitness)
	}
	foundModel := false
	for _, m := range r.Moves {
		if m.Type == MoveModel && m.Transition != "" {
			foundModel = true
		}
	}
	if !foundModel {
		t.Errorf("expected a model move for the skipped b, moves: %+v", r.Moves)
	}
}

func TestApplyTrace_SilentMovesDoNotHurtFitness(t *testing.T) {
	// xor(a, tau): replaying a forces no deviation even though the net
	// carries silent transitions.
	sys, err := ptree.Xor(ptree.Activity("a"), ptree.Silent()).AsPetriNet()
	if err != nil {
		t.Fatalf("AsPetriNet failed: %v", err)
	}

	r, err := ApplyTrace(trace("a"), sys, actKey)
	if err != nil {
		t.Fatalf("ApplyTrace failed: %v", err)
	}
	if r.Fitness != 1.0 {
		t.Errorf("Fitness = %v, want 1.0 despite silent moves", r.Fitness)
	}
}

func TestApply_PreservesLogOrder(t *testing.T) {
	sys := seqSystem(t, "a", "b")
	log := model.NewEventLog(
		model.Case{ID: "1", Events: trace("a", "b")},
		model.Case{ID: "2", Events: trace("b")},
		model.Case{ID: "3", Events: trace("a", "b")},
		model.Case{ID: "4", Events: trace("a")},
	)

	sequential, err := Apply(context.Background(), log, sys, actKey, Options{})
	if err != nil {
		t.Fatalf("sequential Apply failed: %v", err)
	}
	parallel, err := Apply(context.Background(), log, sys, actKey, Options{Parallel: true, NumWorkers: 4})
	if err != nil {
		t.Fatalf("parallel Apply failed: %v", err)
	}

	if !reflect.DeepEqual(sequential, parallel) {
		t.Error("parallel and sequential runs must agree per position")
	}
	if sequential[0].Fitness != 1.0 || sequential[2].Fitness != 1.0 {
		t.Error("fitting cases must score 1.0 regardless of position")
	}
	if sequential[1].Fitness >= 1.0 || sequential[3].Fitness >= 1.0 {
		t.Error("deviating cases must score below 1.0")
	}
}

func TestApply_CacheRoundTrip(t *testing.T) {
	sys := seqSystem(t, "a", "b")
	log := model.NewEventLog(
		model.Case{ID: "1", Events: trace("a", "b")},
	)
	store := cache.NewMemory()

	first, err := Apply(context.Background(), log, sys, actKey, Options{Cache: store})
	if err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}
	second, err := Apply(context.Background(), log, sys, actKey, Options{Cache: store})
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("cached result must equal the computed one")
	}
}

func TestHashSystem_Distinguishes(t *testing.T) {
	a := seqSystem(t, "a", "b")
	b := seqSystem(t, "a", "c")
	if hashSystem(a) == hashSystem(b) {
		t.Error("different nets should hash differently")
	}
	if hashSystem(a) != hashSystem(a) {
		t.Error("hash must be stable")
	}
}

func TestResult_FiredTransitions(t *testing.T) {
	r := Result{Moves: []Move{
		{Type: MoveSync, Activity: "a", Transition: "t_a"},
		{Type: MoveLog, Activity: "z"},
		{Type: MoveModel, Transition: "t_b"},
	}}
	got := r.FiredTransitions()
	want := []string{"t_a", "t_b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FiredTransitions() = %v, want %v", got, want)
	}
}
