package replay

import (
	"context"
	"reflect"
	"testing"

	"github.com/conformly/conformly/internal/model"
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

func TestApplyActivities_Fitting(t *testing.T) {
	sys := seqSystem(t, "a", "b", "c")
	r := ApplyActivities([]string{"a", "b", "c"}, sys)

	if !r.IsFit {
		t.Errorf("fitting trace flagged: missing=%d remaining=%d", r.Missing, r.Remaining)
	}
	if r.Fitness != 1.0 {
		t.Errorf("Fitness = %v, want 1.0", r.Fitness)
	}
	if len(r.ActivatedTransitions) == 0 {
		t.Error("fired transitions missing")
	}
}

func TestApplyActivities_MissingActivity(t *testing.T) {
	sys := seqSystem(t, "a", "b", "c")
	r := ApplyActivities([]string{"a", "c"}, sys)

	if r.IsFit {
		t.Error("skipping b should not fit")
	}
	if r.Missing == 0 {
		t.Error("firing c without b should record missing tokens")
	}
	if r.Fitness >= 1.0 || r.Fitness <= 0.0 {
		t.Errorf("Fitness = %v, want strictly between 0 and 1", r.Fitness)
	}
}

func TestApplyActivities_UnknownActivity(t *testing.T) {
	sys := seqSystem(t, "a", "b")
	r := ApplyActivities([]string{"a", "z", "b"}, sys)

	if r.IsFit {
		t.Error("unknown activity should not fit")
	}
	if r.Missing < 1 {
		t.Errorf("Missing = %d, want at least 1", r.Missing)
	}
}

func TestApplyActivities_EmptyTrace(t *testing.T) {
	sys := seqSystem(t, "a")
	r := ApplyActivities(nil, sys)

	if r.IsFit {
		t.Error("empty trace against a mandatory activity should not fit")
	}
	if r.Missing == 0 && r.Remaining == 0 {
		t.Error("expected token bookkeeping for the unreached final marking")
	}
}

func TestApplyActivities_SilentRouting(t *testing.T) {
	// xor(a, tau) accepts the empty trace through the silent branch
	sys, err := ptree.Xor(ptree.Activity("a"), ptree.Silent()).AsPetriNet()
	if err != nil {
		t.Fatalf("AsPetriNet failed: %v", err)
	}

	if r := ApplyActivities(nil, sys); !r.IsFit {
		t.Errorf("empty trace should fit via the silent branch: %+v", r)
	}
	if r := ApplyActivities([]string{"a"}, sys); !r.IsFit {
		t.Errorf("a should fit via the visible branch: %+v", r)
	}
}

func TestApply_OrderAndMemoization(t *testing.T) {
	sys := seqSystem(t, "a", "b")
	log := model.NewEventLog(
		model.Case{ID: "1", Events: model.TraceFromActivities(actKey, []string{"a", "b"})},
		model.Case{ID: "2", Events: model.TraceFromActivities(actKey, []string{"b", "a"})},
		model.Case{ID: "3", Events: model.TraceFromActivities(actKey, []string{"a", "b"})},
	)

	results, err := Apply(context.Background(), log, sys, actKey)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].IsFit || results[1].IsFit || !results[2].IsFit {
		t.Errorf("fit pattern = %v %v %v, want true false true",
			results[0].IsFit, results[1].IsFit, results[2].IsFit)
	}
	if !reflect.DeepEqual(results[0], results[2]) {
		t.Error("identical variants must yield identical results")
	}
}

func TestApply_ContextCanceled(t *testing.T) {
	sys := seqSystem(t, "a")
	log := model.NewEventLog(
		model.Case{ID: "1", Events: model.TraceFromActivities(actKey, []string{"a"})},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Apply(ctx, log, sys, actKey); err == nil {
		t.Error("canceled context should abort the replay")
	}
}

func TestMarkings(t *testing.T) {
	sys := seqSystem(t, "a", "b")
	ms := Markings([]string{"a", "b"}, sys)

	if len(ms) != 3 {
		t.Fatalf("expected len(trace)+1 markings, got %d", len(ms))
	}
	if !ms[0].Equal(sys.InitialMarking) {
		t.Error("first marking must be the initial marking")
	}
}
