package conformance

import (
	"context"
	"testing"

	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/dfg"
	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/ptree"
)

func TestCheckIsFitting_Tree(t *testing.T) {
	tree := ptree.Sequence(
		ptree.Activity("register"),
		ptree.Parallel(ptree.Activity("check"), ptree.Activity("review")),
		ptree.Xor(ptree.Activity("approve"), ptree.Activity("reject")),
	)

	tests := []struct {
		name  string
		trace []string
		want  bool
	}{
		{"happy path", []string{"register", "check", "review", "approve"}, true},
		{"parallel swap", []string{"register", "review", "check", "reject"}, true},
		{"missing register", []string{"check", "review", "approve"}, false},
		{"both choices", []string{"register", "check", "review", "approve", "reject"}, false},
		{"foreign activity", []string{"register", "audit", "check", "review", "approve"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckIsFitting(context.Background(), tt.trace, tree)
			if err != nil {
				t.Fatalf("CheckIsFitting failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckIsFitting(%v) = %v, want %v", tt.trace, got, tt.want)
			}
		})
	}
}

func TestCheckIsFitting_PetriNet(t *testing.T) {
	sys, err := seqTree("a", "b").AsPetriNet()
	if err != nil {
		t.Fatalf("AsPetriNet failed: %v", err)
	}

	if fits, err := CheckIsFitting(context.Background(), []string{"a", "b"}, sys); err != nil || !fits {
		t.Errorf("fitting trace = %v, %v", fits, err)
	}
	// Foreign activity is decided by the alphabet pre-check
	if fits, err := CheckIsFitting(context.Background(), []string{"a", "z", "b"}, sys); err != nil || fits {
		t.Errorf("foreign activity = %v, %v", fits, err)
	}
	if fits, err := CheckIsFitting(context.Background(), []string{"b", "a"}, sys); err != nil || fits {
		t.Errorf("reversed trace = %v, %v", fits, err)
	}
}

func TestCheckIsFitting_PetriNetWithFootprints(t *testing.T) {
	sys, err := seqTree("a", "b").AsPetriNet()
	if err != nil {
		t.Fatalf("AsPetriNet failed: %v", err)
	}

	fits, err := CheckIsFitting(context.Background(), []string{"b", "a"}, sys,
		WithFootprintsOnPetriNets(true))
	if err != nil {
		t.Fatalf("CheckIsFitting failed: %v", err)
	}
	if fits {
		t.Error("reversed trace must not fit with the footprint tier enabled")
	}

	fits, err = CheckIsFitting(context.Background(), []string{"a", "b"}, sys,
		WithFootprintsOnPetriNets(true))
	if err != nil || !fits {
		t.Errorf("fitting trace = %v, %v", fits, err)
	}
}

func TestCheckIsFitting_FrequencyGraph(t *testing.T) {
	g := dfg.New().
		AddEdge("a", "b", 1).
		AddStart("a", 1).
		AddEnd("b", 1)

	if fits, err := CheckIsFitting(context.Background(), []string{"a", "b"}, g); err != nil || !fits {
		t.Errorf("fitting trace = %v, %v", fits, err)
	}
	if fits, err := CheckIsFitting(context.Background(), []string{"b"}, g); err != nil || fits {
		t.Errorf("start violation = %v, %v", fits, err)
	}
}

func TestCheckIsFitting_TraceShapes(t *testing.T) {
	tree := seqTree("a", "b")

	tr := model.TraceFromActivities(DefaultActivityKey, []string{"a", "b"})
	if fits, err := CheckIsFitting(context.Background(), tr, tree); err != nil || !fits {
		t.Errorf("model.Trace = %v, %v", fits, err)
	}
	if fits, err := CheckIsFitting(context.Background(), []model.Event(tr), tree); err != nil || !fits {
		t.Errorf("[]model.Event = %v, %v", fits, err)
	}

	if _, err := CheckIsFitting(context.Background(), 42, tree); err == nil {
		t.Error("non-trace argument must fail")
	} else if !errors.IsInputShape(err) {
		t.Errorf("expected input shape error, got %v", err)
	}
}

func TestCheckIsFitting_CustomActivityKey(t *testing.T) {
	tree := seqTree("a", "b")
	tr := model.TraceFromActivities("action", []string{"a", "b"})

	fits, err := CheckIsFitting(context.Background(), tr, tree, WithActivityKey("action"))
	if err != nil || !fits {
		t.Errorf("custom key = %v, %v", fits, err)
	}

	// Default key finds no activities: the empty projection cannot satisfy
	// the mandatory sequence
	fits, err = CheckIsFitting(context.Background(), tr, tree)
	if err != nil {
		t.Fatal(err)
	}
	if fits {
		t.Error("wrong activity key should not fit a mandatory sequence")
	}
}

func TestCheckIsFitting_UnsupportedModel(t *testing.T) {
	if _, err := CheckIsFitting(context.Background(), []string{"a"}, "not a model"); err == nil {
		t.Error("unsupported model must fail")
	} else if !errors.IsUnsupportedModel(err) {
		t.Errorf("expected unsupported model error, got %v", err)
	}
}
