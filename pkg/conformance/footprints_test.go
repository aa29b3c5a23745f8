package conformance

import (
	"context"
	"testing"

	"github.com/conformly/conformly/pkg/footprint"
)

func TestDiagnosticsFootprints(t *testing.T) {
	tree := seqTree("a", "b", "c")
	log := logOf(
		[]string{"a", "b", "c"},
		[]string{"c", "b", "a"},
	)

	comparisons, err := DiagnosticsFootprints(context.Background(), log, tree)
	if err != nil {
		t.Fatalf("DiagnosticsFootprints failed: %v", err)
	}
	if len(comparisons) != 2 {
		t.Fatalf("expected 2 comparisons, got %d", len(comparisons))
	}
	if !comparisons[0].IsFit {
		t.Errorf("fitting trace flagged: %v", comparisons[0].Violations)
	}
	if comparisons[1].IsFit {
		t.Error("reversed trace should violate the footprint")
	}
}

func TestFitnessFootprints(t *testing.T) {
	tree := seqTree("a", "b")
	log := logOf([]string{"a", "b"})

	result, err := FitnessFootprints(context.Background(), log, tree)
	if err != nil {
		t.Fatalf("FitnessFootprints failed: %v", err)
	}
	if result.AverageTraceFitness != 1.0 || result.PercentageOfFittingTraces != 100.0 {
		t.Errorf("fitting log = %+v", result)
	}
}

func TestPrecisionFootprints(t *testing.T) {
	loose := seqTree("a", "b")
	log := logOf([]string{"a", "b"})

	precision, err := PrecisionFootprints(context.Background(), log, loose)
	if err != nil {
		t.Fatalf("PrecisionFootprints failed: %v", err)
	}
	if precision < 0 || precision > 1 {
		t.Errorf("precision out of range: %v", precision)
	}
}

func TestFootprints_DiscoveredModel(t *testing.T) {
	// A pre-discovered footprint passes through the router untouched
	fp := footprint.FromActivities([]string{"a", "b"})
	log := logOf([]string{"a", "b"})

	result, err := FitnessFootprints(context.Background(), log, fp)
	if err != nil {
		t.Fatalf("FitnessFootprints failed: %v", err)
	}
	if result.PercentageOfFittingTraces != 100.0 {
		t.Errorf("identical footprints must fit: %+v", result)
	}
}
