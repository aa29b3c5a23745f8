package conformance

import (
	"context"
	"testing"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/errors"
)

func eventTable(t *testing.T) *model.Table {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "case:concept:name", Type: arrow.BinaryTypes.String},
		{Name: "concept:name", Type: arrow.BinaryTypes.String},
		{Name: "time:timestamp", Type: arrow.BinaryTypes.String},
	}, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()

	rows := [][3]string{
		{"c1", "a", "2024-03-01T08:00:00Z"},
		{"c1", "b", "2024-03-01T09:00:00Z"},
		{"c2", "a", "2024-03-01T08:30:00Z"},
	}
	for _, row := range rows {
		b.Field(0).(*array.StringBuilder).Append(row[0])
		b.Field(1).(*array.StringBuilder).Append(row[1])
		b.Field(2).(*array.StringBuilder).Append(row[2])
	}

	tbl, err := model.NewTable(b.NewRecord())
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return tbl
}

func TestTableLog_EndToEnd(t *testing.T) {
	tbl := eventTable(t)
	defer tbl.Release()

	sys, err := seqTree("a", "b").AsPetriNet()
	if err != nil {
		t.Fatalf("AsPetriNet failed: %v", err)
	}

	result, err := FitnessTokenBasedReplay(context.Background(), tbl, sys)
	if err != nil {
		t.Fatalf("FitnessTokenBasedReplay failed: %v", err)
	}
	// c1 fits, c2 stops after a
	if result.PercentageOfFittingTraces != 50.0 {
		t.Errorf("PercentageOfFittingTraces = %v, want 50.0", result.PercentageOfFittingTraces)
	}
}

func TestTableLog_MissingColumn(t *testing.T) {
	tbl := eventTable(t)
	defer tbl.Release()

	sys, _ := seqTree("a").AsPetriNet()
	_, err := FitnessTokenBasedReplay(context.Background(), tbl, sys,
		WithCaseIDKey("case_id"))
	if err == nil {
		t.Fatal("missing column must fail")
	}
	if !errors.IsSchema(err) {
		t.Errorf("expected schema error, got %v", err)
	}
}

func TestNormalizeLog(t *testing.T) {
	tbl := eventTable(t)
	defer tbl.Release()

	el, err := NormalizeLog(tbl)
	if err != nil {
		t.Fatalf("NormalizeLog failed: %v", err)
	}
	if len(el.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(el.Cases))
	}
	if el.Cases[0].ID != "c1" || el.Cases[1].ID != "c2" {
		t.Errorf("case order = %s, %s", el.Cases[0].ID, el.Cases[1].ID)
	}

	// Structured logs pass through unchanged
	same, err := NormalizeLog(el)
	if err != nil {
		t.Fatal(err)
	}
	if same != el {
		t.Error("structured log should pass through by identity")
	}
}

func TestAsProcedural(t *testing.T) {
	sys, err := AsProcedural(seqTree("a", "b"))
	if err != nil {
		t.Fatalf("AsProcedural failed: %v", err)
	}
	if len(sys.Net.VisibleLabels()) != 2 {
		t.Errorf("expected 2 labels, got %d", len(sys.Net.VisibleLabels()))
	}

	if _, err := AsProcedural(3.14); err == nil {
		t.Error("unsupported model must fail")
	}
}
