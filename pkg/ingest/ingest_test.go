package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/conformly/conformly/internal/model"
)

const sampleXES = `<?xml version="1.0" encoding="UTF-8"?>
<log xes.version="1.0">
	<trace>
		<string key="concept:name" value="case-1"/>
		<event>
			<string key="concept:name" value="register"/>
			<date key="time:timestamp" value="2024-03-01T08:00:00.000Z"/>
			<int key="amount" value="42"/>
		</event>
		<event>
			<string key="concept:name" value="approve"/>
			<date key="time:timestamp" value="2024-03-01T09:00:00.000Z"/>
			<boolean key="automated" value="true"/>
		</event>
	</trace>
	<trace>
		<string key="concept:name" value="case-2"/>
		<event>
			<string key="concept:name" value="register"/>
			<date key="time:timestamp" value="2024-03-01T08:30:00.000Z"/>
		</event>
	</trace>
</log>`

func TestParseXES(t *testing.T) {
	log, err := ParseXES(context.Background(), strings.NewReader(sampleXES))
	if err != nil {
		t.Fatalf("ParseXES failed: %v", err)
	}

	if len(log.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(log.Cases))
	}
	if log.Cases[0].ID != "case-1" || log.Cases[1].ID != "case-2" {
		t.Errorf("case IDs = %s, %s", log.Cases[0].ID, log.Cases[1].ID)
	}
	if len(log.Cases[0].Events) != 2 {
		t.Fatalf("case-1 should carry 2 events, got %d", len(log.Cases[0].Events))
	}

	first := log.Cases[0].Events[0]
	if act, _ := first.String("concept:name"); act != "register" {
		t.Errorf("activity = %q", act)
	}
	ts, ok := first.Time("time:timestamp")
	if !ok || !ts.Equal(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("timestamp = %v, %v", ts, ok)
	}
	if v, ok := first.Attributes["amount"].(int64); !ok || v != 42 {
		t.Errorf("amount = %v", first.Attributes["amount"])
	}

	second := log.Cases[0].Events[1]
	if v, ok := second.Attributes["automated"].(bool); !ok || !v {
		t.Errorf("automated = %v", second.Attributes["automated"])
	}
}

func TestParseXES_Empty(t *testing.T) {
	log, err := ParseXES(context.Background(), strings.NewReader(`<log xes.version="1.0"></log>`))
	if err != nil {
		t.Fatalf("ParseXES failed: %v", err)
	}
	if len(log.Cases) != 0 {
		t.Errorf("expected empty log, got %d cases", len(log.Cases))
	}
}

func TestReadCSV(t *testing.T) {
	csv := "case:concept:name,concept:name,time:timestamp\n" +
		"c1,register,2024-03-01T08:00:00Z\n" +
		"c1,approve,2024-03-01T09:00:00Z\n" +
		"c2,register,2024-03-01T08:30:00Z\n"

	tbl, err := ReadCSV(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	defer tbl.Release()

	if tbl.NumRows() != 3 {
		t.Errorf("NumRows() = %d, want 3", tbl.NumRows())
	}
	if !tbl.HasColumn("concept:name") {
		t.Error("concept:name column missing")
	}

	log, err := tbl.ToEventLog("concept:name", "time:timestamp", "case:concept:name")
	if err != nil {
		t.Fatalf("ToEventLog failed: %v", err)
	}
	if len(log.Cases) != 2 {
		t.Errorf("expected 2 cases, got %d", len(log.Cases))
	}
	if got := log.Cases[0].Events.Activities("concept:name"); len(got) != 2 || got[1] != "approve" {
		t.Errorf("c1 activities = %v", got)
	}
}

func TestReadCSV_RaggedRow(t *testing.T) {
	csv := "a,b\n1,2\n3\n"
	if _, err := ReadCSV(context.Background(), strings.NewReader(csv)); err == nil {
		t.Error("short row should fail")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"events.xes", FormatXES},
		{"dir/events.XES", FormatXES},
		{"events.csv", FormatCSV},
		{"events.xlsx", FormatXLSX},
		{"events.parquet", FormatUnknown},
		{"events", FormatUnknown},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

var _ model.Log = (*model.EventLog)(nil)
