package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
)

// Table is a flat event table: one row per event, keyed by case id, activity
// and timestamp columns. Rows are held as Arrow record batches that all share
// one schema. The table retains the records for its lifetime; callers that
// need them afterwards must Retain before handing them over.
type Table struct {
	schema  *arrow.Schema
	records []arrow.Record
}

// NewTable creates a table over the given record batches. All batches must
// share the schema of the first one.
func NewTable(records ...arrow.Record) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("table requires at least one record batch")
	}
	schema := records[0].Schema()
	for _, r := range records[1:] {
		if !schema.Equal(r.Schema()) {
			return nil, fmt.Errorf("record batch schema mismatch")
		}
	}
	return &Table{schema: schema, records: records}, nil
}

func (t *Table) isLog() {}

// Schema returns the shared schema of the table's record batches.
func (t *Table) Schema() *arrow.Schema { return t.schema }

// NumRows returns the total number of event rows.
func (t *Table) NumRows() int64 {
	var n int64
	for _, r := range t.records {
		n += r.NumRows()
	}
	return n
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	return t.schema.HasField(name)
}

// ColumnNames lists the column names in schema order.
func (t *Table) ColumnNames() []string {
	names := make([]string, t.schema.NumFields())
	for i, f := range t.schema.Fields() {
		names[i] = f.Name
	}
	return names
}

// Release releases the retained record batches.
func (t *Table) Release() {
	for _, r := range t.records {
		r.Release()
	}
	t.records = nil
}

// ToEventLog groups the table rows into cases. Case order follows first
// appearance in the table; within a case, rows are ordered by timestamp with
// the original row order breaking ties. Every row becomes one event carrying
// all columns as attributes.
func (t *Table) ToEventLog(activityKey, timestampKey, caseKey string) (*EventLog, error) {
	caseIdx := t.schema.FieldIndices(caseKey)
	if len(caseIdx) == 0 {
		return nil, fmt.Errorf("column %q not in table", caseKey)
	}

	type pendingCase struct {
		id     string
		events Trace
		times  []time.Time
	}
	var order []string
	pending := make(map[string]*pendingCase)

	for _, rec := range t.records {
		nRows := int(rec.NumRows())
		for row := 0; row < nRows; row++ {
			ev := Event{Attributes: make(map[string]any, t.schema.NumFields())}
			for col := 0; col < int(rec.NumCols()); col++ {
				name := t.schema.Field(col).Name
				v, err := cellValue(rec.Column(col), row)
				if err != nil {
					return nil, fmt.Errorf("row %d column %q: %w", row, name, err)
				}
				if v != nil {
					ev.Attributes[name] = v
				}
			}
			caseID := fmt.Sprintf("%v", ev.Attributes[caseKey])
			pc, ok := pending[caseID]
			if !ok {
				pc = &pendingCase{id: caseID}
				pending[caseID] = pc
				order = append(order, caseID)
			}
			ts, _ := ev.Time(timestampKey)
			pc.events = append(pc.events, ev)
			pc.times = append(pc.times, ts)
		}
	}

	log := &EventLog{Cases: make([]Case, 0, len(order))}
	for _, id := range order {
		pc := pending[id]
		idx := make([]int, len(pc.events))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return pc.times[idx[a]].Before(pc.times[idx[b]])
		})
		events := make(Trace, len(pc.events))
		for i, j := range idx {
			events[i] = pc.events[j]
		}
		log.Append(Case{ID: id, Events: events})
	}
	return log, nil
}

// cellValue extracts a Go value from an Arrow column cell. Strings that look
// like timestamps stay strings; Event.Time falls back to parsing on demand.
func cellValue(col arrow.Array, row int) (any, error) {
	if col.IsNull(row) {
		return nil, nil
	}
	switch c := col.(type) {
	case *array.String:
		return c.Value(row), nil
	case *array.Int64:
		return c.Value(row), nil
	case *array.Float64:
		return c.Value(row), nil
	case *array.Boolean:
		return c.Value(row), nil
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(row).ToTime(unit), nil
	default:
		return nil, fmt.Errorf("unsupported column type %s", col.DataType())
	}
}
