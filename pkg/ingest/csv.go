package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/conformly/conformly/internal/model"
)

// csvBatchSize is the number of rows per Arrow record batch.
const csvBatchSize = 8192

// ReadCSV reads a delimited event table into an Arrow-backed flat table.
// The first row is the header; all columns load as strings and timestamps
// parse lazily when events are materialized.
func ReadCSV(ctx context.Context, r io.Reader) (*model.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	columns := append([]string(nil), header...)

	fields := make([]arrow.Field, len(columns))
	for i, name := range columns {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	alloc := memory.DefaultAllocator
	builders := make([]*array.StringBuilder, len(columns))
	newBuilders := func() {
		for i := range builders {
			builders[i] = array.NewStringBuilder(alloc)
		}
	}
	newBuilders()

	var records []arrow.Record
	flush := func(rows int) {
		if rows == 0 {
			return
		}
		arrays := make([]arrow.Array, len(builders))
		for i, b := range builders {
			arrays[i] = b.NewArray()
			b.Release()
		}
		records = append(records, array.NewRecord(schema, arrays, int64(rows)))
		newBuilders()
	}

	rows := 0
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(rec), len(columns))
		}
		for i, v := range rec {
			if v == "" {
				builders[i].AppendNull()
			} else {
				builders[i].Append(v)
			}
		}
		rows++
		if rows >= csvBatchSize {
			flush(rows)
			rows = 0
		}
	}
	flush(rows)

	if len(records) == 0 {
		// An empty table still carries its schema for column validation.
		arrays := make([]arrow.Array, len(builders))
		for i, b := range builders {
			arrays[i] = b.NewArray()
			b.Release()
		}
		records = append(records, array.NewRecord(schema, arrays, 0))
	}
	return model.NewTable(records...)
}
