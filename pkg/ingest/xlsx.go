package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/xuri/excelize/v2"

	"github.com/conformly/conformly/internal/model"
)

// ReadXLSX reads the first sheet of an Excel workbook as a flat event table.
// Row one is the header; cells load as strings like the CSV path.
func ReadXLSX(ctx context.Context, r io.Reader) (*model.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("sheet %q has an empty header row", sheets[0])
	}

	fields := make([]arrow.Field, len(columns))
	for i, name := range columns {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builders := make([]*array.StringBuilder, len(columns))
	for i := range builders {
		builders[i] = array.NewStringBuilder(memory.DefaultAllocator)
	}

	nRows := 0
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		for i := range columns {
			if i < len(cells) && cells[i] != "" {
				builders[i].Append(cells[i])
			} else {
				builders[i].AppendNull()
			}
		}
		nRows++
	}

	arrays := make([]arrow.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.NewArray()
		b.Release()
	}
	return model.NewTable(array.NewRecord(schema, arrays, int64(nRows)))
}
