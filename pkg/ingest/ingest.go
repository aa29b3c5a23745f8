// Package ingest loads event logs for conformance checking: XES files parse
// into structured logs, CSV and XLSX event tables load as Arrow-backed flat
// tables. Sources may be local files or S3 objects.
package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/conformly/conformly/internal/model"
)

// Format is a supported input format.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatXES
	FormatCSV
	FormatXLSX
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatXES:
		return "xes"
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// DetectFormat guesses the format from the path extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xes":
		return FormatXES
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatUnknown
	}
}

// Load opens the source path (local file or s3://bucket/key URI) and loads it
// as an event log or table depending on the detected format.
func Load(ctx context.Context, path string) (model.Log, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("cannot detect log format of %q", path)
	}

	r, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	switch format {
	case FormatXES:
		return ParseXES(ctx, r)
	case FormatCSV:
		return ReadCSV(ctx, r)
	case FormatXLSX:
		return ReadXLSX(ctx, r)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// Open resolves a path to a reader: s3:// URIs go through the S3 source,
// everything else is a local file.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if strings.HasPrefix(path, "s3://") {
		return openS3(ctx, path)
	}
	return openFile(path)
}
