// Package stats computes descriptive statistics over event logs.
//
// CSV logs are profiled in-place with DuckDB so large files never have
// to be materialized in memory. Logs already parsed into a model.EventLog
// (XES, XLSX) are profiled with the in-memory path in log.go.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/conformly/conformly/pkg/errors"
)

// Keys names the columns used to interpret a log.
type Keys struct {
	CaseID    string
	Activity  string
	Timestamp string
}

// Summary holds descriptive statistics for an event log.
type Summary struct {
	TotalEvents      int64           `json:"total_events"`
	TotalCases       int64           `json:"total_cases"`
	UniqueActivities int64           `json:"unique_activities"`
	TimeRange        TimeRange       `json:"time_range"`
	CaseStats        CaseStats       `json:"case_stats"`
	TopActivities    []ActivityCount `json:"top_activities"`
	TopVariants      []VariantCount  `json:"top_variants,omitempty"`
}

// TimeRange describes the time span of the log.
type TimeRange struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
}

// CaseStats describes case-level statistics.
type CaseStats struct {
	MinEventsPerCase int64   `json:"min_events_per_case"`
	MaxEventsPerCase int64   `json:"max_events_per_case"`
	AvgEventsPerCase float64 `json:"avg_events_per_case"`
}

// ActivityCount holds activity frequency.
type ActivityCount struct {
	Activity string  `json:"activity"`
	Count    int64   `json:"count"`
	Percent  float64 `json:"percent"`
}

// VariantCount holds process variant frequency.
type VariantCount struct {
	Variant string  `json:"variant"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

// Analyzer profiles CSV event logs with an embedded DuckDB instance.
type Analyzer struct {
	keys Keys
	db   *sql.DB
}

// NewAnalyzer opens an in-memory DuckDB instance.
func NewAnalyzer(keys Keys) (*Analyzer, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidFormat, "opening duckdb")
	}
	return &Analyzer{keys: keys, db: db}, nil
}

// Close releases the database handle.
func (a *Analyzer) Close() error {
	return a.db.Close()
}

// AnalyzeFile profiles the CSV file at path.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Summary, error) {
	src := fmt.Sprintf("read_csv_auto('%s')", escapePath(path))
	summary := &Summary{}

	// Total events
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, src)
	if err := a.db.QueryRowContext(ctx, query).Scan(&summary.TotalEvents); err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidFormat, "profiling %s", path)
	}

	// Unique cases
	query = fmt.Sprintf(`
		SELECT COUNT(DISTINCT "%s") FROM %s
	`, a.keys.CaseID, src)
	if err := a.db.QueryRowContext(ctx, query).Scan(&summary.TotalCases); err != nil {
		return nil, errors.MissingColumn(a.keys.CaseID, nil)
	}

	// Unique activities
	query = fmt.Sprintf(`
		SELECT COUNT(DISTINCT "%s") FROM %s
	`, a.keys.Activity, src)
	if err := a.db.QueryRowContext(ctx, query).Scan(&summary.UniqueActivities); err != nil {
		return nil, errors.MissingColumn(a.keys.Activity, nil)
	}

	// Time range
	query = fmt.Sprintf(`
		SELECT
			MIN(TRY_CAST("%s" AS TIMESTAMP)) as min_ts,
			MAX(TRY_CAST("%s" AS TIMESTAMP)) as max_ts
		FROM %s
		WHERE "%s" IS NOT NULL
	`, a.keys.Timestamp, a.keys.Timestamp, src, a.keys.Timestamp)

	var minTS, maxTS interface{}
	if err := a.db.QueryRowContext(ctx, query).Scan(&minTS, &maxTS); err == nil {
		if start, ok := asTime(minTS); ok {
			summary.TimeRange.Start = start
		}
		if end, ok := asTime(maxTS); ok {
			summary.TimeRange.End = end
		}
		summary.TimeRange.Duration = summary.TimeRange.End.Sub(summary.TimeRange.Start)
	}

	// Case statistics
	query = fmt.Sprintf(`
		SELECT
			MIN(cnt) as min_events,
			MAX(cnt) as max_events,
			AVG(cnt) as avg_events
		FROM (
			SELECT "%s", COUNT(*) as cnt
			FROM %s
			GROUP BY "%s"
		)
	`, a.keys.CaseID, src, a.keys.CaseID)
	a.db.QueryRowContext(ctx, query).Scan(
		&summary.CaseStats.MinEventsPerCase,
		&summary.CaseStats.MaxEventsPerCase,
		&summary.CaseStats.AvgEventsPerCase,
	)

	// Top activities
	query = fmt.Sprintf(`
		SELECT
			"%s" as activity,
			COUNT(*) as cnt,
			COUNT(*) * 100.0 / SUM(COUNT(*)) OVER () as pct
		FROM %s
		GROUP BY "%s"
		ORDER BY cnt DESC, activity
		LIMIT 10
	`, a.keys.Activity, src, a.keys.Activity)

	rows, err := a.db.QueryContext(ctx, query)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var ac ActivityCount
			rows.Scan(&ac.Activity, &ac.Count, &ac.Percent)
			summary.TopActivities = append(summary.TopActivities, ac)
		}
	}

	// Top variants (process paths)
	query = fmt.Sprintf(`
		SELECT
			variant,
			COUNT(*) as cnt,
			COUNT(*) * 100.0 / SUM(COUNT(*)) OVER () as pct
		FROM (
			SELECT
				"%s",
				STRING_AGG("%s", ' -> ' ORDER BY "%s") as variant
			FROM %s
			GROUP BY "%s"
		)
		GROUP BY variant
		ORDER BY cnt DESC, variant
		LIMIT 10
	`, a.keys.CaseID, a.keys.Activity, a.keys.Timestamp, src, a.keys.CaseID)

	rows, err = a.db.QueryContext(ctx, query)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var vc VariantCount
			rows.Scan(&vc.Variant, &vc.Count, &vc.Percent)
			summary.TopVariants = append(summary.TopVariants, vc)
		}
	}

	return summary, nil
}

func escapePath(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case int64:
		return time.Unix(0, t), true
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
