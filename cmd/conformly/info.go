package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conformly/conformly/pkg/conformance"
	"github.com/conformly/conformly/pkg/ingest"
	"github.com/conformly/conformly/pkg/stats"
	"github.com/conformly/conformly/pkg/tui"
)

var infoCmd = &cobra.Command{
	Use:   "info [log-file]",
	Short: "Display statistics about an event log",
	Long: `Profile an event log: case and activity counts, time range, and the
most frequent activities and variants.

CSV files are profiled in-place with DuckDB; other formats are parsed first.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logPath := args[0]

	tui.PrintHeader(version)

	keys := stats.Keys{
		CaseID:    caseIDKey,
		Activity:  activityKey,
		Timestamp: timestampKey,
	}

	var summary *stats.Summary
	if ingest.DetectFormat(logPath) == ingest.FormatCSV && !isRemote(logPath) {
		analyzer, err := stats.NewAnalyzer(keys)
		if err != nil {
			return err
		}
		defer analyzer.Close()

		summary, err = analyzer.AnalyzeFile(ctx, logPath)
		if err != nil {
			return err
		}
	} else {
		log, err := loadLog(ctx, logPath)
		if err != nil {
			return err
		}
		eventLog, err := conformance.NormalizeLog(log,
			conformance.WithActivityKey(activityKey),
			conformance.WithTimestampKey(timestampKey),
			conformance.WithCaseIDKey(caseIDKey),
		)
		if err != nil {
			return err
		}
		summary = stats.AnalyzeLog(eventLog, keys)
	}

	printSummary(logPath, summary)
	return nil
}

func printSummary(path string, s *stats.Summary) {
	tui.PrintInfo("Log: " + path)
	fmt.Println()
	tui.PrintInfo(fmt.Sprintf("Events:     %s", tui.FormatNumber(s.TotalEvents)))
	tui.PrintInfo(fmt.Sprintf("Cases:      %s", tui.FormatNumber(s.TotalCases)))
	tui.PrintInfo(fmt.Sprintf("Activities: %d", s.UniqueActivities))
	if !s.TimeRange.Start.IsZero() {
		tui.PrintInfo(fmt.Sprintf("Span:       %s .. %s (%s)",
			s.TimeRange.Start.Format("2006-01-02 15:04:05"),
			s.TimeRange.End.Format("2006-01-02 15:04:05"),
			s.TimeRange.Duration))
	}
	tui.PrintInfo(fmt.Sprintf("Events per case: min %d, max %d, avg %.1f",
		s.CaseStats.MinEventsPerCase, s.CaseStats.MaxEventsPerCase, s.CaseStats.AvgEventsPerCase))

	if len(s.TopActivities) > 0 {
		fmt.Println()
		tui.PrintInfo("Top activities:")
		for _, ac := range s.TopActivities {
			tui.PrintInfo(fmt.Sprintf("  %-30s %8s  %5.1f%%", ac.Activity, tui.FormatNumber(ac.Count), ac.Percent))
		}
	}
	if len(s.TopVariants) > 0 {
		fmt.Println()
		tui.PrintInfo("Top variants:")
		for _, vc := range s.TopVariants {
			tui.PrintInfo(fmt.Sprintf("  %-50s %6s  %5.1f%%", truncate(vc.Variant, 50), tui.FormatNumber(vc.Count), vc.Percent))
		}
	}
	fmt.Println()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func isRemote(path string) bool {
	return len(path) > 5 && path[:5] == "s3://"
}
