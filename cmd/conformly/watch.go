package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/conformly/conformly/pkg/conformance"
	"github.com/conformly/conformly/pkg/modelfile"
	"github.com/conformly/conformly/pkg/tui"
	"github.com/conformly/conformly/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [log-file]",
	Short: "Re-run fitness whenever the log changes",
	Long: `Watch an event log file and re-run the fitness evaluation every time
the file is updated. Useful next to a log exporter that appends cases.

Example:
  conformly watch events.xes --model order.json`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&modelFile, "model", "m", "", "Model definition file (required)")
	watchCmd.Flags().StringVar(&methodFlag, "method", "alignments", "Method (alignments, replay)")
	watchCmd.Flags().BoolVar(&parallel, "parallel", true, "Align trace variants concurrently")
	watchCmd.Flags().IntVar(&workers, "workers", 0, "Worker count (0 = number of CPUs)")
	watchCmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the alignment cache")
	watchCmd.MarkFlagRequired("model")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logPath := args[0]

	tui.PrintHeader(version)

	m, err := modelfile.Load(modelFile)
	if err != nil {
		return err
	}

	watcher, err := watch.NewLogWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watcher.OnChange = func(ctx context.Context, path string) error {
		return watchedFitness(ctx, path, m)
	}
	watcher.OnError = func(path string, err error) {
		tui.PrintViolation(fmt.Sprintf("%s: %v", path, err))
	}

	if err := watcher.Watch(logPath); err != nil {
		return err
	}

	// Initial run before waiting for changes
	if err := watchedFitness(ctx, logPath, m); err != nil {
		tui.PrintViolation(err.Error())
	}
	tui.PrintInfo("watching " + logPath + " (ctrl-c to stop)")

	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func watchedFitness(ctx context.Context, logPath string, m any) error {
	runID := uuid.NewString()
	tui.PrintRun(runID, logPath, modelFile, "fitness/"+methodFlag)

	log, err := loadLog(ctx, logPath)
	if err != nil {
		return err
	}

	opts := verifyOptions(ctx)
	start := time.Now()

	var result conformance.FitnessResult
	switch methodFlag {
	case "replay":
		sys, serr := proceduralModel(m)
		if serr != nil {
			return serr
		}
		result, err = conformance.FitnessTokenBasedReplay(ctx, log, sys, opts...)
	default:
		result, err = conformance.FitnessAlignments(ctx, log, m, opts...)
	}
	if err != nil {
		return err
	}

	eventLog, err := asCases(log, opts)
	if err != nil {
		return err
	}
	tui.PrintFitnessReport(&tui.FitnessReport{
		AverageTraceFitness:       result.AverageTraceFitness,
		PercentageOfFittingTraces: result.PercentageOfFittingTraces,
		Traces:                    len(eventLog.Cases),
		Duration:                  time.Since(start),
	})
	return nil
}
