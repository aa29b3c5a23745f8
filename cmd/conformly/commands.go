package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/conformance"
	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/modelfile"
	"github.com/conformly/conformly/pkg/petri"
	"github.com/conformly/conformly/pkg/tui"
)

var checkCmd = &cobra.Command{
	Use:   "check [log-file]",
	Short: "Check every trace against a model",
	Long: `Check each trace of the log against the reference model and report
which cases deviate.

Examples:
  conformly check events.xes --model order.json
  conformly check s3://logs/events.csv --model order.json --parallel=false`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

var fitnessCmd = &cobra.Command{
	Use:   "fitness [log-file]",
	Short: "Compute log-level fitness against a model",
	Long: `Compute the average trace fitness and the share of perfectly fitting
traces, using token-based replay or alignments.

Examples:
  conformly fitness events.xes --model order.json
  conformly fitness events.xes --model order.json --method replay`,
	Args: cobra.ExactArgs(1),
	RunE: runFitness,
}

var precisionCmd = &cobra.Command{
	Use:   "precision [log-file]",
	Short: "Compute log-level precision against a model",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrecision,
}

var temporalCmd = &cobra.Command{
	Use:   "temporal [log-file]",
	Short: "Check timing gaps against a temporal profile",
	Long: `Compare activity-pair timing gaps against a temporal profile and report
deviations beyond zeta standard deviations from the profiled mean.

Example:
  conformly temporal events.xes --profile timing.json --zeta 2`,
	Args: cobra.ExactArgs(1),
	RunE: runTemporal,
}

var skeletonCmd = &cobra.Command{
	Use:   "skeleton [log-file]",
	Short: "Check ordering constraints from a log skeleton",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkeleton,
}

func init() {
	checkCmd.Flags().StringVarP(&modelFile, "model", "m", "", "Model definition file (required)")
	checkCmd.Flags().BoolVar(&parallel, "parallel", true, "Align trace variants concurrently")
	checkCmd.Flags().IntVar(&workers, "workers", 0, "Worker count (0 = number of CPUs)")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the alignment cache")
	checkCmd.MarkFlagRequired("model")

	fitnessCmd.Flags().StringVarP(&modelFile, "model", "m", "", "Model definition file (required)")
	fitnessCmd.Flags().StringVar(&methodFlag, "method", "alignments", "Method (alignments, replay)")
	fitnessCmd.Flags().BoolVar(&parallel, "parallel", true, "Align trace variants concurrently")
	fitnessCmd.Flags().IntVar(&workers, "workers", 0, "Worker count (0 = number of CPUs)")
	fitnessCmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the alignment cache")
	fitnessCmd.MarkFlagRequired("model")

	precisionCmd.Flags().StringVarP(&modelFile, "model", "m", "", "Model definition file (required)")
	precisionCmd.Flags().StringVar(&methodFlag, "method", "alignments", "Method (alignments, replay)")
	precisionCmd.Flags().BoolVar(&parallel, "parallel", true, "Align trace variants concurrently")
	precisionCmd.Flags().IntVar(&workers, "workers", 0, "Worker count (0 = number of CPUs)")
	precisionCmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the alignment cache")
	precisionCmd.MarkFlagRequired("model")

	temporalCmd.Flags().StringVarP(&profileFile, "profile", "p", "", "Temporal profile file (required)")
	temporalCmd.Flags().Float64Var(&zetaFlag, "zeta", 6.0, "Allowed deviations in standard deviations")
	temporalCmd.MarkFlagRequired("profile")

	skeletonCmd.Flags().StringVarP(&skelFile, "skeleton", "s", "", "Log skeleton file (required)")
	skeletonCmd.MarkFlagRequired("skeleton")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logPath := args[0]

	runID := uuid.NewString()
	tui.PrintHeader(version)
	tui.PrintRun(runID, logPath, modelFile, "cascade")

	m, err := modelfile.Load(modelFile)
	if err != nil {
		return err
	}

	log, err := loadLog(ctx, logPath)
	if err != nil {
		return err
	}

	opts := verifyOptions(ctx)
	eventLog, err := asCases(log, opts)
	if err != nil {
		return err
	}

	bar := tui.ShowProgress(int64(len(eventLog.Cases)), "  checking")
	var deviating []string
	for _, c := range eventLog.Cases {
		fits, err := conformance.CheckIsFitting(ctx, model.Trace(c.Events), m, opts...)
		if err != nil {
			return err
		}
		if !fits {
			deviating = append(deviating, c.ID)
		}
		bar.Add(1)
	}
	bar.Finish()

	fmt.Println()
	if len(deviating) == 0 {
		tui.PrintOK(fmt.Sprintf("all %d cases fit the model", len(eventLog.Cases)))
	} else {
		for _, id := range deviating {
			tui.PrintViolation("case " + id + " deviates")
		}
		tui.PrintInfo(fmt.Sprintf("%d of %d cases deviate", len(deviating), len(eventLog.Cases)))
	}
	fmt.Println()
	return nil
}

func runFitness(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logPath := args[0]

	runID := uuid.NewString()
	tui.PrintHeader(version)
	tui.PrintRun(runID, logPath, modelFile, "fitness/"+methodFlag)

	m, err := modelfile.Load(modelFile)
	if err != nil {
		return err
	}

	log, err := loadLog(ctx, logPath)
	if err != nil {
		return err
	}

	opts := verifyOptions(ctx)
	start := time.Now()

	var result conformance.FitnessResult
	switch methodFlag {
	case "alignments":
		result, err = conformance.FitnessAlignments(ctx, log, m, opts...)
	case "replay":
		sys, serr := proceduralModel(m)
		if serr != nil {
			return serr
		}
		result, err = conformance.FitnessTokenBasedReplay(ctx, log, sys, opts...)
	default:
		return fmt.Errorf("unknown method %q (want alignments or replay)", methodFlag)
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

func runPrecision(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logPath := args[0]

	runID := uuid.NewString()
	tui.PrintHeader(version)
	tui.PrintRun(runID, logPath, modelFile, "precision/"+methodFlag)

	m, err := modelfile.Load(modelFile)
	if err != nil {
		return err
	}

	log, err := loadLog(ctx, logPath)
	if err != nil {
		return err
	}

	opts := verifyOptions(ctx)

	var precision float64
	switch methodFlag {
	case "alignments":
		precision, err = conformance.PrecisionAlignments(ctx, log, m, opts...)
	case "replay":
		sys, serr := proceduralModel(m)
		if serr != nil {
			return serr
		}
		precision, err = conformance.PrecisionTokenBasedReplay(ctx, log, sys, opts...)
	default:
		return fmt.Errorf("unknown method %q (want alignments or replay)", methodFlag)
	}
	if err != nil {
		return err
	}

	tui.PrintValue("Precision", precision)
	return nil
}

func runTemporal(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logPath := args[0]

	runID := uuid.NewString()
	tui.PrintHeader(version)
	tui.PrintRun(runID, logPath, profileFile, fmt.Sprintf("temporal (zeta=%.1f)", zetaFlag))

	profile, err := modelfile.LoadTemporalProfile(profileFile)
	if err != nil {
		return err
	}

	log, err := loadLog(ctx, logPath)
	if err != nil {
		return err
	}

	opts := verifyOptions(ctx)
	deviations, err := conformance.ConformanceTemporalProfile(ctx, log, profile, opts...)
	if err != nil {
		return err
	}

	eventLog, err := asCases(log, opts)
	if err != nil {
		return err
	}

	fmt.Println()
	total := 0
	for i, caseDevs := range deviations {
		for _, d := range caseDevs {
			total++
			tui.PrintViolation(fmt.Sprintf("case %s: %s -> %s took %.0fs (profile %.0fs ± %.0fs)",
				eventLog.Cases[i].ID, d.Source, d.Target, d.ObservedGap, d.ExpectedMean, d.ExpectedStdDev))
		}
	}
	if total == 0 {
		tui.PrintOK("no temporal deviations")
	} else {
		tui.PrintInfo(fmt.Sprintf("%d temporal deviations", total))
	}
	fmt.Println()
	return nil
}

func runSkeleton(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logPath := args[0]

	runID := uuid.NewString()
	tui.PrintHeader(version)
	tui.PrintRun(runID, logPath, skelFile, "skeleton")

	skel, err := modelfile.LoadSkeleton(skelFile)
	if err != nil {
		return err
	}

	log, err := loadLog(ctx, logPath)
	if err != nil {
		return err
	}

	opts := verifyOptions(ctx)
	violations, err := conformance.ConformanceLogSkeleton(ctx, log, skel, opts...)
	if err != nil {
		return err
	}

	eventLog, err := asCases(log, opts)
	if err != nil {
		return err
	}

	fmt.Println()
	total := 0
	for i, set := range violations {
		for v := range set {
			total++
			tui.PrintViolation(fmt.Sprintf("case %s: %s", eventLog.Cases[i].ID, v.String()))
		}
	}
	if total == 0 {
		tui.PrintOK("no constraint violations")
	} else {
		tui.PrintInfo(fmt.Sprintf("%d constraint violations", total))
	}
	fmt.Println()
	return nil
}

// asCases normalizes any supported log shape into case form for reporting.
func asCases(log model.Log, opts []conformance.Option) (*model.EventLog, error) {
	return conformance.NormalizeLog(log, opts...)
}

// proceduralModel converts a loaded model to a Petri net for replay methods.
func proceduralModel(m any) (*petri.System, error) {
	sys, err := conformance.AsProcedural(m)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeModelConversion, "model cannot be replayed")
	}
	return sys, nil
}
