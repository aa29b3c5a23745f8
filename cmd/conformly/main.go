// Conformly - Conformance verification for process event logs.
// Checks event logs (XES, CSV, XLSX) against reference process models.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/cache"
	"github.com/conformly/conformly/pkg/conformance"
	"github.com/conformly/conformly/pkg/config"
	"github.com/conformly/conformly/pkg/ingest"
	"github.com/conformly/conformly/pkg/telemetry"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	modelFile   string
	profileFile string
	skelFile    string
	methodFlag  string

	activityKey  string
	timestampKey string
	caseIDKey    string

	zetaFlag    float64
	parallel    bool
	workers     int
	verbose     bool
	noCache     bool
)

var shutdownTelemetry func(context.Context) error

func main() {
	ctx, stop := signalContext()
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

var rootCmd = &cobra.Command{
	Use:   "conformly",
	Short: "Conformly - Verify event logs against process models",
	Long: `Conformly checks process event logs (XES, CSV, XLSX) against reference
models: Petri nets, directly-follows graphs, and process trees.

Fitness quantifies how much of the observed behavior the model can replay;
precision quantifies how much modeled behavior was actually observed.`,
	Version:           fmt.Sprintf("%s (%s)", version, commit),
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

// setup loads configuration and wires optional subsystems before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	cfg := config.Global().Get()

	// Flags not set explicitly fall back to configured keys
	if !cmd.Flags().Changed("activity") {
		activityKey = cfg.Keys.Activity
	}
	if !cmd.Flags().Changed("timestamp") {
		timestampKey = cfg.Keys.Timestamp
	}
	if !cmd.Flags().Changed("case-id") {
		caseIDKey = cfg.Keys.CaseID
	}
	if !cmd.Flags().Changed("zeta") {
		zetaFlag = cfg.Verification.Zeta
	}
	if !cmd.Flags().Changed("workers") {
		workers = cfg.Verification.Workers
	}

	ingest.ConfigureS3(ingest.S3Config{
		Region:          cfg.Source.S3.Region,
		Endpoint:        cfg.Source.S3.Endpoint,
		UsePathStyle:    cfg.Source.S3.UsePathStyle,
		AccessKeyID:     cfg.Source.S3.AccessKeyID,
		SecretAccessKey: cfg.Source.S3.SecretAccessKey,
	})

	if cfg.Telemetry.Enabled {
		tcfg := telemetry.DefaultConfig("conformly")
		tcfg.ServiceVersion = version
		if cfg.Telemetry.Endpoint != "" {
			tcfg.Endpoint = cfg.Telemetry.Endpoint
		}
		shutdown, err := telemetry.Init(cmd.Context(), tcfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
		} else {
			shutdownTelemetry = shutdown
		}
	}

	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	if shutdownTelemetry != nil {
		shutdownTelemetry(cmd.Context())
	}
}

// loadLog reads the event log at path, local or s3://.
func loadLog(ctx context.Context, path string) (model.Log, error) {
	return ingest.Load(ctx, path)
}

// verifyOptions assembles conformance options from flags and config.
func verifyOptions(ctx context.Context) []conformance.Option {
	cfg := config.Global().Get()

	opts := []conformance.Option{
		conformance.WithActivityKey(activityKey),
		conformance.WithTimestampKey(timestampKey),
		conformance.WithCaseIDKey(caseIDKey),
		conformance.WithParallel(parallel),
		conformance.WithZeta(zetaFlag),
	}
	if workers > 0 {
		opts = append(opts, conformance.WithNumWorkers(workers))
	}

	if cfg.Cache.Enabled && !noCache {
		store, err := cache.NewRedis(ctx, cache.RedisConfig{
			Address:  cfg.Cache.Address,
			Password: cfg.Cache.Password,
			Database: cfg.Cache.Database,
			Prefix:   cfg.Cache.Prefix,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "alignment cache disabled: %v\n", err)
			}
		} else {
			opts = append(opts, conformance.WithAlignmentCache(store))
		}
	}

	return opts
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&activityKey, "activity", conformance.DefaultActivityKey, "Activity attribute name")
	pf.StringVar(&timestampKey, "timestamp", conformance.DefaultTimestampKey, "Timestamp attribute name")
	pf.StringVar(&caseIDKey, "case-id", conformance.DefaultCaseIDKey, "Case ID attribute name")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fitnessCmd)
	rootCmd.AddCommand(precisionCmd)
	rootCmd.AddCommand(temporalCmd)
	rootCmd.AddCommand(skeletonCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(watchCmd)
}
