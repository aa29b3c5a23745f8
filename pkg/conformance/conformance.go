// Package conformance is the conformance verification engine: it routes a
// (log, model) pair to the matching checking strategy, escalates per-trace
// fitness questions through a cost-aware decision cascade, and runs the
// temporal-profile and log-skeleton deviation detectors.
//
// All entry points accept a structured event log or a flat event table, share
// the three configurable attribute names (activity, timestamp, case id), and
// validate their inputs before any computation. Output lists always match the
// input trace order positionally.
package conformance

import (
	"context"

	"github.com/conformly/conformly/internal/align"
	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/internal/replay"
	"github.com/conformly/conformly/pkg/petri"
	"github.com/conformly/conformly/pkg/skeleton"
	"github.com/conformly/conformly/pkg/temporal"
)

// FitnessResult is the aggregate fitness of a log against a model.
type FitnessResult struct {
	AverageTraceFitness       float64
	PercentageOfFittingTraces float64
}

// DiagnosticsTokenBasedReplay replays the log over the procedural model and
// returns the full per-trace replay diagnostics, in log order.
func DiagnosticsTokenBasedReplay(ctx context.Context, log model.Log, sys *petri.System, opts ...Option) ([]replay.Result, error) {
	p, err := newProperties(log, opts...)
	if err != nil {
		return nil, err
	}
	el, err := asEventLog(log, p)
	if err != nil {
		return nil, err
	}
	return replay.Apply(ctx, el, sys, p.ActivityKey)
}

// DiagnosticsAlignments aligns the log against a model of any supported
// shape and returns the full per-trace alignment diagnostics, in log order.
// The parallel option applies to procedural and hierarchical models only.
func DiagnosticsAlignments(ctx context.Context, log model.Log, m any, opts ...Option) ([]align.Result, error) {
	p, err := newProperties(log, opts...)
	if err != nil {
		return nil, err
	}
	el, err := asEventLog(log, p)
	if err != nil {
		return nil, err
	}
	routed, err := route(m)
	if err != nil {
		return nil, err
	}
	sys, err := routed.asProcedural()
	if err != nil {
		return nil, err
	}
	return align.Apply(ctx, el, sys, p.ActivityKey, align.Options{
		Parallel:   p.Parallel && routed.parallelAllowed(),
		NumWorkers: p.NumWorkers,
		Cache:      p.AlignmentCache,
	})
}

// FitnessTokenBasedReplay calculates log-level fitness using token-based
// replay.
func FitnessTokenBasedReplay(ctx context.Context, log model.Log, sys *petri.System, opts ...Option) (FitnessResult, error) {
	results, err := DiagnosticsTokenBasedReplay(ctx, log, sys, opts...)
	if err != nil {
		return FitnessResult{}, err
	}
	var sum float64
	fitting := 0
	for _, r := range results {
		sum += r.Fitness
		if r.IsFit {
			fitting++
		}
	}
	return aggregate(sum, fitting, len(results)), nil
}

// FitnessAlignments calculates log-level fitness using alignments.
func FitnessAlignments(ctx context.Context, log model.Log, m any, opts ...Option) (FitnessResult, error) {
	results, err := DiagnosticsAlignments(ctx, log, m, opts...)
	if err != nil {
		return FitnessResult{}, err
	}
	var sum float64
	fitting := 0
	for _, r := range results {
		sum += r.Fitness
		if r.Fitness == 1.0 {
			fitting++
		}
	}
	return aggregate(sum, fitting, len(results)), nil
}

func aggregate(sum float64, fitting, total int) FitnessResult {
	if total == 0 {
		return FitnessResult{AverageTraceFitness: 1.0, PercentageOfFittingTraces: 100.0}
	}
	return FitnessResult{
		AverageTraceFitness:       sum / float64(total),
		PercentageOfFittingTraces: 100.0 * float64(fitting) / float64(total),
	}
}

// ConformanceTemporalProfile checks the log against a temporal profile and
// returns, per case, the statistically anomalous activity pairs.
func ConformanceTemporalProfile(ctx context.Context, log model.Log, profile temporal.Profile, opts ...Option) ([][]TemporalDeviation, error) {
	p, err := newProperties(log, opts...)
	if err != nil {
		return nil, err
	}
	el, err := asEventLog(log, p)
	if err != nil {
		return nil, err
	}
	return temporalDeviations(ctx, el, profile, p)
}

// ConformanceLogSkeleton checks the log against a log skeleton and returns,
// per case, the set of violated constraint instances.
func ConformanceLogSkeleton(ctx context.Context, log model.Log, skel *skeleton.Skeleton, opts ...Option) ([]ViolationSet, error) {
	p, err := newProperties(log, opts...)
	if err != nil {
		return nil, err
	}
	el, err := asEventLog(log, p)
	if err != nil {
		return nil, err
	}
	return skeletonViolations(ctx, el, skel, p)
}
