package conformance

import (
	"context"

	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/footprint"
)

// Legacy footprint-based conformance surface. Kept for callers that still
// compare behavior with relation footprints; the replay and alignment entry
// points are the primary API.

// DiagnosticsFootprints compares every trace's footprint against the model
// footprint and returns one comparison per trace, in log order.
//
// Deprecated: footprint-based conformance checking will not be exposed in a
// future release. Use DiagnosticsAlignments or DiagnosticsTokenBasedReplay.
func DiagnosticsFootprints(ctx context.Context, log model.Log, m any, opts ...Option) ([]footprint.Comparison, error) {
	p, err := newProperties(log, opts...)
	if err != nil {
		return nil, err
	}
	el, err := asEventLog(log, p)
	if err != nil {
		return nil, err
	}
	fpModel, err := modelFootprint(m, p)
	if err != nil {
		return nil, err
	}
	out := make([]footprint.Comparison, len(el.Cases))
	for i, c := range el.Cases {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeContextCanceled, "footprint check aborted")
		}
		out[i] = footprint.Compare(footprint.FromTrace(c.Events, p.ActivityKey), fpModel)
	}
	return out, nil
}

// FitnessFootprints calculates log-level fitness from footprints.
//
// Deprecated: footprint-based conformance checking will not be exposed in a
// future release. Use FitnessAlignments or FitnessTokenBasedReplay.
func FitnessFootprints(ctx context.Context, log model.Log, m any, opts ...Option) (FitnessResult, error) {
	p, err := newProperties(log, opts...)
	if err != nil {
		return FitnessResult{}, err
	}
	el, err := asEventLog(log, p)
	if err != nil {
		return FitnessResult{}, err
	}
	fpModel, err := modelFootprint(m, p)
	if err != nil {
		return FitnessResult{}, err
	}
	var sum float64
	fitting := 0
	for _, c := range el.Cases {
		fpTrace := footprint.FromTrace(c.Events, p.ActivityKey)
		sum += footprint.Fitness(fpTrace, fpModel)
		if footprint.Compare(fpTrace, fpModel).IsFit {
			fitting++
		}
	}
	return aggregate(sum, fitting, len(el.Cases)), nil
}

// PrecisionFootprints calculates precision from footprints.
//
// Deprecated: footprint-based conformance checking will not be exposed in a
// future release. Use PrecisionAlignments or PrecisionTokenBasedReplay.
func PrecisionFootprints(ctx context.Context, log model.Log, m any, opts ...Option) (float64, error) {
	p, err := newProperties(log, opts...)
	if err != nil {
		return 0, err
	}
	el, err := asEventLog(log, p)
	if err != nil {
		return 0, err
	}
	fpModel, err := modelFootprint(m, p)
	if err != nil {
		return 0, err
	}
	return footprint.Precision(footprint.FromLog(el, p.ActivityKey), fpModel), nil
}

// modelFootprint normalizes a model argument (or an already discovered
// footprint) into a footprint representation.
func modelFootprint(m any, p Properties) (*footprint.Footprint, error) {
	if fp, ok := m.(*footprint.Footprint); ok {
		return fp, nil
	}
	routed, err := route(m)
	if err != nil {
		return nil, err
	}
	switch routed.kind {
	case kindHierarchical:
		return footprint.FromTree(routed.tree), nil
	case kindFrequencyGraph:
		f := footprint.New()
		for _, a := range routed.graph.Activities() {
			f.Activities[a] = struct{}{}
		}
		for e := range routed.graph.Edges {
			f.Sequence[footprint.Pair{A: e.From, B: e.To}] = struct{}{}
		}
		for a := range routed.graph.StartActivities {
			f.Start[a] = struct{}{}
		}
		for a := range routed.graph.EndActivities {
			f.End[a] = struct{}{}
		}
		return f, nil
	default:
		sys, err := routed.asProcedural()
		if err != nil {
			return nil, err
		}
		fp, complete := footprintOfSystem(sys)
		if !complete {
			return nil, errors.New(errors.CodeModelConversion, "model state space too large for footprint discovery")
		}
		return fp, nil
	}
}
