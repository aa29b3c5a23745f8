package conformance

import (
	"context"

	"github.com/conformly/conformly/internal/align"
	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/internal/replay"
	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/footprint"
	"github.com/conformly/conformly/pkg/petri"
)

// Trace is the trace argument of the single-trace fitness check: either a
// model.Trace or a plain activity sequence ([]string), which is promoted to a
// single-event-per-activity trace first.
type Trace any

// CheckIsFitting decides whether one trace is perfectly fit against a model,
// escalating from cheap approximate techniques to the exact one:
//
//  1. Footprint comparison (hierarchical models only). A negative verdict is
//     conclusive; a positive one may be a false positive and falls through.
//  2. Token-based replay on the procedural form. A positive verdict is
//     conclusive; a negative one may be a false negative and falls through.
//  3. Alignment. Always authoritative: fit iff fitness is exactly 1.0.
//
// Procedural models skip the footprint tier by default (enable it with
// WithFootprintsOnPetriNets); instead the trace alphabet is checked against
// the model's visible labels, and any foreign activity decides not-fit
// without replay.
func CheckIsFitting(ctx context.Context, trace Trace, m any, opts ...Option) (bool, error) {
	p := Properties{ActivityKey: DefaultActivityKey, Zeta: 1.0}
	for _, opt := range opts {
		opt(&p)
	}

	tr, err := normalizeTrace(trace, p)
	if err != nil {
		return false, err
	}
	routed, err := route(m)
	if err != nil {
		return false, err
	}

	if routed.kind == kindHierarchical || p.FootprintsOnPetriNets {
		var fpModel *footprint.Footprint
		if routed.kind == kindHierarchical {
			fpModel = footprint.FromTree(routed.tree)
		} else {
			sys, err := routed.asProcedural()
			if err != nil {
				return false, err
			}
			// An incomplete model footprint could flag pairs the model in
			// fact allows; only a complete one keeps the negative verdict
			// conclusive.
			fpModel, _ = footprintOfSystem(sys)
		}
		if fpModel != nil {
			fpTrace := footprint.FromTrace(tr, p.ActivityKey)
			if cmp := footprint.Compare(fpTrace, fpModel); !cmp.IsFit {
				return false, nil
			}
		}
	}

	sys, err := routed.asProcedural()
	if err != nil {
		return false, err
	}

	if routed.kind == kindProcedural {
		labels := sys.Net.VisibleLabels()
		for _, act := range tr.Activities(p.ActivityKey) {
			if _, ok := labels[act]; !ok {
				return false, nil
			}
		}
	}

	if r := replay.ApplyTrace(tr, sys, p.ActivityKey); r.IsFit {
		return true, nil
	}

	if err := ctx.Err(); err != nil {
		return false, errors.Wrap(err, errors.CodeContextCanceled, "fitness check aborted")
	}
	res, err := align.ApplyTrace(tr, sys, p.ActivityKey)
	if err != nil {
		return false, err
	}
	return res.Fitness == 1.0, nil
}

// normalizeTrace promotes the trace argument to a model.Trace. Promotion is
// kept separate from the cascade itself.
func normalizeTrace(trace Trace, p Properties) (model.Trace, error) {
	switch t := trace.(type) {
	case model.Trace:
		return t, nil
	case []model.Event:
		return model.Trace(t), nil
	case []string:
		return model.TraceFromActivities(p.ActivityKey, t), nil
	default:
		return nil, errors.New(errors.CodeInputShape, "trace is not a trace or activity sequence").
			WithContext("got", trace)
	}
}

// footprintOfSystem derives the footprint of a procedural model from its
// reachable directly-follows relation. Only consulted when the caller opts
// the footprint tier in for procedural models. Returns nil when the state
// space exceeds the exploration bound, since a truncated footprint would
// forbid pairs the model actually allows.
func footprintOfSystem(sys *petri.System) (*footprint.Footprint, bool) {
	f := footprint.New()
	for label := range sys.Net.VisibleLabels() {
		f.Activities[label] = struct{}{}
	}
	seen := map[string]struct{}{}
	type state struct {
		marking petri.Marking
		last    string
	}
	const stateLimit = 10000
	queue := []state{{marking: sys.InitialMarking}}
	for len(queue) > 0 {
		if len(seen) >= stateLimit {
			return nil, false
		}
		cur := queue[0]
		queue = queue[1:]
		key := cur.marking.Key() + "|" + cur.last
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		for _, t := range sys.Net.Transitions() {
			if !sys.Net.Enabled(cur.marking, t) {
				continue
			}
			next := sys.Net.Fire(cur.marking, t)
			last := cur.last
			if !t.IsSilent() {
				if cur.last == "" {
					f.Start[t.Label] = struct{}{}
				} else {
					f.Sequence[footprint.Pair{A: cur.last, B: t.Label}] = struct{}{}
				}
				last = t.Label
			}
			queue = append(queue, state{marking: next, last: last})
		}
	}
	return f, true
}
