package conformance

import (
	"context"
	"strings"

	"github.com/conformly/conformly/internal/align"
	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/internal/replay"
	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/petri"
)

// Precision is measured with escaping edges: for every log prefix, the
// activities the model additionally enables at the reached state but the log
// never takes are escapes, and precision is one minus the weighted escape
// share. The two variants differ only in how the reached state is anchored:
// token-based replay of the prefix, or the model path projected from an
// optimal alignment.

// PrecisionTokenBasedReplay calculates precision using token-based replay.
// The result is always within [0,1].
func PrecisionTokenBasedReplay(ctx context.Context, log model.Log, sys *petri.System, opts ...Option) (float64, error) {
	p, err := newProperties(log, opts...)
	if err != nil {
		return 0, err
	}
	el, err := asEventLog(log, p)
	if err != nil {
		return 0, err
	}
	return escapingEdges(ctx, el, sys, p, func(acts []string) ([]petri.Marking, error) {
		return replay.Markings(acts, sys), nil
	})
}

// PrecisionAlignments calculates precision using alignments. The parallel
// option is honored through the alignment engine.
func PrecisionAlignments(ctx context.Context, log model.Log, m any, opts ...Option) (float64, error) {
	p, err := newProperties(log, opts...)
	if err != nil {
		return 0, err
	}
	el, err := asEventLog(log, p)
	if err != nil {
		return 0, err
	}
	routed, err := route(m)
	if err != nil {
		return 0, err
	}
	sys, err := routed.asProcedural()
	if err != nil {
		return 0, err
	}

	byName := make(map[string]*petri.Transition)
	for _, t := range sys.Net.Transitions() {
		byName[t.Name] = t
	}

	return escapingEdges(ctx, el, sys, p, func(acts []string) ([]petri.Marking, error) {
		res, err := align.ApplyTrace(model.TraceFromActivities(p.ActivityKey, acts), sys, p.ActivityKey)
		if err != nil {
			return nil, err
		}
		return alignedMarkings(acts, res, sys, byName), nil
	})
}

// alignedMarkings walks the alignment moves and records the marking in force
// before each trace position, plus the final marking.
func alignedMarkings(acts []string, res align.Result, sys *petri.System, byName map[string]*petri.Transition) []petri.Marking {
	m := sys.InitialMarking.Copy()
	out := make([]petri.Marking, 0, len(acts)+1)
	for _, mv := range res.Moves {
		switch mv.Type {
		case align.MoveLog:
			out = append(out, m.Copy())
		case align.MoveSync:
			out = append(out, m.Copy())
			if t := byName[mv.Transition]; t != nil {
				m = sys.Net.Fire(m, t)
			}
		case align.MoveModel:
			if t := byName[mv.Transition]; t != nil {
				m = sys.Net.Fire(m, t)
			}
		}
	}
	for len(out) < len(acts)+1 {
		out = append(out, m.Copy())
	}
	return out
}

// escapingEdges aggregates prefix states over the whole log and computes the
// weighted escaping-edge precision.
func escapingEdges(ctx context.Context, log *model.EventLog, sys *petri.System, p Properties, markingsFor func([]string) ([]petri.Marking, error)) (float64, error) {
	type prefixInfo struct {
		weight   int
		observed map[string]struct{}
		marking  petri.Marking
	}
	prefixes := make(map[string]*prefixInfo)
	variantMarkings := make(map[string][]petri.Marking)

	for _, c := range log.Cases {
		if err := ctx.Err(); err != nil {
			return 0, errors.Wrap(err, errors.CodeContextCanceled, "precision aborted")
		}
		acts := c.Events.Activities(p.ActivityKey)
		vkey := strings.Join(acts, "\x00")
		markings, ok := variantMarkings[vkey]
		if !ok {
			var err error
			markings, err = markingsFor(acts)
			if err != nil {
				return 0, err
			}
			variantMarkings[vkey] = markings
		}
		for pos := 0; pos <= len(acts); pos++ {
			key := strings.Join(acts[:pos], "\x00")
			pi, ok := prefixes[key]
			if !ok {
				pi = &prefixInfo{observed: make(map[string]struct{}), marking: markings[pos]}
				prefixes[key] = pi
			}
			pi.weight++
			if pos < len(acts) {
				pi.observed[acts[pos]] = struct{}{}
			}
		}
	}

	var escaping, allowed int
	for _, pi := range prefixes {
		enabled := sys.Net.EnabledLabels(pi.marking)
		allowed += pi.weight * len(enabled)
		for label := range enabled {
			if _, ok := pi.observed[label]; !ok {
				escaping += pi.weight
			}
		}
	}
	if allowed == 0 {
		return 1.0, nil
	}
	precision := 1.0 - float64(escaping)/float64(allowed)
	if precision < 0 {
		precision = 0
	}
	if precision > 1 {
		precision = 1
	}
	return precision, nil
}
