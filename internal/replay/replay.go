// Package replay implements the token-based replay diagnostic engine.
// Traces are replayed over a procedural model; tokens missing during firing
// and tokens remaining after completion quantify the misfit.
package replay

import (
	"context"

	"github.com/conformly/conformly/internal/model"
	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/petri"
)

// Result is the per-trace replay record.
type Result struct {
	IsFit     bool
	Fitness   float64
	Missing   int
	Remaining int
	Produced  int
	Consumed  int

	// ActivatedTransitions lists the fired transitions in order, silent
	// enablers included.
	ActivatedTransitions []string
}

// Apply replays every case of the log and returns one result per case, in
// log order. Variant-level results are memoized: cases with the same activity
// sequence replay once.
func Apply(ctx context.Context, log *model.EventLog, sys *petri.System, activityKey string) ([]Result, error) {
	results := make([]Result, len(log.Cases))
	memo := make(map[string]Result)
	for i, c := range log.Cases {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeContextCanceled, "replay aborted")
		}
		acts := c.Events.Activities(activityKey)
		key := variantKey(acts)
		if r, ok := memo[key]; ok {
			results[i] = r
			continue
		}
		r := ApplyActivities(acts, sys)
		memo[key] = r
		results[i] = r
	}
	return results, nil
}

// ApplyTrace replays a single trace.
func ApplyTrace(tr model.Trace, sys *petri.System, activityKey string) Result {
	return ApplyActivities(tr.Activities(activityKey), sys)
}

// ApplyActivities replays a plain activity sequence.
func ApplyActivities(activities []string, sys *petri.System) Result {
	net := sys.Net
	m := sys.InitialMarking.Copy()

	var fired []string
	produced := sys.InitialMarking.Total()
	consumed := 0
	missing := 0

	for _, act := range activities {
		candidates := net.TransitionsWithLabel(act)
		if len(candidates) == 0 {
			// Activity outside the model alphabet: a token is demanded that
			// the model can never supply.
			missing++
			consumed++
			produced++
			continue
		}

		t, path := pickTransition(net, m, candidates)
		for _, tau := range path {
			m = net.Fire(m, tau)
			consumed += net.Pre(tau).Total()
			produced += net.Post(tau).Total()
			fired = append(fired, tau.Name)
		}
		if !net.Enabled(m, t) {
			// Insert the missing tokens so the transition can fire.
			for p, need := range net.Pre(t) {
				if deficit := need - m[p]; deficit > 0 {
					missing += deficit
					m[p] += deficit
				}
			}
		}
		m = net.Fire(m, t)
		consumed += net.Pre(t).Total()
		produced += net.Post(t).Total()
		fired = append(fired, t.Name)
	}

	// Steer towards the final marking with silent transitions before
	// accounting for the final consumption.
	if !m.Equal(sys.FinalMarking) {
		if path, ok := silentPathTo(net, m, func(c petri.Marking) bool {
			return c.Equal(sys.FinalMarking)
		}); ok {
			for _, tau := range path {
				m = net.Fire(m, tau)
				consumed += net.Pre(tau).Total()
				produced += net.Post(tau).Total()
				fired = append(fired, tau.Name)
			}
		}
	}

	consumed += sys.FinalMarking.Total()
	for p, need := range sys.FinalMarking {
		if deficit := need - m[p]; deficit > 0 {
			missing += deficit
			m[p] += deficit
		}
	}
	remaining := 0
	for p, c := range m {
		if extra := c - sys.FinalMarking[p]; extra > 0 {
			remaining += extra
		}
	}

	fitness := 1.0
	if consumed > 0 {
		fitness = 0.5 * (1.0 - float64(missing)/float64(consumed))
	} else {
		fitness = 0.5
	}
	if produced > 0 {
		fitness += 0.5 * (1.0 - float64(remaining)/float64(produced))
	} else {
		fitness += 0.5
	}

	return Result{
		IsFit:                missing == 0 && remaining == 0,
		Fitness:              fitness,
		Missing:              missing,
		Remaining:            remaining,
		Produced:             produced,
		Consumed:             consumed,
		ActivatedTransitions: fired,
	}
}

// pickTransition selects the candidate to fire: first one already enabled,
// then one enabled after a silent path, then the first candidate with tokens
// force-inserted.
func pickTransition(net *petri.Net, m petri.Marking, candidates []*petri.Transition) (*petri.Transition, []*petri.Transition) {
	for _, t := range candidates {
		if net.Enabled(m, t) {
			return t, nil
		}
	}
	for _, t := range candidates {
		if path, ok := silentPathTo(net, m, func(c petri.Marking) bool {
			return net.Enabled(c, t)
		}); ok {
			return t, path
		}
	}
	return candidates[0], nil
}

// silentPathLimit bounds the tau search per firing decision.
const silentPathLimit = 4096

// silentPathTo searches for a sequence of silent transitions from m to a
// marking satisfying goal, breadth-first so the shortest enabler wins.
func silentPathTo(net *petri.Net, m petri.Marking, goal func(petri.Marking) bool) ([]*petri.Transition, bool) {
	if goal(m) {
		return nil, true
	}
	type node struct {
		marking petri.Marking
		path    []*petri.Transition
	}
	seen := map[string]struct{}{m.Key(): {}}
	queue := []node{{marking: m}}
	expanded := 0

	for len(queue) > 0 && expanded < silentPathLimit {
		cur := queue[0]
		queue = queue[1:]
		expanded++
		for _, t := range net.Transitions() {
			if !t.IsSilent() || !net.Enabled(cur.marking, t) {
				continue
			}
			next := net.Fire(cur.marking, t)
			key := next.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			path := append(append([]*petri.Transition{}, cur.path...), t)
			if goal(next) {
				return path, true
			}
			queue = append(queue, node{marking: next, path: path})
		}
	}
	return nil, false
}

func variantKey(activities []string) string {
	key := ""
	for i, a := range activities {
		if i > 0 {
			key += "\x00"
		}
		key += a
	}
	return key
}
