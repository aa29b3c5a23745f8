package replay

import (
	"github.com/conformly/conformly/pkg/petri"
)

// Markings replays the activity sequence and returns the marking observed
// before each position plus the final marking, len(activities)+1 entries in
// total. Firing decisions mirror ApplyActivities: silent transitions are
// fired to enable a step where possible, missing tokens are inserted
// otherwise. Used by the precision evaluator to anchor prefix states.
func Markings(activities []string, sys *petri.System) []petri.Marking {
	net := sys.Net
	m := sys.InitialMarking.Copy()
	out := make([]petri.Marking, 0, len(activities)+1)

	for _, act := range activities {
		out = append(out, m.Copy())
		candidates := net.TransitionsWithLabel(act)
		if len(candidates) == 0 {
			continue
		}
		t, path := pickTransition(net, m, candidates)
		for _, tau := range path {
			m = net.Fire(m, tau)
		}
		if !net.Enabled(m, t) {
			for p, need := range net.Pre(t) {
				if deficit := need - m[p]; deficit > 0 {
					m[p] += deficit
				}
			}
		}
		m = net.Fire(m, t)
	}
	out = append(out, m.Copy())
	return out
}
