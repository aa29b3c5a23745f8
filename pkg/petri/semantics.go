package petri

// Firing semantics. All functions treat markings as immutable and return
// fresh copies, matching the engine contract that caller-owned data is never
// mutated.

// Enabled reports whether t can fire in marking m.
func (n *Net) Enabled(m Marking, t *Transition) bool {
	return m.Geq(n.pre[t])
}

// Fire fires t in m and returns the successor marking. The caller must ensure
// t is enabled; firing a disabled transition yields negative token counts.
func (n *Net) Fire(m Marking, t *Transition) Marking {
	out := m.Copy()
	for p, c := range n.pre[t] {
		out[p] -= c
		if out[p] == 0 {
			delete(out, p)
		}
	}
	for p, c := range n.post[t] {
		out[p] += c
	}
	return out
}

// EnabledTransitions returns the transitions enabled in m, in net order.
func (n *Net) EnabledTransitions(m Marking) []*Transition {
	var out []*Transition
	for _, t := range n.transitions {
		if n.Enabled(m, t) {
			out = append(out, t)
		}
	}
	return out
}

// silentClosureLimit bounds the tau-reachability search so that nets with
// unbounded silent loops cannot stall the caller.
const silentClosureLimit = 4096

// SilentClosure returns all markings reachable from m by firing only silent
// transitions, including m itself.
func (n *Net) SilentClosure(m Marking) []Marking {
	seen := map[string]struct{}{m.Key(): {}}
	queue := []Marking{m}
	closure := []Marking{m}

	for len(queue) > 0 && len(closure) < silentClosureLimit {
		cur := queue[0]
		queue = queue[1:]
		for _, t := range n.transitions {
			if !t.IsSilent() || !n.Enabled(cur, t) {
				continue
			}
			next := n.Fire(cur, t)
			key := next.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			queue = append(queue, next)
			closure = append(closure, next)
		}
	}
	return closure
}

// EnabledLabels returns the activity labels that can occur next from m,
// considering silent transitions fired in between.
func (n *Net) EnabledLabels(m Marking) map[string]struct{} {
	labels := make(map[string]struct{})
	for _, reach := range n.SilentClosure(m) {
		for _, t := range n.transitions {
			if !t.IsSilent() && n.Enabled(reach, t) {
				labels[t.Label] = struct{}{}
			}
		}
	}
	return labels
}

// CanReachFinal reports whether the final marking is reachable from m by
// firing only silent transitions.
func (n *Net) CanReachFinal(m, final Marking) bool {
	for _, reach := range n.SilentClosure(m) {
		if reach.Equal(final) {
			return true
		}
	}
	return false
}
