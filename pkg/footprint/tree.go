package footprint

import (
	"github.com/conformly/conformly/pkg/ptree"
)

// FromTree discovers the footprint of a hierarchical model by structural
// recursion over its operators. The result over-approximates the model
// language, which is exactly the direction the cascade relies on: a pair the
// tree footprint forbids can never occur in a fitting trace.
func FromTree(root *ptree.Node) *Footprint {
	s := summarize(root)
	f := New()
	for a := range s.activities {
		f.Activities[a] = struct{}{}
	}
	for p := range s.sequence {
		f.Sequence[p] = struct{}{}
	}
	for p := range s.parallel {
		f.Parallel[p] = struct{}{}
		delete(f.Sequence, p)
		delete(f.Sequence, Pair{p.B, p.A})
	}
	for a := range s.start {
		f.Start[a] = struct{}{}
	}
	for a := range s.end {
		f.End[a] = struct{}{}
	}
	return f
}

// summary captures, per subtree, the behavioral footprint pieces needed to
// compose parents: alphabet, possible first/last activities, directly-follows
// and parallel pairs, and whether the subtree can produce the empty sequence.
type summary struct {
	activities map[string]struct{}
	start      map[string]struct{}
	end        map[string]struct{}
	sequence   map[Pair]struct{}
	parallel   map[Pair]struct{}
	canSkip    bool
}

func newSummary() *summary {
	return &summary{
		activities: make(map[string]struct{}),
		start:      make(map[string]struct{}),
		end:        make(map[string]struct{}),
		sequence:   make(map[Pair]struct{}),
		parallel:   make(map[Pair]struct{}),
	}
}

func (s *summary) absorb(o *summary) {
	for a := range o.activities {
		s.activities[a] = struct{}{}
	}
	for p := range o.sequence {
		s.sequence[p] = struct{}{}
	}
	for p := range o.parallel {
		s.parallel[p] = struct{}{}
	}
}

func summarize(n *ptree.Node) *summary {
	s := newSummary()
	switch n.Operator {
	case ptree.OperatorNone:
		if n.IsSilent() {
			s.canSkip = true
			return s
		}
		s.activities[n.Label] = struct{}{}
		s.start[n.Label] = struct{}{}
		s.end[n.Label] = struct{}{}
		return s

	case ptree.OperatorSequence:
		children := make([]*summary, len(n.Children))
		for i, c := range n.Children {
			children[i] = summarize(c)
			s.absorb(children[i])
		}
		// Link the possible last activities of each prefix to the possible
		// first activities of the next child, skipping over skippable ones.
		pendingEnds := make(map[string]struct{})
		for _, cs := range children {
			for e := range pendingEnds {
				for b := range cs.start {
					s.sequence[Pair{e, b}] = struct{}{}
				}
			}
			if cs.canSkip {
				for a := range cs.end {
					pendingEnds[a] = struct{}{}
				}
			} else {
				pendingEnds = make(map[string]struct{})
				for a := range cs.end {
					pendingEnds[a] = struct{}{}
				}
			}
		}
		// Start/end sets walk over skippable children from either side.
		s.canSkip = true
		for _, cs := range children {
			for a := range cs.start {
				s.start[a] = struct{}{}
			}
			if !cs.canSkip {
				s.canSkip = false
				break
			}
		}
		skip := true
		for i := len(children) - 1; i >= 0; i-- {
			if !skip {
				break
			}
			for a := range children[i].end {
				s.end[a] = struct{}{}
			}
			skip = children[i].canSkip
		}
		return s

	case ptree.OperatorXor:
		for _, c := range n.Children {
			cs := summarize(c)
			s.absorb(cs)
			for a := range cs.start {
				s.start[a] = struct{}{}
			}
			for a := range cs.end {
				s.end[a] = struct{}{}
			}
			if cs.canSkip {
				s.canSkip = true
			}
		}
		return s

	case ptree.OperatorParallel:
		children := make([]*summary, len(n.Children))
		s.canSkip = true
		for i, c := range n.Children {
			children[i] = summarize(c)
			s.absorb(children[i])
			for a := range children[i].start {
				s.start[a] = struct{}{}
			}
			for a := range children[i].end {
				s.end[a] = struct{}{}
			}
			if !children[i].canSkip {
				s.canSkip = false
			}
		}
		// Activities of distinct branches are unordered with each other.
		for i := range children {
			for j := range children {
				if i == j {
					continue
				}
				for a := range children[i].activities {
					for b := range children[j].activities {
						s.parallel[Pair{a, b}] = struct{}{}
					}
				}
			}
		}
		return s

	case ptree.OperatorLoop:
		do := summarize(n.Children[0])
		s.absorb(do)
		for a := range do.start {
			s.start[a] = struct{}{}
		}
		for a := range do.end {
			s.end[a] = struct{}{}
		}
		s.canSkip = do.canSkip
		for _, redoNode := range n.Children[1:] {
			redo := summarize(redoNode)
			s.absorb(redo)
			for e := range do.end {
				for b := range redo.start {
					s.sequence[Pair{e, b}] = struct{}{}
				}
			}
			for e := range redo.end {
				for b := range do.start {
					s.sequence[Pair{e, b}] = struct{}{}
				}
			}
			// Either side of the loop body may be empty.
			if do.canSkip {
				for e := range redo.end {
					for b := range redo.start {
						s.sequence[Pair{e, b}] = struct{}{}
					}
				}
			}
			if redo.canSkip {
				for e := range do.end {
					for b := range do.start {
						s.sequence[Pair{e, b}] = struct{}{}
					}
				}
			}
		}
		return s
	}
	return s
}
