package align

import (
	"container/heap"
	"strconv"

	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/petri"
)

// searchLimit bounds the number of expanded states per alignment. The state
// space of (marking, trace position) pairs is finite for bounded nets but can
// explode on pathological models; callers get a hard error instead of a hang.
const searchLimit = 500_000

// searchNode is a state in the synchronous product: a marking paired with a
// position in the trace, plus the path that reached it.
type searchNode struct {
	marking petri.Marking
	pos     int
	cost    int // search cost (taus count)
	fitCost int // deviation cost (taus free), used for fitness
	parent  *searchNode
	move    *Move
	index   int // heap index
}

func (n *searchNode) moves() []Move {
	var out []Move
	for cur := n; cur != nil && cur.move != nil; cur = cur.parent {
		out = append(out, *cur.move)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

type nodeHeap []*searchNode

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)         { n := x.(*searchNode); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}

// search runs uniform-cost search over the synchronous product of the model
// and the activity sequence and returns the cheapest node reaching the final
// marking with the whole trace consumed.
func search(sys *petri.System, acts []string) (*searchNode, error) {
	net := sys.Net
	start := &searchNode{marking: sys.InitialMarking.Copy()}

	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, start)
	closed := make(map[string]int)
	expanded := 0

	for open.Len() > 0 {
		cur := heap.Pop(open).(*searchNode)
		key := stateKey(cur.marking, cur.pos)
		if best, ok := closed[key]; ok && best <= cur.cost {
			continue
		}
		closed[key] = cur.cost

		if cur.pos == len(acts) && cur.marking.Equal(sys.FinalMarking) {
			return cur, nil
		}

		expanded++
		if expanded > searchLimit {
			return nil, errors.New(errors.CodeAlignmentFailed, "alignment state space exceeded limit").
				WithContext("limit", searchLimit)
		}

		// Log move: skip the next trace event.
		if cur.pos < len(acts) {
			push(open, closed, &searchNode{
				marking: cur.marking,
				pos:     cur.pos + 1,
				cost:    cur.cost + costVisible,
				fitCost: cur.fitCost + costVisible,
				parent:  cur,
				move:    &Move{Type: MoveLog, Activity: acts[cur.pos]},
			})
		}

		for _, t := range net.Transitions() {
			if !net.Enabled(cur.marking, t) {
				continue
			}
			next := net.Fire(cur.marking, t)

			// Synchronous move when the next trace event matches the label.
			if !t.IsSilent() && cur.pos < len(acts) && t.Label == acts[cur.pos] {
				push(open, closed, &searchNode{
					marking: next,
					pos:     cur.pos + 1,
					cost:    cur.cost + costSync,
					fitCost: cur.fitCost + costSync,
					parent:  cur,
					move:    &Move{Type: MoveSync, Activity: t.Label, Transition: t.Name},
				})
			}

			// Model move.
			moveCost, moveFit := costVisible, costVisible
			if t.IsSilent() {
				moveCost, moveFit = costTau, 0
			}
			push(open, closed, &searchNode{
				marking: next,
				pos:     cur.pos,
				cost:    cur.cost + moveCost,
				fitCost: cur.fitCost + moveFit,
				parent:  cur,
				move:    &Move{Type: MoveModel, Activity: t.Label, Transition: t.Name},
			})
		}
	}

	return nil, errors.New(errors.CodeAlignmentFailed, "final marking unreachable").
		WithContext("trace_len", len(acts))
}

func push(open *nodeHeap, closed map[string]int, n *searchNode) {
	if best, ok := closed[stateKey(n.marking, n.pos)]; ok && best <= n.cost {
		return
	}
	heap.Push(open, n)
}

func stateKey(m petri.Marking, pos int) string {
	return m.Key() + "|" + strconv.Itoa(pos)
}
