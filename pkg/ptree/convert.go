package ptree

import (
	"fmt"

	"github.com/conformly/conformly/pkg/petri"
)

// AsPetriNet converts the tree into an equivalent procedural model by
// structural recursion: every subtree is translated into a net fragment with
// one entry and one exit place, operators glue fragments with silent
// transitions where token routing is needed.
func (n *Node) AsPetriNet() (*petri.System, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	b := &netBuilder{net: petri.NewNet("ptree")}
	source := b.place("source")
	sink := b.place("sink")
	if err := b.translate(n, source, sink); err != nil {
		return nil, err
	}
	return &petri.System{
		Net:            b.net,
		InitialMarking: petri.NewMarking(source),
		FinalMarking:   petri.NewMarking(sink),
	}, nil
}

type netBuilder struct {
	net     *petri.Net
	counter int
}

func (b *netBuilder) place(hint string) *petri.Place {
	b.counter++
	return b.net.AddPlace(fmt.Sprintf("%s_%d", hint, b.counter))
}

func (b *netBuilder) transition(hint, label string) *petri.Transition {
	b.counter++
	return b.net.AddTransition(fmt.Sprintf("%s_%d", hint, b.counter), label)
}

// translate wires the fragment for node between the entry and exit places.
func (b *netBuilder) translate(node *Node, entry, exit *petri.Place) error {
	switch node.Operator {
	case OperatorNone:
		hint := "skip"
		if !node.IsSilent() {
			hint = node.Label
		}
		t := b.transition(hint, node.Label)
		b.net.AddArc(entry, t, 1)
		b.net.AddArc(t, exit, 1)
		return nil

	case OperatorSequence:
		cur := entry
		for i, c := range node.Children {
			next := exit
			if i < len(node.Children)-1 {
				next = b.place("seq")
			}
			if err := b.translate(c, cur, next); err != nil {
				return err
			}
			cur = next
		}
		return nil

	case OperatorXor:
		for _, c := range node.Children {
			if err := b.translate(c, entry, exit); err != nil {
				return err
			}
		}
		return nil

	case OperatorParallel:
		split := b.transition("split", "")
		join := b.transition("join", "")
		b.net.AddArc(entry, split, 1)
		b.net.AddArc(join, exit, 1)
		for _, c := range node.Children {
			in := b.place("par_in")
			out := b.place("par_out")
			b.net.AddArc(split, in, 1)
			b.net.AddArc(out, join, 1)
			if err := b.translate(c, in, out); err != nil {
				return err
			}
		}
		return nil

	case OperatorLoop:
		doIn := b.place("loop_in")
		doOut := b.place("loop_out")
		enter := b.transition("enter", "")
		leave := b.transition("leave", "")
		b.net.AddArc(entry, enter, 1)
		b.net.AddArc(enter, doIn, 1)
		b.net.AddArc(doOut, leave, 1)
		b.net.AddArc(leave, exit, 1)
		if err := b.translate(node.Children[0], doIn, doOut); err != nil {
			return err
		}
		for _, redo := range node.Children[1:] {
			if err := b.translate(redo, doOut, doIn); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown operator %d", node.Operator)
	}
}
