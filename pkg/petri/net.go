// Package petri implements the procedural process model: a place/transition
// net with weighted arcs and two distinguished markings.
package petri

import (
	"fmt"
	"sort"
	"strings"
)

// Place is a control state holder in the net.
type Place struct {
	Name string
}

// Transition is a process step. Label is the activity it represents; silent
// transitions carry an empty label.
type Transition struct {
	Name  string
	Label string
}

// IsSilent reports whether the transition carries no activity label.
func (t *Transition) IsSilent() bool { return t.Label == "" }

// Net is a directed bipartite structure of places and transitions.
type Net struct {
	Name string

	places      map[string]*Place
	transitions []*Transition
	pre         map[*Transition]Marking
	post        map[*Transition]Marking
}

// NewNet creates an empty net.
func NewNet(name string) *Net {
	return &Net{
		Name:   name,
		places: make(map[string]*Place),
		pre:    make(map[*Transition]Marking),
		post:   make(map[*Transition]Marking),
	}
}

// AddPlace adds a place with the given name, returning the existing place if
// the name is already taken.
func (n *Net) AddPlace(name string) *Place {
	if p, ok := n.places[name]; ok {
		return p
	}
	p := &Place{Name: name}
	n.places[name] = p
	return p
}

// AddTransition adds a transition. An empty label marks it silent.
func (n *Net) AddTransition(name, label string) *Transition {
	t := &Transition{Name: name, Label: label}
	n.transitions = append(n.transitions, t)
	n.pre[t] = Marking{}
	n.post[t] = Marking{}
	return t
}

// AddArc connects a place to a transition (input arc) or a transition to a
// place (output arc) with the given weight.
func (n *Net) AddArc(from, to any, weight int) error {
	if weight <= 0 {
		weight = 1
	}
	switch f := from.(type) {
	case *Place:
		t, ok := to.(*Transition)
		if !ok {
			return fmt.Errorf("arc from place %q must target a transition", f.Name)
		}
		n.pre[t][f] += weight
	case *Transition:
		p, ok := to.(*Place)
		if !ok {
			return fmt.Errorf("arc from transition %q must target a place", f.Name)
		}
		n.post[f][p] += weight
	default:
		return fmt.Errorf("arc endpoint must be a place or a transition")
	}
	return nil
}

// Places returns the places in name order.
func (n *Net) Places() []*Place {
	out := make([]*Place, 0, len(n.places))
	for _, p := range n.places {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Transitions returns the transitions in insertion order.
func (n *Net) Transitions() []*Transition { return n.transitions }

// Pre returns the input marking (preset with arc weights) of t.
func (n *Net) Pre(t *Transition) Marking { return n.pre[t] }

// Post returns the output marking (postset with arc weights) of t.
func (n *Net) Post(t *Transition) Marking { return n.post[t] }

// VisibleLabels returns the set of activity labels carried by transitions.
func (n *Net) VisibleLabels() map[string]struct{} {
	labels := make(map[string]struct{})
	for _, t := range n.transitions {
		if !t.IsSilent() {
			labels[t.Label] = struct{}{}
		}
	}
	return labels
}

// TransitionsWithLabel returns all transitions carrying the given label.
func (n *Net) TransitionsWithLabel(label string) []*Transition {
	var out []*Transition
	for _, t := range n.transitions {
		if t.Label == label {
			out = append(out, t)
		}
	}
	return out
}

// Marking is a token distribution over places.
type Marking map[*Place]int

// NewMarking builds a marking from place/count pairs.
func NewMarking(places ...*Place) Marking {
	m := Marking{}
	for _, p := range places {
		m[p]++
	}
	return m
}

// Copy returns an independent copy of the marking.
func (m Marking) Copy() Marking {
	out := make(Marking, len(m))
	for p, c := range m {
		out[p] = c
	}
	return out
}

// Geq reports whether m has at least the tokens of other in every place.
func (m Marking) Geq(other Marking) bool {
	for p, c := range other {
		if m[p] < c {
			return false
		}
	}
	return true
}

// Equal reports token-wise equality, ignoring zero entries.
func (m Marking) Equal(other Marking) bool {
	for p, c := range m {
		if c != 0 && other[p] != c {
			return false
		}
	}
	for p, c := range other {
		if c != 0 && m[p] != c {
			return false
		}
	}
	return true
}

// Total returns the total token count.
func (m Marking) Total() int {
	var n int
	for _, c := range m {
		n += c
	}
	return n
}

// Key returns a canonical string for use in visited-state sets.
func (m Marking) Key() string {
	parts := make([]string, 0, len(m))
	for p, c := range m {
		if c != 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", p.Name, c))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// System bundles a net with its initial and final markings.
type System struct {
	Net            *Net
	InitialMarking Marking
	FinalMarking   Marking
}

// Converter is implemented by model representations that can be coerced into
// a procedural model. It is the hook the router's best-effort conversion
// cascade probes for.
type Converter interface {
	AsPetriNet() (*System, error)
}
