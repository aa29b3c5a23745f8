// Package dfg implements the directly-follows frequency graph model: edge
// frequencies between activities plus start and end activity frequencies.
package dfg

import (
	"fmt"
	"sort"

	"github.com/conformly/conformly/pkg/petri"
)

// Edge is an ordered activity pair.
type Edge struct {
	From, To string
}

// Graph is a frequency graph over activities.
type Graph struct {
	Edges           map[Edge]int
	StartActivities map[string]int
	EndActivities   map[string]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		Edges:           make(map[Edge]int),
		StartActivities: make(map[string]int),
		EndActivities:   make(map[string]int),
	}
}

// AddEdge records a directly-follows observation.
func (g *Graph) AddEdge(from, to string, count int) *Graph {
	g.Edges[Edge{From: from, To: to}] += count
	return g
}

// AddStart records a start activity observation.
func (g *Graph) AddStart(activity string, count int) *Graph {
	g.StartActivities[activity] += count
	return g
}

// AddEnd records an end activity observation.
func (g *Graph) AddEnd(activity string, count int) *Graph {
	g.EndActivities[activity] += count
	return g
}

// Activities returns the sorted activity alphabet of the graph.
func (g *Graph) Activities() []string {
	set := make(map[string]struct{})
	for e := range g.Edges {
		set[e.From] = struct{}{}
		set[e.To] = struct{}{}
	}
	for a := range g.StartActivities {
		set[a] = struct{}{}
	}
	for a := range g.EndActivities {
		set[a] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Outgoing returns the sorted successors of an activity.
func (g *Graph) Outgoing(activity string) []string {
	var out []string
	for e := range g.Edges {
		if e.From == activity {
			out = append(out, e.To)
		}
	}
	sort.Strings(out)
	return out
}

// AsPetriNet converts the graph into a procedural model whose language is the
// set of walks from a start activity to an end activity. One place per
// activity; each edge becomes a transition labeled with the target activity.
func (g *Graph) AsPetriNet() (*petri.System, error) {
	if len(g.StartActivities) == 0 || len(g.EndActivities) == 0 {
		return nil, fmt.Errorf("frequency graph needs start and end activities")
	}

	net := petri.NewNet("dfg")
	source := net.AddPlace("source")
	sink := net.AddPlace("sink")

	places := make(map[string]*petri.Place)
	for _, a := range g.Activities() {
		places[a] = net.AddPlace("p_" + a)
	}

	starts := make([]string, 0, len(g.StartActivities))
	for a := range g.StartActivities {
		starts = append(starts, a)
	}
	sort.Strings(starts)
	for _, a := range starts {
		t := net.AddTransition("start_"+a, a)
		net.AddArc(source, t, 1)
		net.AddArc(t, places[a], 1)
	}

	edges := make([]Edge, 0, len(g.Edges))
	for e := range g.Edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, e := range edges {
		t := net.AddTransition(fmt.Sprintf("move_%s_%s", e.From, e.To), e.To)
		net.AddArc(places[e.From], t, 1)
		net.AddArc(t, places[e.To], 1)
	}

	ends := make([]string, 0, len(g.EndActivities))
	for a := range g.EndActivities {
		ends = append(ends, a)
	}
	sort.Strings(ends)
	for _, a := range ends {
		t := net.AddTransition("end_"+a, "")
		net.AddArc(places[a], t, 1)
		net.AddArc(t, sink, 1)
	}

	return &petri.System{
		Net:            net,
		InitialMarking: petri.NewMarking(source),
		FinalMarking:   petri.NewMarking(sink),
	}, nil
}
