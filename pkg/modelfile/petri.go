package modelfile

import (
	"fmt"

	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/petri"
)

func buildPetri(spec modelSpec) (*petri.System, error) {
	net := petri.NewNet("model")

	places := make(map[string]*petri.Place, len(spec.Places))
	for _, name := range spec.Places {
		places[name] = net.AddPlace(name)
	}

	transitions := make(map[string]*petri.Transition, len(spec.Transitions))
	for _, t := range spec.Transitions {
		transitions[t.Name] = net.AddTransition(t.Name, t.Label)
	}

	for _, arc := range spec.Arcs {
		var from, to any
		if p, ok := places[arc.From]; ok {
			from = p
		} else if t, ok := transitions[arc.From]; ok {
			from = t
		} else {
			return nil, errors.New(errors.CodeInvalidFormat, fmt.Sprintf("arc references unknown node %q", arc.From))
		}
		if p, ok := places[arc.To]; ok {
			to = p
		} else if t, ok := transitions[arc.To]; ok {
			to = t
		} else {
			return nil, errors.New(errors.CodeInvalidFormat, fmt.Sprintf("arc references unknown node %q", arc.To))
		}
		if err := net.AddArc(from, to, 1); err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidFormat, "invalid arc")
		}
	}

	initial, err := buildMarking(spec.Initial, places)
	if err != nil {
		return nil, err
	}
	final, err := buildMarking(spec.Final, places)
	if err != nil {
		return nil, err
	}

	return &petri.System{Net: net, InitialMarking: initial, FinalMarking: final}, nil
}

func buildMarking(tokens map[string]int, places map[string]*petri.Place) (petri.Marking, error) {
	m := petri.Marking{}
	for name, count := range tokens {
		p, ok := places[name]
		if !ok {
			return nil, errors.New(errors.CodeInvalidMarking, fmt.Sprintf("marking references unknown place %q", name))
		}
		m[p] = count
	}
	return m, nil
}
