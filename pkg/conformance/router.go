package conformance

import (
	"github.com/conformly/conformly/pkg/dfg"
	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/petri"
	"github.com/conformly/conformly/pkg/ptree"
)

// modelKind is the resolved shape of a supplied model.
type modelKind uint8

const (
	kindProcedural modelKind = iota
	kindFrequencyGraph
	kindHierarchical
)

// routedModel is the tagged union the router resolves every model argument
// into, exactly once, before any strategy runs. Exactly one of the payload
// fields matching kind is set.
type routedModel struct {
	kind  modelKind
	sys   *petri.System
	graph *dfg.Graph
	tree  *ptree.Node
}

// route classifies the model argument by structural shape. Unrecognized
// values go through an ordered list of conversion attempts towards a
// procedural model; if all fail, the model is unsupported.
func route(m any) (routedModel, error) {
	switch v := m.(type) {
	case *petri.System:
		if v == nil || v.Net == nil {
			return routedModel{}, errors.UnsupportedModel(m)
		}
		return routedModel{kind: kindProcedural, sys: v}, nil
	case *dfg.Graph:
		if v == nil {
			return routedModel{}, errors.UnsupportedModel(m)
		}
		return routedModel{kind: kindFrequencyGraph, graph: v}, nil
	case *ptree.Node:
		if v == nil {
			return routedModel{}, errors.UnsupportedModel(m)
		}
		return routedModel{kind: kindHierarchical, tree: v}, nil
	}

	// Best-effort conversion for foreign model representations.
	if conv, ok := m.(petri.Converter); ok {
		sys, err := conv.AsPetriNet()
		if err != nil {
			return routedModel{}, errors.Wrap(err, errors.CodeModelConversion, "model conversion failed")
		}
		return routedModel{kind: kindProcedural, sys: sys}, nil
	}
	return routedModel{}, errors.UnsupportedModel(m)
}

// asProcedural coerces the routed model to a procedural system, converting
// hierarchical and frequency-graph models as needed.
func (r routedModel) asProcedural() (*petri.System, error) {
	switch r.kind {
	case kindProcedural:
		return r.sys, nil
	case kindHierarchical:
		sys, err := r.tree.AsPetriNet()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeModelConversion, "process tree conversion failed")
		}
		return sys, nil
	case kindFrequencyGraph:
		sys, err := r.graph.AsPetriNet()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeModelConversion, "frequency graph conversion failed")
		}
		return sys, nil
	}
	return nil, errors.New(errors.CodeUnsupportedModel, "unclassified model")
}

// parallelAllowed reports whether the parallel alignment variant exists for
// this model shape. Frequency-graph alignment has no parallel variant.
func (r routedModel) parallelAllowed() bool {
	return r.kind != kindFrequencyGraph
}

// AsProcedural classifies m and converts it to a Petri net system.
func AsProcedural(m any) (*petri.System, error) {
	r, err := route(m)
	if err != nil {
		return nil, err
	}
	return r.asProcedural()
}
