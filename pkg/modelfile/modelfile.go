// Package modelfile loads reference models from JSON definition files.
//
// A model file carries a "type" discriminator and the matching payload:
//
//	{"type": "dfg", "edges": [{"from": "a", "to": "b", "count": 3}],
//	 "start": {"a": 2}, "end": {"b": 2}}
//
//	{"type": "tree", "tree": {"operator": "sequence",
//	 "children": [{"label": "a"}, {"label": "b"}]}}
//
//	{"type": "petri", "places": ["p1", "p2"],
//	 "transitions": [{"name": "t1", "label": "a"}],
//	 "arcs": [{"from": "p1", "to": "t1"}, {"from": "t1", "to": "p2"}],
//	 "initial": {"p1": 1}, "final": {"p2": 1}}
package modelfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/conformly/conformly/pkg/dfg"
	"github.com/conformly/conformly/pkg/errors"
	"github.com/conformly/conformly/pkg/ptree"
)

type modelSpec struct {
	Type string `json:"type"`

	// dfg
	Edges []edgeSpec     `json:"edges,omitempty"`
	Start map[string]int `json:"start,omitempty"`
	End   map[string]int `json:"end,omitempty"`

	// tree
	Tree *treeSpec `json:"tree,omitempty"`

	// petri
	Places      []string         `json:"places,omitempty"`
	Transitions []transitionSpec `json:"transitions,omitempty"`
	Arcs        []arcSpec        `json:"arcs,omitempty"`
	Initial     map[string]int   `json:"initial,omitempty"`
	Final       map[string]int   `json:"final,omitempty"`
}

type edgeSpec struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count,omitempty"`
}

type treeSpec struct {
	Operator string     `json:"operator,omitempty"`
	Label    string     `json:"label,omitempty"`
	Children []treeSpec `json:"children,omitempty"`
}

type transitionSpec struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
}

type arcSpec struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Load reads a model definition file and returns the model it describes:
// *dfg.Graph, *ptree.Node, or *petri.System.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidFormat, "reading model file %s", path)
	}

	var spec modelSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidFormat, "parsing model file %s", path)
	}

	switch spec.Type {
	case "dfg":
		return buildDFG(spec), nil
	case "tree":
		return buildTree(spec)
	case "petri":
		return buildPetri(spec)
	default:
		return nil, errors.New(errors.CodeUnsupportedModel, fmt.Sprintf("unknown model type %q in %s", spec.Type, path))
	}
}

func buildDFG(spec modelSpec) *dfg.Graph {
	g := dfg.New()
	for _, e := range spec.Edges {
		count := e.Count
		if count == 0 {
			count = 1
		}
		g.AddEdge(e.From, e.To, count)
	}
	for act, count := range spec.Start {
		g.AddStart(act, count)
	}
	for act, count := range spec.End {
		g.AddEnd(act, count)
	}
	return g
}

func buildTree(spec modelSpec) (*ptree.Node, error) {
	if spec.Tree == nil {
		return nil, errors.New(errors.CodeInvalidFormat, "tree model without a tree definition")
	}
	node, err := buildTreeNode(*spec.Tree)
	if err != nil {
		return nil, err
	}
	if err := node.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidFormat, "invalid process tree")
	}
	return node, nil
}

func buildTreeNode(spec treeSpec) (*ptree.Node, error) {
	if spec.Operator == "" {
		if spec.Label == "" {
			return ptree.Silent(), nil
		}
		return ptree.Activity(spec.Label), nil
	}

	children := make([]*ptree.Node, 0, len(spec.Children))
	for _, c := range spec.Children {
		child, err := buildTreeNode(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	switch spec.Operator {
	case "sequence":
		return ptree.Sequence(children...), nil
	case "xor":
		return ptree.Xor(children...), nil
	case "parallel":
		return ptree.Parallel(children...), nil
	case "loop":
		if len(children) == 0 {
			return nil, errors.New(errors.CodeInvalidFormat, "loop operator without children")
		}
		return ptree.Loop(children[0], children[1:]...), nil
	default:
		return nil, errors.New(errors.CodeInvalidFormat, fmt.Sprintf("unknown tree operator %q", spec.Operator))
	}
}
