// Package ptree implements the hierarchical block-structured process model:
// a tree whose leaves are activity labels (or silent) and whose internal
// nodes are control operators.
package ptree

import (
	"fmt"
	"strings"
)

// Operator is a control operator of an internal tree node.
type Operator uint8

const (
	// OperatorNone marks a leaf node.
	OperatorNone Operator = iota
	// OperatorSequence executes children left to right.
	OperatorSequence
	// OperatorXor executes exactly one child.
	OperatorXor
	// OperatorParallel interleaves all children.
	OperatorParallel
	// OperatorLoop executes the first child, then zero or more rounds of a
	// redo child followed by the first child again.
	OperatorLoop
)

// String returns the operator symbol.
func (o Operator) String() string {
	switch o {
	case OperatorSequence:
		return "->"
	case OperatorXor:
		return "X"
	case OperatorParallel:
		return "+"
	case OperatorLoop:
		return "*"
	default:
		return "leaf"
	}
}

// Node is a process tree node. Leaves carry an activity label; an empty label
// on a leaf marks a silent step. Child order is significant for sequence and
// loop operators.
type Node struct {
	Operator Operator
	Label    string
	Children []*Node
}

// Activity creates an activity leaf.
func Activity(label string) *Node {
	return &Node{Label: label}
}

// Silent creates a silent leaf.
func Silent() *Node {
	return &Node{}
}

// Sequence creates a sequence node.
func Sequence(children ...*Node) *Node {
	return &Node{Operator: OperatorSequence, Children: children}
}

// Xor creates an exclusive choice node.
func Xor(children ...*Node) *Node {
	return &Node{Operator: OperatorXor, Children: children}
}

// Parallel creates a parallel node.
func Parallel(children ...*Node) *Node {
	return &Node{Operator: OperatorParallel, Children: children}
}

// Loop creates a loop node: do is the body, redos are the redo alternatives.
func Loop(do *Node, redos ...*Node) *Node {
	return &Node{Operator: OperatorLoop, Children: append([]*Node{do}, redos...)}
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool { return n.Operator == OperatorNone }

// IsSilent reports whether the node is a silent leaf.
func (n *Node) IsSilent() bool { return n.IsLeaf() && n.Label == "" }

// Validate checks structural well-formedness.
func (n *Node) Validate() error {
	if n == nil {
		return fmt.Errorf("nil tree node")
	}
	if n.IsLeaf() {
		if len(n.Children) > 0 {
			return fmt.Errorf("leaf %q has children", n.Label)
		}
		return nil
	}
	if len(n.Children) == 0 {
		return fmt.Errorf("operator %s has no children", n.Operator)
	}
	if n.Operator == OperatorLoop && len(n.Children) < 2 {
		return fmt.Errorf("loop needs a do child and at least one redo child")
	}
	for _, c := range n.Children {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// VisibleLabels returns the set of activity labels in the tree.
func (n *Node) VisibleLabels() map[string]struct{} {
	labels := make(map[string]struct{})
	n.walk(func(node *Node) {
		if node.IsLeaf() && !node.IsSilent() {
			labels[node.Label] = struct{}{}
		}
	})
	return labels
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// String renders the tree in operator notation.
func (n *Node) String() string {
	if n.IsLeaf() {
		if n.IsSilent() {
			return "tau"
		}
		return fmt.Sprintf("'%s'", n.Label)
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s(%s)", n.Operator, strings.Join(parts, ", "))
}
