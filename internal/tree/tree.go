// Package tree models an already trained decision tree as plain Go values.
package tree

import (
	"errors"
	"fmt"
)

// ErrNodeNotFound is returned when a node id is not part of the tree.
var ErrNodeNotFound = errors.New("node not found")

// Operator is a predicate comparison operator.
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpNotEqualAlt  Operator = "/="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
)

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpNotEqualAlt, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	default:
		return false
	}
}

// Canonical folds alias spellings onto the operator they stand for.
func (op Operator) Canonical() Operator {
	if op == OpNotEqualAlt {
		return OpNotEqual
	}
	return op
}

// Predicate is the test on the edge from a split to one of its children.
// A nil Value marks the explicit "field is missing" (=) or
// "field is not missing" (!=) edge.
type Predicate struct {
	Operator Operator
	Field    string
	Value    any
	Term     string
	Missing  bool
}

// IsMissingTest reports whether the predicate only tests for presence.
func (p *Predicate) IsMissingTest() bool {
	return p.Value == nil
}

// Node is one node of the tree. A node without children is a leaf.
type Node struct {
	ID         int
	Output     any
	Confidence float64
	Count      int
	// Predicate is nil only for the root.
	Predicate *Predicate
	Children  []*Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree is a parsed model tree.
type Tree struct {
	Root *Node
	// Regression is true when the objective is numeric, in which case
	// Confidence carries the node error.
	Regression bool
}

// MetricName is the label of the per-node statistic.
func (t *Tree) MetricName() string {
	if t.Regression {
		return "error"
	}
	return "confidence"
}

// Walk visits every node depth first in child order. Returning false from fn
// stops the descent into that node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Count returns the number of nodes under and including n.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node) bool {
		total++
		return true
	})
	return total
}

// Find returns the node with the given id.
func Find(root *Node, id int) (*Node, error) {
	var found *Node
	Walk(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return found, nil
}

// Validate checks the structural invariants the code generators rely on.
func (t *Tree) Validate() error {
	if t.Root == nil {
		return errors.New("tree has no root")
	}
	if t.Root.Predicate != nil {
		return errors.New("root node must not carry a predicate")
	}
	seen := make(map[*Node]bool)
	var err error
	Walk(t.Root, func(n *Node) bool {
		if err != nil {
			return false
		}
		if seen[n] {
			err = fmt.Errorf("node %d is reachable from more than one parent", n.ID)
			return false
		}
		seen[n] = true
		for _, c := range n.Children {
			if c == nil {
				err = fmt.Errorf("node %d has a nil child", n.ID)
				return false
			}
			if c.Predicate == nil {
				err = fmt.Errorf("node %d has no predicate", c.ID)
				return false
			}
			if !c.Predicate.Operator.Valid() {
				err = fmt.Errorf("node %d has unknown operator %q", c.ID, c.Predicate.Operator)
				return false
			}
		}
		return true
	})
	return err
}
