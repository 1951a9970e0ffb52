// Package testgen builds golden cases for a tree model: one input row per
// leaf, derived from the predicates on the path to it, together with the
// prediction the tree makes for that row. Generated code is expected to
// return the same prediction for every case.
package testgen

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/model"
	"github.com/lhaig/treegen/internal/tree"
)

// Case is one input row and the prediction the tree makes for it.
type Case struct {
	// Leaf is the node the inputs were built to reach.
	Leaf int `yaml:"leaf"`
	// Inputs is keyed by field name. Absent fields are missing.
	Inputs     map[string]any `yaml:"inputs"`
	Prediction any            `yaml:"prediction"`
	Metric     float64        `yaml:"metric"`
	Path       []int          `yaml:"path,flow"`
}

// Reached reports whether the prediction path ends at the intended leaf.
func (c *Case) Reached() bool {
	return len(c.Path) > 0 && c.Path[len(c.Path)-1] == c.Leaf
}

// Suite is the set of golden cases of one model.
type Suite struct {
	Model     string `yaml:"model,omitempty"`
	Objective string `yaml:"objective"`
	Metric    string `yaml:"metric"`
	Cases     []Case `yaml:"cases"`
}

// Reached returns how many cases reach their intended leaf.
func (s *Suite) Reached() int {
	n := 0
	for i := range s.Cases {
		if s.Cases[i].Reached() {
			n++
		}
	}
	return n
}

// YAML encodes the suite.
func (s *Suite) YAML() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cases: %w", err)
	}
	return data, nil
}

// Generate produces one case per leaf of m's tree, in depth first order.
func Generate(m *model.Model) (*Suite, error) {
	suite := &Suite{
		Model:     m.Resource,
		Objective: m.Catalog.Objective().Name,
		Metric:    m.Tree.MetricName(),
	}
	seen := categories(m.Tree.Root)

	var path []*tree.Node
	var visit func(n *tree.Node) error
	visit = func(n *tree.Node) error {
		path = append(path, n)
		defer func() { path = path[:len(path)-1] }()

		if !n.IsLeaf() {
			for _, c := range n.Children {
				if err := visit(c); err != nil {
					return err
				}
			}
			return nil
		}

		c, err := leafCase(m, n.ID, PathConstraints(m.Catalog, path), seen)
		if err != nil {
			return err
		}
		suite.Cases = append(suite.Cases, *c)
		return nil
	}
	if err := visit(m.Tree.Root); err != nil {
		return nil, err
	}
	return suite, nil
}

func leafCase(m *model.Model, leaf int, constraints []*FieldConstraint, seen map[string][]any) (*Case, error) {
	row := make(map[string]any, len(constraints))
	inputs := make(map[string]any, len(constraints))
	for _, c := range constraints {
		v := c.Value(seen[c.Field.ID])
		if v == nil {
			continue
		}
		row[c.Field.ID] = v
		inputs[inputName(c.Field)] = v
	}

	p, err := m.Tree.Predict(m.Catalog, row)
	if err != nil {
		return nil, fmt.Errorf("leaf %d: %w", leaf, err)
	}
	return &Case{
		Leaf:       leaf,
		Inputs:     inputs,
		Prediction: p.Output,
		Metric:     p.Confidence,
		Path:       p.Path,
	}, nil
}

func inputName(f *fields.Field) string {
	if f.Name == "" {
		return f.ID
	}
	return f.Name
}

// categories lists, per field, the non numeric values predicates compare
// it with, in first-seen order.
func categories(root *tree.Node) map[string][]any {
	out := make(map[string][]any)
	tree.Walk(root, func(n *tree.Node) bool {
		p := n.Predicate
		if p == nil || p.Value == nil || p.Term != "" {
			return true
		}
		if _, numeric := toFloat(p.Value); numeric {
			return true
		}
		for _, v := range out[p.Field] {
			if v == p.Value {
				return true
			}
		}
		out[p.Field] = append(out[p.Field], p.Value)
		return true
	})
	return out
}
