package model

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/tree"
)

// rawHead holds the keys naming the objective and inputs. They live on the
// resource object, or at the top of a bare model document.
type rawHead struct {
	ObjectiveField  string   `yaml:"objective_field"`
	ObjectiveFields []string `yaml:"objective_fields"`
	InputFields     []string `yaml:"input_fields"`
}

func (h rawHead) objective() string {
	if h.ObjectiveField != "" {
		return h.ObjectiveField
	}
	if len(h.ObjectiveFields) > 0 {
		return h.ObjectiveFields[0]
	}
	return ""
}

type rawDocument struct {
	Resource string     `yaml:"resource"`
	Object   *rawObject `yaml:"object"`
	rawHead  `yaml:",inline"`
	rawModel `yaml:",inline"`
}

type rawObject struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Model       *rawModel `yaml:"model"`
	rawHead     `yaml:",inline"`
}

type rawModel struct {
	Root        *rawNode             `yaml:"root"`
	Fields      map[string]*rawField `yaml:"fields"`
	ModelFields map[string]*rawField `yaml:"model_fields"`
}

type rawTermAnalysis struct {
	CaseSensitive *bool   `yaml:"case_sensitive"`
	TokenMode     *string `yaml:"token_mode"`
	Language      *string `yaml:"language"`
}

type rawItemAnalysis struct {
	Separator       *string `yaml:"separator"`
	SeparatorRegexp *string `yaml:"separator_regexp"`
}

type rawSummary struct {
	TermForms map[string][]string `yaml:"term_forms"`
}

type rawField struct {
	Name         string           `yaml:"name"`
	Optype       string           `yaml:"optype"`
	ColumnNumber int              `yaml:"column_number"`
	Preferred    *bool            `yaml:"preferred"`
	TermAnalysis *rawTermAnalysis `yaml:"term_analysis"`
	ItemAnalysis *rawItemAnalysis `yaml:"item_analysis"`
	Summary      *rawSummary      `yaml:"summary"`
}

func (r *rawField) optype() fields.Optype {
	return fields.Optype(r.Optype)
}

func (r *rawField) field(id string) *fields.Field {
	f := &fields.Field{
		ID:           id,
		Name:         r.Name,
		Optype:       r.optype(),
		ColumnNumber: r.ColumnNumber,
		Preferred:    r.Preferred == nil || *r.Preferred,
	}
	if ta := r.TermAnalysis; ta != nil {
		f.TermAnalysis = &fields.TermAnalysis{
			CaseSensitive: ta.CaseSensitive,
			TokenMode:     ta.TokenMode,
			Language:      ta.Language,
		}
	}
	if ia := r.ItemAnalysis; ia != nil {
		f.ItemAnalysis = &fields.ItemAnalysis{
			Separator:       ia.Separator,
			SeparatorRegexp: ia.SeparatorRegexp,
		}
	}
	if r.Summary != nil && len(r.Summary.TermForms) > 0 {
		f.TermForms = r.Summary.TermForms
	}
	return f
}

// rawPredicate is either the literal true of the root or a field test.
type rawPredicate struct {
	always   bool
	Operator string `yaml:"operator"`
	Field    string `yaml:"field"`
	Value    any    `yaml:"value"`
	Term     string `yaml:"term"`
	Missing  bool   `yaml:"missing"`
}

// UnmarshalYAML accepts the scalar true used on the root node.
func (p *rawPredicate) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var b bool
		if err := n.Decode(&b); err != nil || !b {
			return fmt.Errorf("line %d: predicate must be true or a mapping", n.Line)
		}
		p.always = true
		return nil
	}
	type plain rawPredicate
	return n.Decode((*plain)(p))
}

type rawNode struct {
	ID         *int          `yaml:"id"`
	Output     any           `yaml:"output"`
	Confidence *float64      `yaml:"confidence"`
	Error      *float64      `yaml:"error"`
	Count      int           `yaml:"count"`
	Predicate  *rawPredicate `yaml:"predicate"`
	Children   []*rawNode    `yaml:"children"`
}

// node converts the raw node, numbering nodes in preorder when the
// document carries no ids.
func (r *rawNode) node(next *int) *tree.Node {
	n := &tree.Node{
		ID:     *next,
		Output: r.Output,
		Count:  r.Count,
	}
	if r.ID != nil {
		n.ID = *r.ID
	}
	*next++
	switch {
	case r.Confidence != nil:
		n.Confidence = *r.Confidence
	case r.Error != nil:
		n.Confidence = *r.Error
	}
	if p := r.Predicate; p != nil && !p.always {
		n.Predicate = &tree.Predicate{
			Operator: tree.Operator(p.Operator),
			Field:    p.Field,
			Value:    p.Value,
			Term:     p.Term,
			Missing:  p.Missing,
		}
	}
	for _, c := range r.Children {
		n.Children = append(n.Children, c.node(next))
	}
	return n
}
