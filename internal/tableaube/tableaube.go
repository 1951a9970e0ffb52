// Package tableaube generates Tableau calculated fields.
package tableaube

import (
	"github.com/lhaig/treegen/internal/codegen"
	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/ident"
	"github.com/lhaig/treegen/internal/tree"
)

var syntax = &codegen.Syntax{
	Null:        "NULL",
	True:        "TRUE",
	False:       "FALSE",
	Quote:       `"`,
	QuoteEscape: `""`,
	And:         "AND",
	Or:          "OR",
	IsNull:      "ISNULL(%s)",
	NotNull:     "NOT ISNULL(%s)",
	Operators: map[tree.Operator]string{
		tree.OpEqual:       "==",
		tree.OpNotEqualAlt: "!=",
	},
}

// Target generates a calculated field expression. Tableau has no nested
// scopes, so every clause repeats the conditions leading to it.
type Target struct{}

// New returns the Tableau target.
func New() *Target {
	return &Target{}
}

func (t *Target) Name() string                 { return "tableau" }
func (t *Target) Label() string                { return "Tableau" }
func (t *Target) Style() codegen.Style         { return codegen.StyleFlat }
func (t *Target) Syntax() *codegen.Syntax      { return syntax }
func (t *Target) Convention() ident.Convention { return ident.Bracket }

func (t *Target) Supports(optype fields.Optype) bool {
	return optype == fields.Numeric || optype == fields.Categorical
}

func (t *Target) Subject(name string, _ bool) string {
	return name
}

func (t *Target) TermCount(subject, field, term string) string {
	panic("tableaube: text fields are not supported")
}

func (t *Target) ItemCount(subject, field, item string) string {
	panic("tableaube: items fields are not supported")
}

func (t *Target) Leaf(l codegen.Leaf) string {
	if l.Attr {
		return l.Value
	}
	return l.Prediction
}

// Wrap returns the expression as is.
func (t *Target) Wrap(fn *codegen.Function) (string, error) {
	return fn.Body + "\n", nil
}
