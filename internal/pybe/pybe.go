// Package pybe generates Python functions.
package pybe

import (
	"fmt"
	"strings"

	"github.com/lhaig/treegen/internal/codegen"
	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/ident"
	"github.com/lhaig/treegen/internal/templates"
	"github.com/lhaig/treegen/internal/tree"
)

var syntax = &codegen.Syntax{
	Null:            "None",
	True:            "True",
	False:           "False",
	Quote:           `"`,
	QuoteEscape:     `\"`,
	EscapeBackslash: true,
	And:             "and",
	Or:              "or",
	IsNull:          "%s is None",
	NotNull:         "%s is not None",
	Operators: map[tree.Operator]string{
		tree.OpEqual:       "==",
		tree.OpNotEqualAlt: "!=",
	},
	IfOpen:    "if %s:",
	DictOpen:  "{",
	DictClose: "}",
	KeyValue:  "{key}: {value}",
	ListOpen:  "[",
	ListClose: "]",
}

// Target generates a Python function returning a dict with the
// prediction and its metric.
type Target struct {
	store *templates.Store
}

// New returns the Python target. A nil store uses the embedded fragments.
func New(store *templates.Store) *Target {
	if store == nil {
		store = templates.Default()
	}
	return &Target{store: store}
}

func (t *Target) Name() string                       { return "python" }
func (t *Target) Label() string                      { return "Python" }
func (t *Target) Style() codegen.Style               { return codegen.StyleBlock }
func (t *Target) Syntax() *codegen.Syntax            { return syntax }
func (t *Target) Convention() ident.Convention       { return ident.Snake }
func (t *Target) Supports(optype fields.Optype) bool { return optype.Valid() }

func (t *Target) Subject(name string, aggregate bool) string {
	if aggregate {
		return `data.get("` + name + `")`
	}
	return name
}

func (t *Target) TermCount(subject, field, term string) string {
	return fmt.Sprintf("term_matches(%s, %s, %s)", subject, field, term)
}

func (t *Target) ItemCount(subject, field, item string) string {
	return fmt.Sprintf("item_matches(%s, %s, %s)", subject, field, item)
}

func (t *Target) Leaf(l codegen.Leaf) string {
	return fmt.Sprintf(`return {"prediction": %s, "%s": %s}`, l.Prediction, l.Metric, l.Value)
}

// FunctionName returns the Python function name for an objective field.
func FunctionName(objective string) string {
	return "predict_" + ident.Snake(objective)
}

// Wrap produces the function definition, helpers included.
func (t *Target) Wrap(fn *codegen.Function) (string, error) {
	var sb strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteString("\n")
	}

	var args, docs []string
	if fn.Aggregate {
		args = []string{"data"}
		docs = []string{"data: dict of input values keyed by field identifier"}
	} else {
		for _, p := range fn.Params {
			args = append(args, p.Name+"=None")
			docs = append(docs, p.Name+": "+p.Field.Name)
		}
	}
	line("def %s(%s):", FunctionName(fn.Objective.Name), strings.Join(args, ", "))
	line(`    """ Predictor for %s`, fn.Objective.Name)
	line("")
	for _, d := range docs {
		line("    %s", d)
	}
	line(`    """`)

	if fn.UsesTerms() || fn.UsesItems() {
		line("    import re")
		line("")
	}
	termAnalysis, termForms, itemAnalysis := fn.Analysis.Tables(syntax)
	if fn.UsesTerms() {
		line("    term_analysis = %s", termAnalysis)
		line("    term_forms = %s", termForms)
		helpers, err := t.store.Fragment(templates.PyTerms)
		if err != nil {
			return "", err
		}
		sb.WriteString(helpers)
		sb.WriteString("\n")
	}
	if fn.UsesItems() {
		line("    item_analysis = %s", itemAnalysis)
		helpers, err := t.store.Fragment(templates.PyItems)
		if err != nil {
			return "", err
		}
		sb.WriteString(helpers)
		sb.WriteString("\n")
	}

	sb.WriteString(fn.Body)
	return sb.String(), nil
}
