// Package rbe generates R functions.
package rbe

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
	Null:            "NA",
	True:            "TRUE",
	False:           "FALSE",
	Quote:           `"`,
	QuoteEscape:     `\"`,
	EscapeBackslash: true,
	And:             "&&",
	Or:              "||",
	IsNull:          "is.na(%s)",
	NotNull:         "!is.na(%s)",
	Operators: map[tree.Operator]string{
		tree.OpEqual:       "==",
		tree.OpNotEqualAlt: "!=",
	},
	IfOpen:     "if (%s) {",
	BlockClose: "}",
	DictOpen:   "list(",
	DictClose:  ")",
	KeyValue:   "{key}={value}",
	ListOpen:   "list(",
	ListClose:  ")",
}

// Target generates an R function returning a list with the prediction
// and its metric.
type Target struct {
	store *templates.Store
}

// New returns the R target. A nil store uses the embedded fragments.
func New(store *templates.Store) *Target {
	if store == nil {
		store = templates.Default()
	}
	return &Target{store: store}
}

func (t *Target) Name() string                       { return "r" }
func (t *Target) Label() string                      { return "R" }
func (t *Target) Style() codegen.Style               { return codegen.StyleBlock }
func (t *Target) Syntax() *codegen.Syntax            { return syntax }
func (t *Target) Convention() ident.Convention       { return ident.Dotted }
func (t *Target) Supports(optype fields.Optype) bool { return optype.Valid() }

func (t *Target) Subject(name string, aggregate bool) string {
	if aggregate {
		return `data[["` + name + `"]]`
	}
	return name
}

func (t *Target) TermCount(subject, field, term string) string {
	return fmt.Sprintf("termMatches(%s, %s, %s)", subject, field, term)
}

func (t *Target) ItemCount(subject, field, item string) string {
	return fmt.Sprintf("itemMatches(%s, %s, %s)", subject, field, item)
}

func (t *Target) Leaf(l codegen.Leaf) string {
	return fmt.Sprintf("return(list(prediction=%s, %s=%s))", l.Prediction, l.Metric, l.Value)
}

// FunctionName returns the R function name for an objective field.
func FunctionName(objective string) string {
	return "predict" + ident.UpperCamelCase(objective)
}

// Wrap produces the function assignment, helpers included.
func (t *Target) Wrap(fn *codegen.Function) (string, error) {
	var sb strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteString("\n")
	}

	line("# Predictor for %s", fn.Objective.Name)
	line("#")
	var args []string
	if fn.Aggregate {
		line("# data: named list of input values, NA or absent when missing")
		args = []string{"data"}
	} else {
		for _, p := range fn.Params {
			line("# %s: %s", p.Name, p.Field.Name)
			args = append(args, p.Name+"=NA")
		}
	}
	line("%s <- function(%s) {", FunctionName(fn.Objective.Name), strings.Join(args, ", "))
	if fn.Aggregate && len(fn.Params) > 0 {
		// data[["x"]] is NULL for an absent key and is.na(NULL) has length zero.
		keys := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			keys[i] = syntax.Quoted(p.Name)
		}
		line("    for (key in c(%s)) {", strings.Join(keys, ", "))
		line("        if (is.null(data[[key]])) data[[key]] <- NA")
		line("    }")
	}

	termAnalysis, termForms, itemAnalysis := fn.Analysis.Tables(syntax)
	if fn.UsesTerms() {
		line("    TERM_ANALYSIS <- %s", termAnalysis)
		line("    TERM_FORMS <- %s", termForms)
		helpers, err := t.store.Fragment(templates.RTerms)
		if err != nil {
			return "", err
		}
		sb.WriteString(helpers)
		sb.WriteString("\n")
	}
	if fn.UsesItems() {
		line("    ITEM_ANALYSIS <- %s", itemAnalysis)
		helpers, err := t.store.Fragment(templates.RItems)
		if err != nil {
			return "", err
		}
		sb.WriteString(helpers)
		sb.WriteString("\n")
	}

	sb.WriteString(fn.Body)
	line("}")
	return sb.String(), nil
}
