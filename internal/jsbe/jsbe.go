package jsbe

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
	Null:            "null",
	True:            "true",
	False:           "false",
	Quote:           `"`,
	QuoteEscape:     `\"`,
	EscapeBackslash: true,
	And:             "&&",
	Or:              "||",
	IsNull:          "%s == null",
	NotNull:         "%s != null",
	Operators: map[tree.Operator]string{
		tree.OpEqual:       "==",
		tree.OpNotEqualAlt: "!=",
	},
	IfOpen:     "if (%s) {",
	BlockClose: "}",
	DictOpen:   "{",
	DictClose:  "}",
	KeyValue:   "{key}: {value}",
	ListOpen:   "[",
	ListClose:  "]",
}

// Target generates a JavaScript function.
type Target struct {
	store *templates.Store
}

// New returns the JavaScript target reading helper fragments from store,
// or from the embedded fragments when store is nil.
func New(store *templates.Store) *Target {
	if store == nil {
		store = templates.Default()
	}
	return &Target{store: store}
}

func (t *Target) Name() string                       { return "javascript" }
func (t *Target) Label() string                      { return "JavaScript" }
func (t *Target) Style() codegen.Style               { return codegen.StyleBlock }
func (t *Target) Syntax() *codegen.Syntax            { return syntax }
func (t *Target) Convention() ident.Convention       { return ident.CamelCase }
func (t *Target) Supports(optype fields.Optype) bool { return optype.Valid() }

// Subject reads a field from its argument or from the data object.
func (t *Target) Subject(name string, aggregate bool) string {
	if aggregate {
		return "data." + name
	}
	return name
}

func (t *Target) TermCount(subject, field, term string) string {
	return fmt.Sprintf("termMatches(%s, %s, %s)", subject, field, term)
}

func (t *Target) ItemCount(subject, field, item string) string {
	return fmt.Sprintf("itemMatches(%s, %s, %s)", subject, field, item)
}

// Leaf returns the prediction together with its metric.
func (t *Target) Leaf(l codegen.Leaf) string {
	return fmt.Sprintf("return {prediction: %s, %s: %s};", l.Prediction, l.Metric, l.Value)
}

// FunctionName returns the name of the prediction function for an
// objective field name.
func FunctionName(objective string) string {
	return "predict" + ident.UpperCamelCase(objective)
}

type generator struct {
	sb     strings.Builder
	indent int
}

func (g *generator) emit(s string) {
	g.sb.WriteString(s)
}

func (g *generator) emitLinef(format string, args ...any) {
	g.emitLine(fmt.Sprintf(format, args...))
}

func (g *generator) emitLine(s string) {
	if s == "" {
		g.sb.WriteString("\n")
	} else {
		g.sb.WriteString(g.indentStr())
		g.sb.WriteString(s)
		g.sb.WriteString("\n")
	}
}

func (g *generator) incIndent() { g.indent++ }
func (g *generator) decIndent() { g.indent-- }

func (g *generator) indentStr() string {
	return strings.Repeat("    ", g.indent)
}

func jsType(f *fields.Field) string {
	if f.Optype == fields.Numeric {
		return "number"
	}
	return "string"
}

// Wrap produces the function declaration with its doc comment, lookup
// tables and matcher helpers.
func (t *Target) Wrap(fn *codegen.Function) (string, error) {
	g := &generator{}

	g.emitLine("/**")
	g.emitLinef(" * Predictor for %s", fn.Objective.Name)
	g.emitLine(" *")
	var args []string
	if fn.Aggregate {
		g.emitLine(" * @param {object} data Input values keyed by field identifier")
		args = []string{"data"}
	} else {
		for _, p := range fn.Params {
			g.emitLinef(" * @param {%s} %s %s", jsType(p.Field), p.Name, p.Field.Name)
			args = append(args, p.Name)
		}
	}
	g.emitLinef(" * @returns {object} prediction and %s", fn.Metric)
	g.emitLine(" */")
	g.emitLinef("function %s(%s) {", FunctionName(fn.Objective.Name), strings.Join(args, ", "))
	g.incIndent()

	termAnalysis, termForms, itemAnalysis := fn.Analysis.Tables(syntax)
	if fn.UsesTerms() {
		g.emitLinef("var TERM_ANALYSIS = %s;", termAnalysis)
		g.emitLinef("var TERM_FORMS = %s;", termForms)
		helpers, err := t.store.Fragment(templates.JSTerms)
		if err != nil {
			return "", err
		}
		g.emit(helpers)
		g.emitLine("")
	}
	if fn.UsesItems() {
		g.emitLinef("var ITEM_ANALYSIS = %s;", itemAnalysis)
		helpers, err := t.store.Fragment(templates.JSItems)
		if err != nil {
			return "", err
		}
		g.emit(helpers)
		g.emitLine("")
	}

	g.decIndent()
	g.emit(fn.Body)
	g.emitLine("}")
	return g.sb.String(), nil
}
