// Package sqlbe generates MySQL stored functions.
package sqlbe

import (
	"fmt"
	"strings"

	"github.com/lhaig/treegen/internal/codegen"
	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/ident"
	"github.com/lhaig/treegen/internal/tree"
)

const (
	numericType = "NUMERIC"
	stringType  = "VARCHAR(250)"
)

var syntax = &codegen.Syntax{
	Null:            "NULL",
	True:            "TRUE",
	False:           "FALSE",
	Quote:           "'",
	QuoteEscape:     `\'`,
	EscapeBackslash: true,
	And:             "AND",
	Or:              "OR",
	IsNull:          "%s IS NULL",
	NotNull:         "%s IS NOT NULL",
	Operators: map[tree.Operator]string{
		tree.OpNotEqualAlt: "!=",
	},
}

// Target generates a MySQL function returning the prediction, or its
// metric when the emission asks for the attribute.
type Target struct{}

// New returns the MySQL target.
func New() *Target {
	return &Target{}
}

func (t *Target) Name() string                 { return "mysql" }
func (t *Target) Label() string                { return "MySQL" }
func (t *Target) Style() codegen.Style         { return codegen.StyleTernary }
func (t *Target) Syntax() *codegen.Syntax      { return syntax }
func (t *Target) Convention() ident.Convention { return ident.Backtick }

// Supports accepts only fields compared as whole values.
func (t *Target) Supports(optype fields.Optype) bool {
	return optype == fields.Numeric || optype == fields.Categorical
}

// Subject returns the quoted parameter name; functions never take a
// single aggregate argument.
func (t *Target) Subject(name string, _ bool) string {
	return name
}

func (t *Target) TermCount(subject, field, term string) string {
	panic("sqlbe: text fields are not supported")
}

func (t *Target) ItemCount(subject, field, item string) string {
	panic("sqlbe: items fields are not supported")
}

func (t *Target) Leaf(l codegen.Leaf) string {
	if l.Attr {
		return l.Value
	}
	return l.Prediction
}

// FunctionName returns the stored function name for an objective field.
func FunctionName(objective string, attr bool) string {
	name := "predict_" + ident.Snake(objective)
	if attr {
		name += "_confidence"
	}
	return name
}

func sqlType(optype fields.Optype) string {
	if optype == fields.Numeric {
		return numericType
	}
	return stringType
}

// Wrap produces the CREATE FUNCTION statement.
func (t *Target) Wrap(fn *codegen.Function) (string, error) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Name + " " + sqlType(p.Field.Optype)
	}
	returns := sqlType(fn.Objective.Optype)
	if fn.Attr {
		returns = numericType
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE FUNCTION %s (%s)\n", FunctionName(fn.Objective.Name, fn.Attr), strings.Join(params, ", "))
	fmt.Fprintf(&sb, "RETURNS %s DETERMINISTIC\n", returns)
	fmt.Fprintf(&sb, "RETURN %s;\n", fn.Body)
	return sb.String(), nil
}
