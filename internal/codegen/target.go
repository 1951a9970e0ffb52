// Package codegen turns a decision tree into the body of a prediction
// function. A single recursive walk serves every output language; each
// language plugs in through the Target interface.
package codegen

import (
	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/ident"
	"github.com/lhaig/treegen/internal/tree"
)

// Style selects how the walk lays out nested decisions.
type Style int

const (
	// StyleBlock renders nested if blocks with early returns.
	StyleBlock Style = iota
	// StyleTernary renders a single nested IF(cond, then, else) expression.
	StyleTernary
	// StyleFlat renders one IF/ELSEIF clause per outcome with every
	// ancestor condition spelled out.
	StyleFlat
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case StyleBlock:
		return "block"
	case StyleTernary:
		return "ternary"
	case StyleFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Syntax holds the lexical details of a target language.
type Syntax struct {
	Null  string
	True  string
	False string

	// Quote delimits string literals. QuoteEscape replaces a Quote inside
	// a literal; backslashes are doubled when EscapeBackslash is set.
	Quote           string
	QuoteEscape     string
	EscapeBackslash bool

	And string
	Or  string

	// IsNull and NotNull are fmt templates taking the subject.
	IsNull  string
	NotNull string

	// Operators overrides the spelling of comparison operators. Operators
	// not listed are written as they appear in the tree.
	Operators map[tree.Operator]string

	// Block style only. IfOpen is a fmt template taking the condition;
	// BlockClose may be empty for indentation scoped languages.
	IfOpen     string
	BlockClose string

	// Dictionary literals used by the term and item tables. KeyValue is
	// a template with {key} and {value} placeholders.
	DictOpen  string
	DictClose string
	KeyValue  string
	ListOpen  string
	ListClose string
}

// Op returns the target spelling of op.
func (s *Syntax) Op(op tree.Operator) string {
	if spelled, ok := s.Operators[op]; ok {
		return spelled
	}
	return string(op)
}

// Leaf is what a terminal node yields, already formatted for the target.
type Leaf struct {
	Prediction string
	Metric     string
	Value      string
	// Attr asks for the metric value alone.
	Attr bool
}

// Target is an output language.
type Target interface {
	// Name is the registry key, Label the name shown to users.
	Name() string
	Label() string
	Style() Style
	Syntax() *Syntax
	Convention() ident.Convention
	// Supports reports whether predicates on fields of optype can be
	// expressed in the target.
	Supports(optype fields.Optype) bool
	// Subject returns the expression reading a field, given its
	// identifier. aggregate is true when inputs arrive as one object.
	Subject(name string, aggregate bool) string
	// TermCount and ItemCount return expressions counting how often
	// a quoted term or item occurs in the subject of the quoted field.
	TermCount(subject, field, term string) string
	ItemCount(subject, field, item string) string
	// Leaf renders a terminal outcome. Block targets return a statement,
	// the others an expression.
	Leaf(l Leaf) string
	// Wrap turns an emitted body into the final artifact.
	Wrap(fn *Function) (string, error)
}

// Param is one argument of the generated function.
type Param struct {
	Field *fields.Field
	Name  string
}

// Function carries everything a target needs to produce its artifact.
type Function struct {
	Objective *fields.Field
	Metric    string
	Params    []Param
	// Aggregate is true when the inputs are read from a single data
	// argument instead of one argument per field.
	Aggregate bool
	Attr      bool
	Body      string
	Analysis  *Analysis
}

// UsesTerms reports whether the body calls the term matcher.
func (f *Function) UsesTerms() bool {
	return f.Analysis != nil && len(f.Analysis.TermPairs) > 0
}

// UsesItems reports whether the body calls the item matcher.
func (f *Function) UsesItems() bool {
	return f.Analysis != nil && len(f.Analysis.ItemPairs) > 0
}
