package codegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lhaig/treegen/internal/diagnostic"
	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/ident"
	"github.com/lhaig/treegen/internal/tree"
)

// DefaultMaxArgs is the largest number of inputs passed as separate
// arguments before block targets switch to a single data argument.
const DefaultMaxArgs = 10

// ErrUnsupportedOptype is matched by errors raised when a predicate tests a
// field the target cannot express.
var ErrUnsupportedOptype = errors.New("unsupported field optype")

// UnsupportedOptypeError names the target and field that could not be
// represented.
type UnsupportedOptypeError struct {
	Target string
	Field  string
	Optype fields.Optype
}

func (e *UnsupportedOptypeError) Error() string {
	return fmt.Sprintf("Failed to represent this model in %s syntax. "+
		"Currently only models with categorical and numeric fields can be generated.", e.Target)
}

// Is makes errors.Is match ErrUnsupportedOptype.
func (e *UnsupportedOptypeError) Is(target error) bool {
	return target == ErrUnsupportedOptype
}

// Options tune a single emission.
type Options struct {
	// IDs restricts the walk to a path of node ids. Nil emits the whole
	// tree.
	IDs tree.IDSet
	// Subtree keeps every child of the last node in IDs.
	Subtree bool
	// Attr makes leaves yield the metric instead of the prediction, for
	// targets that cannot return both.
	Attr bool
	// MaxArgs overrides DefaultMaxArgs when positive.
	MaxArgs int
	// InputMap forces the single data argument.
	InputMap bool
}

// Result is the outcome of an emission.
type Result struct {
	Code        string
	Function    *Function
	Diagnostics *diagnostic.Diagnostics
	// Nodes is the number of tree nodes visited.
	Nodes int
}

// Emitter generates code for one target from trees over one catalog.
// It holds no per-emission state and may be used concurrently.
type Emitter struct {
	target  Target
	catalog *fields.Catalog
	opts    Options
}

// New returns an emitter.
func New(target Target, catalog *fields.Catalog, opts Options) *Emitter {
	if opts.MaxArgs <= 0 {
		opts.MaxArgs = DefaultMaxArgs
	}
	return &Emitter{target: target, catalog: catalog, opts: opts}
}

// Target returns the emitter's target.
func (e *Emitter) Target() Target {
	return e.target
}

// emission is the state of one Emit call.
type emission struct {
	*Emitter
	syn       *Syntax
	namer     *ident.Namer
	objective *fields.Field
	metric    string
	aggregate bool

	sb      strings.Builder
	clauses []clause
	terms   pairSet
	items   pairSet
	diags   *diagnostic.Diagnostics
	nodes   int
}

// clause is one IF/ELSEIF arm of a flat rendering.
type clause struct {
	conds []string
	value string
}

// Emit generates the artifact for t.
func (e *Emitter) Emit(t *tree.Tree) (*Result, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tree: %w", err)
	}

	s := &emission{
		Emitter:   e,
		syn:       e.target.Syntax(),
		namer:     ident.NewNamer(e.target.Convention()),
		objective: e.catalog.Objective(),
		metric:    t.MetricName(),
		diags:     diagnostic.New(),
	}

	params, err := s.params(t)
	if err != nil {
		return nil, err
	}
	s.aggregate = e.target.Style() == StyleBlock && (e.opts.InputMap || len(params) > e.opts.MaxArgs)

	var body string
	switch e.target.Style() {
	case StyleBlock:
		if err := s.block(t.Root, 1, nil); err != nil {
			return nil, err
		}
		body = s.sb.String()
	case StyleTernary:
		body, err = s.ternary(t.Root, 1, nil)
		if err != nil {
			return nil, err
		}
	case StyleFlat:
		if err := s.flat(t.Root, nil, nil); err != nil {
			return nil, err
		}
		body = s.renderClauses()
	default:
		return nil, fmt.Errorf("target %s has unknown style %s", e.target.Name(), e.target.Style())
	}

	fn := &Function{
		Objective: s.objective,
		Metric:    s.metric,
		Params:    params,
		Aggregate: s.aggregate,
		Attr:      e.opts.Attr,
		Body:      body,
		Analysis:  analyze(e.catalog, s.terms.order, s.items.order, s.diags),
	}
	code, err := e.target.Wrap(fn)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap %s function: %w", e.target.Name(), err)
	}
	return &Result{Code: code, Function: fn, Diagnostics: s.diags, Nodes: s.nodes}, nil
}

// params names the inputs plus any field the tree tests that is not
// declared as an input, in column order.
func (s *emission) params(t *tree.Tree) ([]Param, error) {
	wanted := make(map[string]bool)
	for _, f := range s.catalog.Inputs() {
		wanted[f.ID] = true
	}
	var unknown error
	tree.Walk(t.Root, func(n *tree.Node) bool {
		if n.Predicate != nil {
			if _, ok := s.catalog.Get(n.Predicate.Field); !ok && unknown == nil {
				unknown = fmt.Errorf("node %d tests unknown field %q", n.ID, n.Predicate.Field)
			}
			wanted[n.Predicate.Field] = true
		}
		return true
	})
	if unknown != nil {
		return nil, unknown
	}

	var list []*fields.Field
	for _, f := range s.catalog.All() {
		if wanted[f.ID] && f.ID != s.catalog.ObjectiveID() {
			list = append(list, f)
		}
	}
	if err := s.namer.NameAll(list); err != nil {
		return nil, err
	}
	params := make([]Param, len(list))
	for i, f := range list {
		name, _ := s.namer.Name(f)
		params[i] = Param{Field: f, Name: name}
	}
	return params, nil
}

func (s *emission) subject(f *fields.Field) (string, error) {
	name, err := s.namer.Name(f)
	if err != nil {
		return "", err
	}
	return s.target.Subject(name, s.aggregate), nil
}

func (s *emission) leaf(n *tree.Node) string {
	return s.target.Leaf(Leaf{
		Prediction: FormatValue(n.Output, s.objective.Optype, s.syn),
		Metric:     s.metric,
		Value:      FormatValue(n.Confidence, fields.Numeric, s.syn),
		Attr:       s.opts.Attr,
	})
}

func (s *emission) nullTest(template string, f *fields.Field) (string, error) {
	subject, err := s.subject(f)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(template, subject), nil
}

// condition renders the test of a predicate without any presence prefix.
func (s *emission) condition(p *tree.Predicate) (string, error) {
	f, ok := s.catalog.Get(p.Field)
	if !ok {
		return "", fmt.Errorf("unknown field %q", p.Field)
	}
	if !s.target.Supports(f.Optype) {
		return "", &UnsupportedOptypeError{Target: s.target.Label(), Field: f.Name, Optype: f.Optype}
	}
	if p.IsMissingTest() {
		if p.Operator.Canonical() == tree.OpEqual {
			return s.nullTest(s.syn.IsNull, f)
		}
		return s.nullTest(s.syn.NotNull, f)
	}

	lhs, err := s.subject(f)
	if err != nil {
		return "", err
	}
	switch f.Optype {
	case fields.Text:
		s.terms.add(Pair{Field: f.ID, Value: p.Term})
		lhs = s.target.TermCount(lhs, s.syn.Quoted(f.Name), s.syn.Quoted(p.Term))
	case fields.Items:
		s.items.add(Pair{Field: f.ID, Value: p.Term})
		lhs = s.target.ItemCount(lhs, s.syn.Quoted(f.Name), s.syn.Quoted(p.Term))
	}
	return lhs + " " + s.syn.Op(p.Operator) + " " + FormatValue(p.Value, f.Optype, s.syn), nil
}

// branch renders the full condition of a child, presence prefix included.
func (s *emission) branch(child *tree.Node, policy missingPolicy, cmv *FieldSet) (string, error) {
	cond, err := s.condition(child.Predicate)
	if err != nil {
		return "", err
	}
	f, _ := s.catalog.Get(child.Predicate.Field)
	switch policy.prefix(child, f, cmv) {
	case prefixMissing:
		test, err := s.nullTest(s.syn.IsNull, f)
		if err != nil {
			return "", err
		}
		return "(" + test + " " + s.syn.Or + " " + cond + ")", nil
	case prefixPresent:
		test, err := s.nullTest(s.syn.NotNull, f)
		if err != nil {
			return "", err
		}
		return "(" + test + " " + s.syn.And + " " + cond + ")", nil
	}
	return cond, nil
}

// visible returns the children the walk descends into.
func (s *emission) visible(n *tree.Node) []*tree.Node {
	s.nodes++
	return tree.Filter(n.Children, s.opts.IDs, s.opts.Subtree)
}

func (s *emission) line(depth int, text string) {
	s.sb.WriteString(strings.Repeat("    ", depth))
	s.sb.WriteString(text)
	s.sb.WriteString("\n")
}

func (s *emission) closeBlock(depth int) {
	if s.syn.BlockClose != "" {
		s.line(depth, s.syn.BlockClose)
	}
}

// block renders nested if statements. A split that no branch matches falls
// through to a return of its own output.
func (s *emission) block(n *tree.Node, depth int, cmv *FieldSet) error {
	children := s.visible(n)
	if len(children) == 0 {
		s.line(depth, s.leaf(n))
		return nil
	}
	policy, err := resolveMissing(children, s.catalog, cmv)
	if err != nil {
		return err
	}
	if policy.guard {
		test, err := s.nullTest(s.syn.IsNull, policy.field)
		if err != nil {
			return err
		}
		s.line(depth, fmt.Sprintf(s.syn.IfOpen, test))
		s.line(depth+1, s.leaf(n))
		s.closeBlock(depth)
	}
	for _, c := range children {
		cond, err := s.branch(c, policy, cmv)
		if err != nil {
			return err
		}
		s.line(depth, fmt.Sprintf(s.syn.IfOpen, cond))
		if err := s.block(c, depth+1, policy.childSet(c, cmv)); err != nil {
			return err
		}
		s.closeBlock(depth)
	}
	s.line(depth, s.leaf(n))
	return nil
}

func ifExpr(cond, then, otherwise string, depth int) string {
	indent := strings.Repeat("    ", depth+1)
	return "IF(" + cond + ",\n" + indent + then + ",\n" + indent + otherwise + ")"
}

// ternary renders one nested IF expression, built from the last branch
// back to the first so the node's own output closes the chain.
func (s *emission) ternary(n *tree.Node, depth int, cmv *FieldSet) (string, error) {
	children := s.visible(n)
	if len(children) == 0 {
		return s.leaf(n), nil
	}
	policy, err := resolveMissing(children, s.catalog, cmv)
	if err != nil {
		return "", err
	}
	var guard string
	if policy.guard {
		if guard, err = s.nullTest(s.syn.IsNull, policy.field); err != nil {
			return "", err
		}
	}
	conds := make([]string, len(children))
	subs := make([]string, len(children))
	for i, c := range children {
		if conds[i], err = s.branch(c, policy, cmv); err != nil {
			return "", err
		}
		if subs[i], err = s.ternary(c, depth+1, policy.childSet(c, cmv)); err != nil {
			return "", err
		}
	}

	expr := s.leaf(n)
	for i := len(children) - 1; i >= 0; i-- {
		expr = ifExpr(conds[i], subs[i], expr, depth)
	}
	if policy.guard {
		expr = ifExpr(guard, s.leaf(n), expr, depth)
	}
	return expr, nil
}

// flat collects one clause per outcome, each carrying a copy of the
// conditions of its ancestors.
func (s *emission) flat(n *tree.Node, conds []string, cmv *FieldSet) error {
	children := s.visible(n)
	if len(children) == 0 {
		s.clauses = append(s.clauses, clause{conds: conds, value: s.leaf(n)})
		return nil
	}
	policy, err := resolveMissing(children, s.catalog, cmv)
	if err != nil {
		return err
	}
	if policy.guard {
		test, err := s.nullTest(s.syn.IsNull, policy.field)
		if err != nil {
			return err
		}
		s.clauses = append(s.clauses, clause{conds: extend(conds, test), value: s.leaf(n)})
	}
	for _, c := range children {
		cond, err := s.branch(c, policy, cmv)
		if err != nil {
			return err
		}
		if err := s.flat(c, extend(conds, cond), policy.childSet(c, cmv)); err != nil {
			return err
		}
	}
	s.clauses = append(s.clauses, clause{conds: conds, value: s.leaf(n)})
	return nil
}

// extend returns a new slice, conds is never shared between siblings.
func extend(conds []string, cond string) []string {
	out := make([]string, len(conds), len(conds)+1)
	copy(out, conds)
	return append(out, cond)
}

func (s *emission) renderClauses() string {
	var sb strings.Builder
	for i, c := range s.clauses {
		switch {
		case len(c.conds) == 0 && i == 0:
			sb.WriteString("IF TRUE THEN " + c.value + "\n")
		case len(c.conds) == 0:
			sb.WriteString("ELSE " + c.value + "\n")
		case i == 0:
			sb.WriteString("IF " + strings.Join(c.conds, " "+s.syn.And+" ") + " THEN " + c.value + "\n")
		default:
			sb.WriteString("ELSEIF " + strings.Join(c.conds, " "+s.syn.And+" ") + " THEN " + c.value + "\n")
		}
	}
	sb.WriteString("END")
	return sb.String()
}
