// Package linter reports structural oddities of a tree model before export.
package linter

import (
	"fmt"

	"github.com/lhaig/treegen/internal/backend"
	"github.com/lhaig/treegen/internal/diagnostic"
	"github.com/lhaig/treegen/internal/ident"
	"github.com/lhaig/treegen/internal/model"
	"github.com/lhaig/treegen/internal/tree"
)

// Linter performs consistency checks on a decoded model before export.
// Problems that would make an export fail are errors; everything else is
// reported as a warning or note.
type Linter struct {
	m      *model.Model
	diag   *diagnostic.Diagnostics
	tested map[string]bool
}

// Lint runs all lint rules on the given model and returns diagnostics.
func Lint(m *model.Model) *diagnostic.Diagnostics {
	l := &Linter{
		m:      m,
		diag:   diagnostic.New(),
		tested: make(map[string]bool),
	}

	l.lintNodes()
	l.lintFields()

	return l.diag
}

// lintNodes checks every split of the tree.
func (l *Linter) lintNodes() {
	tree.Walk(l.m.Tree.Root, func(n *tree.Node) bool {
		for _, c := range n.Children {
			if c.Predicate != nil {
				l.tested[c.Predicate.Field] = true
				l.checkNonPreferredField(c)
			}
		}
		if n.IsLeaf() {
			return true
		}
		l.checkSingleBranch(n)
		l.checkMixedSplitFields(n)
		l.checkDuplicateBranches(n)
		return true
	})
}

// lintFields checks the catalog.
func (l *Linter) lintFields() {
	for _, id := range l.m.Skipped {
		l.diag.Infof(id, "field has an optype no predicate can test and was skipped")
	}
	for _, f := range l.m.Catalog.Inputs() {
		l.checkUnusedInput(f.ID, f.Name)
	}
	for _, b := range backend.All() {
		l.checkIdentifiers(b)
	}
}

// --- Lint rules ---

// checkSingleBranch warns if a split has one child only. Rows failing that
// child's predicate fall back to the split's own output.
func (l *Linter) checkSingleBranch(n *tree.Node) {
	if len(n.Children) == 1 {
		field := ""
		if p := n.Children[0].Predicate; p != nil {
			field = p.Field
		}
		l.diag.Warningf(field, "node %d splits into a single branch", n.ID)
	}
}

// checkMixedSplitFields warns if the children of a split test different
// fields. Missing values are then handled for the first child's field only.
func (l *Linter) checkMixedSplitFields(n *tree.Node) {
	first := n.Children[0].Predicate
	if first == nil {
		return
	}
	for _, c := range n.Children[1:] {
		if c.Predicate != nil && c.Predicate.Field != first.Field {
			l.diag.WarningWithHint(c.Predicate.Field,
				fmt.Sprintf("node %d tests fields %s and %s in its branches", n.ID, first.Field, c.Predicate.Field),
				"missing values are handled for field "+first.Field+" only")
			return
		}
	}
}

// checkDuplicateBranches warns about a branch repeating the predicate of
// an earlier sibling. Such a branch can never be taken.
func (l *Linter) checkDuplicateBranches(n *tree.Node) {
	for i, c := range n.Children {
		for _, earlier := range n.Children[:i] {
			if samePredicate(c.Predicate, earlier.Predicate) {
				l.diag.Warningf(c.Predicate.Field,
					"node %d repeats the predicate of node %d and is unreachable", c.ID, earlier.ID)
				break
			}
		}
	}
}

// checkNonPreferredField notes predicates on fields marked non-preferred.
func (l *Linter) checkNonPreferredField(n *tree.Node) {
	f, ok := l.m.Catalog.Get(n.Predicate.Field)
	if ok && !f.Preferred {
		l.diag.Infof(f.ID, "node %d tests non-preferred field %q", n.ID, f.Name)
	}
}

// checkUnusedInput notes inputs the tree never tests. They still become
// parameters of the generated functions.
func (l *Linter) checkUnusedInput(id, name string) {
	if !l.tested[id] {
		l.diag.Infof(id, "input field %q is never tested", name)
	}
}

// checkIdentifiers reports fields whose names collide once normalized for
// a target, which makes export to that target fail.
func (l *Linter) checkIdentifiers(b *backend.Backend) {
	inputs := make(map[string]bool)
	for _, f := range l.m.Catalog.Inputs() {
		inputs[f.ID] = true
	}
	namer := ident.NewNamer(b.Target(nil).Convention())
	for _, f := range l.m.Catalog.All() {
		if !inputs[f.ID] && !l.tested[f.ID] {
			continue
		}
		if _, err := namer.Name(f); err != nil {
			l.diag.Merge(b.Name, collision(f.ID, err))
		}
	}
}

func collision(field string, err error) *diagnostic.Diagnostics {
	d := diagnostic.New()
	d.Errorf(field, "%v", err)
	return d
}

func samePredicate(a, b *tree.Predicate) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Operator.Canonical() == b.Operator.Canonical() &&
		a.Field == b.Field &&
		a.Term == b.Term &&
		a.Missing == b.Missing &&
		(a.Value == nil) == (b.Value == nil) &&
		fmt.Sprint(a.Value) == fmt.Sprint(b.Value)
}
