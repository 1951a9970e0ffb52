package codegen

import (
	"fmt"

	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/tree"
)

// prefixKind is the presence test glued in front of a branch condition.
type prefixKind int

const (
	prefixNone prefixKind = iota
	// (field is null OR cond)
	prefixMissing
	// (field is not null AND cond)
	prefixPresent
)

// missingPolicy is how the children of one split deal with absent values.
type missingPolicy struct {
	field *fields.Field
	// guard is set when a single null check in front of every branch
	// covers the split.
	guard bool
}

// hasMissingBranch reports whether a child of the split is meant to catch
// absent values.
func hasMissingBranch(children []*tree.Node) bool {
	for _, c := range children {
		if c.Predicate.Missing || c.Predicate.IsMissingTest() {
			return true
		}
	}
	return false
}

// resolveMissing decides the policy for a split. The split field is the
// one tested by the first visible child.
func resolveMissing(children []*tree.Node, catalog *fields.Catalog, cmv *FieldSet) (missingPolicy, error) {
	id := children[0].Predicate.Field
	field, ok := catalog.Get(id)
	if !ok {
		return missingPolicy{}, fmt.Errorf("node %d tests unknown field %q", children[0].ID, id)
	}
	guard := !hasMissingBranch(children) && !field.Optype.Composed() && !cmv.Has(id)
	return missingPolicy{field: field, guard: guard}, nil
}

// childSet is the set of proven fields a child sees.
func (p missingPolicy) childSet(child *tree.Node, cmv *FieldSet) *FieldSet {
	if p.guard {
		cmv = cmv.With(p.field.ID)
	}
	pred := child.Predicate
	// An explicit "is not missing" edge proves presence for the subtree.
	if pred.IsMissingTest() && pred.Operator.Canonical() == tree.OpNotEqual {
		cmv = cmv.With(pred.Field)
	}
	return cmv
}

// prefix returns the presence test a branch needs.
func (p missingPolicy) prefix(child *tree.Node, field *fields.Field, cmv *FieldSet) prefixKind {
	pred := child.Predicate
	if pred.IsMissingTest() || cmv.Has(pred.Field) {
		return prefixNone
	}
	if p.guard && pred.Field == p.field.ID {
		return prefixNone
	}
	if pred.Missing {
		return prefixMissing
	}
	// Absent text or items count as zero occurrences, the count itself
	// decides.
	if field.Optype.Composed() {
		return prefixNone
	}
	return prefixPresent
}
