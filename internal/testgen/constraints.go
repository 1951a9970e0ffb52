package testgen

import (
	"math"

	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/tree"
)

// bound is one end of a numeric interval.
type bound struct {
	value     float64
	inclusive bool
}

// countBound limits the occurrences of a term or item. upper < 0 means
// unbounded.
type countBound struct {
	lower int
	upper int
}

// FieldConstraint holds what the path to a leaf requires of one field.
type FieldConstraint struct {
	Field *fields.Field

	lower    *bound
	upper    *bound
	equal    any
	notEqual []any
	// missing is set by explicit presence edges.
	missing *bool
	counts  map[string]*countBound
	terms   []string
}

func newConstraint(f *fields.Field) *FieldConstraint {
	return &FieldConstraint{Field: f, counts: make(map[string]*countBound)}
}

// apply narrows the constraint with one predicate on its field.
func (c *FieldConstraint) apply(p *tree.Predicate) {
	op := p.Operator.Canonical()
	if p.Value == nil {
		missing := op == tree.OpEqual
		c.missing = &missing
		return
	}

	if c.Field.Optype.Composed() {
		y, ok := toFloat(p.Value)
		if ok {
			c.applyCount(p.Term, op, y)
		}
		return
	}

	if c.Field.Optype == fields.Numeric {
		y, ok := toFloat(p.Value)
		if ok {
			c.applyBound(op, y)
		}
		return
	}

	switch op {
	case tree.OpEqual:
		c.equal = p.Value
	case tree.OpNotEqual:
		c.notEqual = append(c.notEqual, p.Value)
	}
}

// applyBound keeps the tighter of the current and the new bound.
func (c *FieldConstraint) applyBound(op tree.Operator, y float64) {
	switch op {
	case tree.OpGreater:
		c.lower = tighterLower(c.lower, bound{y, false})
	case tree.OpGreaterEqual:
		c.lower = tighterLower(c.lower, bound{y, true})
	case tree.OpLess:
		c.upper = tighterUpper(c.upper, bound{y, false})
	case tree.OpLessEqual:
		c.upper = tighterUpper(c.upper, bound{y, true})
	case tree.OpEqual:
		c.equal = y
	case tree.OpNotEqual:
		c.notEqual = append(c.notEqual, y)
	}
}

func tighterLower(cur *bound, b bound) *bound {
	if cur == nil || b.value > cur.value || (b.value == cur.value && !b.inclusive) {
		return &b
	}
	return cur
}

func tighterUpper(cur *bound, b bound) *bound {
	if cur == nil || b.value < cur.value || (b.value == cur.value && !b.inclusive) {
		return &b
	}
	return cur
}

// applyCount narrows the occurrence count of term.
func (c *FieldConstraint) applyCount(term string, op tree.Operator, y float64) {
	cb, ok := c.counts[term]
	if !ok {
		cb = &countBound{upper: -1}
		c.counts[term] = cb
		c.terms = append(c.terms, term)
	}
	switch op {
	case tree.OpGreater:
		cb.lower = max(cb.lower, int(math.Floor(y))+1)
	case tree.OpGreaterEqual:
		cb.lower = max(cb.lower, int(math.Ceil(y)))
	case tree.OpLess:
		cb.setUpper(int(math.Ceil(y)) - 1)
	case tree.OpLessEqual:
		cb.setUpper(int(math.Floor(y)))
	case tree.OpEqual:
		cb.lower = max(cb.lower, int(y))
		cb.setUpper(int(y))
	case tree.OpNotEqual:
		if y == 0 {
			cb.lower = max(cb.lower, 1)
		}
	}
}

func (cb *countBound) setUpper(n int) {
	if cb.upper < 0 || n < cb.upper {
		cb.upper = n
	}
}

// PathConstraints collects the constraints the predicates of path place on
// each field, in first-tested order.
func PathConstraints(catalog *fields.Catalog, path []*tree.Node) []*FieldConstraint {
	var out []*FieldConstraint
	byField := make(map[string]*FieldConstraint)
	for _, n := range path {
		p := n.Predicate
		if p == nil {
			continue
		}
		c, ok := byField[p.Field]
		if !ok {
			f, known := catalog.Get(p.Field)
			if !known {
				continue
			}
			c = newConstraint(f)
			byField[p.Field] = c
			out = append(out, c)
		}
		c.apply(p)
	}
	return out
}
