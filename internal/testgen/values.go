package testgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lhaig/treegen/internal/fields"
)

// intervalStep is the distance kept from an open bound.
const intervalStep = 1.0

// Value returns an input satisfying the constraint, or nil when the field
// must be missing. seen lists the categorical values the tree compares the
// field with.
func (c *FieldConstraint) Value(seen []any) any {
	if c.missing != nil && *c.missing {
		return nil
	}

	switch {
	case c.Field.Optype.Composed():
		return c.text()
	case c.equal != nil:
		return c.equal
	case c.Field.Optype == fields.Numeric:
		return c.number()
	default:
		return c.category(seen)
	}
}

func (c *FieldConstraint) number() float64 {
	var v float64
	switch {
	case c.lower != nil && c.upper != nil:
		v = (c.lower.value + c.upper.value) / 2
	case c.lower != nil:
		v = c.lower.value + intervalStep
	case c.upper != nil:
		v = c.upper.value - intervalStep
	}
	// Step off excluded values; each step can hit at most one of them.
	for i := 0; i < len(c.notEqual)+1; i++ {
		if !excluded(v, c.notEqual) {
			break
		}
		v += intervalStep / 2
	}
	return v
}

func (c *FieldConstraint) category(seen []any) any {
	for _, v := range seen {
		if !excluded(v, c.notEqual) {
			return v
		}
	}
	other := "other"
	for excluded(other, c.notEqual) {
		other += "_"
	}
	return other
}

// text repeats every term as often as its lower bound requires. Terms
// bounded to zero occurrences are left out.
func (c *FieldConstraint) text() string {
	var tokens []string
	for _, term := range c.terms {
		cb := c.counts[term]
		if cb.upper == 0 {
			continue
		}
		for i := 0; i < cb.lower; i++ {
			tokens = append(tokens, term)
		}
	}
	sep := " "
	if ia := c.Field.ItemAnalysis; ia != nil && ia.Separator != nil {
		sep = *ia.Separator
	}
	return strings.Join(tokens, sep)
}

func excluded(v any, list []any) bool {
	key := fmt.Sprint(v)
	if f, ok := toFloat(v); ok {
		key = strconv.FormatFloat(f, 'f', -1, 64)
	}
	for _, x := range list {
		other := fmt.Sprint(x)
		if f, ok := toFloat(x); ok {
			other = strconv.FormatFloat(f, 'f', -1, 64)
		}
		if other == key {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}
