package tree

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lhaig/treegen/internal/fields"
)

// Prediction is the outcome of evaluating the tree on one input row.
type Prediction struct {
	Output     any
	Confidence float64
	Path       []int
}

var fullTermPattern = regexp.MustCompile(`^.+\b.+$`)

// Predict walks the tree for a row keyed by field id. A child is followed
// when its predicate holds; when no child matches, the current node's output
// is the prediction. Missing keys and nil values count as missing.
func (t *Tree) Predict(catalog *fields.Catalog, row map[string]any) (*Prediction, error) {
	node := t.Root
	path := []int{node.ID}
	for !node.IsLeaf() {
		var next *Node
		for _, c := range node.Children {
			ok, err := apply(c.Predicate, catalog, row)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", c.ID, err)
			}
			if ok {
				next = c
				break
			}
		}
		if next == nil {
			break
		}
		node = next
		path = append(path, node.ID)
	}
	return &Prediction{Output: node.Output, Confidence: node.Confidence, Path: path}, nil
}

func apply(p *Predicate, catalog *fields.Catalog, row map[string]any) (bool, error) {
	field, ok := catalog.Get(p.Field)
	if !ok {
		return false, fmt.Errorf("unknown field %q", p.Field)
	}
	input, present := row[p.Field]
	if present && input == nil {
		present = false
	}

	if !present {
		if field.Optype.Composed() {
			if p.Missing {
				return true, nil
			}
			// A missing text behaves as one with no occurrences.
			return compareNumbers(p.Operator, 0, p.Value)
		}
		return p.Missing || (p.Operator.Canonical() == OpEqual && p.Value == nil), nil
	}
	if p.Value == nil {
		return p.Operator.Canonical() == OpNotEqual, nil
	}

	switch field.Optype {
	case fields.Text:
		return compareNumbers(p.Operator, float64(TermMatches(field, fmt.Sprint(input), p.Term)), p.Value)
	case fields.Items:
		return compareNumbers(p.Operator, float64(ItemMatches(field, fmt.Sprint(input), p.Term)), p.Value)
	case fields.Numeric:
		x, ok := toFloat(input)
		if !ok {
			return false, fmt.Errorf("field %q expects a number, got %v", field.Name, input)
		}
		return compareNumbers(p.Operator, x, p.Value)
	default:
		return compareStrings(p.Operator, fmt.Sprint(input), fmt.Sprint(p.Value))
	}
}

func compareNumbers(op Operator, x float64, value any) (bool, error) {
	y, ok := toFloat(value)
	if !ok {
		return false, fmt.Errorf("predicate value %v is not numeric", value)
	}
	switch op.Canonical() {
	case OpEqual:
		return x == y, nil
	case OpNotEqual:
		return x != y, nil
	case OpLess:
		return x < y, nil
	case OpLessEqual:
		return x <= y, nil
	case OpGreater:
		return x > y, nil
	case OpGreaterEqual:
		return x >= y, nil
	}
	return false, fmt.Errorf("unknown operator %q", op)
}

func compareStrings(op Operator, x, y string) (bool, error) {
	switch op.Canonical() {
	case OpEqual:
		return x == y, nil
	case OpNotEqual:
		return x != y, nil
	case OpLess:
		return x < y, nil
	case OpLessEqual:
		return x <= y, nil
	case OpGreater:
		return x > y, nil
	case OpGreaterEqual:
		return x >= y, nil
	}
	return false, fmt.Errorf("unknown operator %q", op)
}

// TermMatches counts the occurrences of term, or any of its declared forms,
// in text following the field's term analysis options.
func TermMatches(field *fields.Field, text, term string) int {
	caseSensitive := false
	tokenMode := fields.TokenModeAll
	if ta := field.TermAnalysis; ta != nil {
		if ta.CaseSensitive != nil {
			caseSensitive = *ta.CaseSensitive
		}
		if ta.TokenMode != nil {
			tokenMode = *ta.TokenMode
		}
	}
	terms := append([]string{term}, field.Synonyms(term)...)
	first := terms[0]

	if tokenMode == fields.TokenModeFullTerms ||
		(tokenMode == fields.TokenModeAll && len(terms) == 1 && fullTermPattern.MatchString(first)) {
		if !caseSensitive {
			text = strings.ToLower(text)
			first = strings.ToLower(first)
		}
		if text == first {
			return 1
		}
		return 0
	}

	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	expr := `(\b|_)` + strings.Join(quoted, `(\b|_)|(\b|_)`) + `(\b|_)`
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

// ItemMatches returns 1 when item is one of the entries of text once split
// with the field's separator, 0 otherwise.
func ItemMatches(field *fields.Field, text, item string) int {
	pattern := regexp.QuoteMeta(" ")
	if ia := field.ItemAnalysis; ia != nil {
		switch {
		case ia.SeparatorRegexp != nil:
			pattern = *ia.SeparatorRegexp
		case ia.Separator != nil:
			pattern = regexp.QuoteMeta(*ia.Separator)
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0
	}
	for _, part := range re.Split(text, -1) {
		if part == item {
			return 1
		}
	}
	return 0
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
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
