// Package fields holds the static per-model field metadata a tree refers to.
package fields

import (
	"fmt"
	"sort"
)

// Optype is the declared value category of a field.
type Optype string

const (
	Numeric     Optype = "numeric"
	Categorical Optype = "categorical"
	Text        Optype = "text"
	Items       Optype = "items"
)

// String returns the optype name.
func (o Optype) String() string {
	return string(o)
}

// Composed reports whether predicates on the field match terms or items
// instead of comparing the whole value.
func (o Optype) Composed() bool {
	return o == Text || o == Items
}

// Valid reports whether o is one of the known optypes.
func (o Optype) Valid() bool {
	switch o {
	case Numeric, Categorical, Text, Items:
		return true
	default:
		return false
	}
}

// Token modes used by term analysis.
const (
	TokenModeTokens    = "tokens_only"
	TokenModeFullTerms = "full_terms_only"
	TokenModeAll       = "all"
)

// TermAnalysis is the text tokenization configuration of a text field.
// Nil pointers mean the option was not declared.
type TermAnalysis struct {
	CaseSensitive *bool
	TokenMode     *string
	Language      *string
}

// ItemAnalysis is the list splitting configuration of an items field.
type ItemAnalysis struct {
	Separator       *string
	SeparatorRegexp *string
}

// Field describes one column of the training data.
type Field struct {
	ID           string
	Name         string
	Optype       Optype
	ColumnNumber int
	Preferred    bool
	TermAnalysis *TermAnalysis
	ItemAnalysis *ItemAnalysis
	// TermForms maps a term to its declared synonyms.
	TermForms map[string][]string
}

// Synonyms returns the declared alternative forms for term, or nil.
func (f *Field) Synonyms(term string) []string {
	if f.TermForms == nil {
		return nil
	}
	return f.TermForms[term]
}

// Catalog is the immutable set of fields of one model.
type Catalog struct {
	fields      map[string]*Field
	ordered     []*Field
	objectiveID string
	inputIDs    map[string]bool
}

// NewCatalog builds a catalog from the given fields. objectiveID must name one
// of them. When inputIDs is empty every non-objective field is an input.
func NewCatalog(list []*Field, objectiveID string, inputIDs []string) (*Catalog, error) {
	c := &Catalog{
		fields:      make(map[string]*Field, len(list)),
		objectiveID: objectiveID,
	}
	for _, f := range list {
		if f == nil {
			continue
		}
		if _, dup := c.fields[f.ID]; dup {
			return nil, fmt.Errorf("duplicate field id %q", f.ID)
		}
		if !f.Optype.Valid() {
			return nil, fmt.Errorf("field %q has unknown optype %q", f.ID, f.Optype)
		}
		c.fields[f.ID] = f
		c.ordered = append(c.ordered, f)
	}
	if _, ok := c.fields[objectiveID]; !ok {
		return nil, fmt.Errorf("objective field %q is not in the catalog", objectiveID)
	}
	if len(inputIDs) > 0 {
		c.inputIDs = make(map[string]bool, len(inputIDs))
		for _, id := range inputIDs {
			if _, ok := c.fields[id]; !ok {
				return nil, fmt.Errorf("input field %q is not in the catalog", id)
			}
			c.inputIDs[id] = true
		}
	}

	// Column order first, id as a tie breaker, so arguments come out stable.
	sort.SliceStable(c.ordered, func(i, j int) bool {
		a, b := c.ordered[i], c.ordered[j]
		if a.ColumnNumber != b.ColumnNumber {
			return a.ColumnNumber < b.ColumnNumber
		}
		return a.ID < b.ID
	})
	return c, nil
}

// Get returns the field with the given id.
func (c *Catalog) Get(id string) (*Field, bool) {
	f, ok := c.fields[id]
	return f, ok
}

// Objective returns the field the model predicts.
func (c *Catalog) Objective() *Field {
	return c.fields[c.objectiveID]
}

// ObjectiveID returns the objective field id.
func (c *Catalog) ObjectiveID() string {
	return c.objectiveID
}

// All returns every field in column order.
func (c *Catalog) All() []*Field {
	out := make([]*Field, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Inputs returns the fields a prediction function takes as arguments, in
// column order. The objective is never an input.
func (c *Catalog) Inputs() []*Field {
	var out []*Field
	for _, f := range c.ordered {
		if f.ID == c.objectiveID {
			continue
		}
		if c.inputIDs != nil && !c.inputIDs[f.ID] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ByName looks a field up by its display name.
func (c *Catalog) ByName(name string) (*Field, bool) {
	for _, f := range c.ordered {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Len returns the number of fields.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
