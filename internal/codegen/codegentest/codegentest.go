// Package codegentest provides small hand built models for tests of the
// code generators.
package codegentest

import (
	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/tree"
)

// Field ids used by the fixtures.
const (
	PetalLength = "000002"
	Species     = "000004"
	Review      = "000001"
	Tags        = "000002"
	Sentiment   = "000003"
)

// IrisCatalog returns a catalog with one numeric input and a categorical
// objective.
func IrisCatalog() *fields.Catalog {
	c, err := fields.NewCatalog([]*fields.Field{
		{ID: Species, Name: "species", Optype: fields.Categorical, ColumnNumber: 4, Preferred: true},
		{ID: PetalLength, Name: "petal length", Optype: fields.Numeric, ColumnNumber: 2, Preferred: true},
	}, Species, nil)
	if err != nil {
		panic(err)
	}
	return c
}

func leaf(id int, pred *tree.Predicate, output string, confidence float64) *tree.Node {
	return &tree.Node{ID: id, Output: output, Confidence: confidence, Predicate: pred}
}

// IrisTree splits once on petal length at 2.45.
func IrisTree() *tree.Tree {
	return &tree.Tree{Root: &tree.Node{
		ID:         0,
		Output:     "Iris-versicolor",
		Confidence: 0.4,
		Children: []*tree.Node{
			leaf(1, &tree.Predicate{Operator: tree.OpLessEqual, Field: PetalLength, Value: 2.45}, "Iris-setosa", 0.95),
			leaf(2, &tree.Predicate{Operator: tree.OpGreater, Field: PetalLength, Value: 2.45}, "Iris-versicolor", 0.90),
		},
	}}
}

// IrisMissingTree is IrisTree with a dedicated branch for a missing petal
// length.
func IrisMissingTree() *tree.Tree {
	return &tree.Tree{Root: &tree.Node{
		ID:         0,
		Output:     "Iris-versicolor",
		Confidence: 0.4,
		Children: []*tree.Node{
			leaf(1, &tree.Predicate{Operator: tree.OpEqual, Field: PetalLength, Value: nil}, "Iris-setosa", 0.5),
			leaf(2, &tree.Predicate{Operator: tree.OpLessEqual, Field: PetalLength, Value: 2.45}, "Iris-setosa", 0.95),
			leaf(3, &tree.Predicate{Operator: tree.OpGreater, Field: PetalLength, Value: 2.45}, "Iris-versicolor", 0.90),
		},
	}}
}

// DeepIrisTree splits twice on petal length so the second split sits under
// the first one's guard.
func DeepIrisTree() *tree.Tree {
	return &tree.Tree{Root: &tree.Node{
		ID:         0,
		Output:     "Iris-versicolor",
		Confidence: 0.4,
		Children: []*tree.Node{
			leaf(1, &tree.Predicate{Operator: tree.OpLessEqual, Field: PetalLength, Value: 2.45}, "Iris-setosa", 0.95),
			{
				ID:         2,
				Output:     "Iris-versicolor",
				Confidence: 0.6,
				Predicate:  &tree.Predicate{Operator: tree.OpGreater, Field: PetalLength, Value: 2.45},
				Children: []*tree.Node{
					leaf(3, &tree.Predicate{Operator: tree.OpLessEqual, Field: PetalLength, Value: 4.75}, "Iris-versicolor", 0.97),
					leaf(4, &tree.Predicate{Operator: tree.OpGreater, Field: PetalLength, Value: 4.75}, "Iris-virginica", 0.8),
				},
			},
		},
	}}
}

func ptr[T any](v T) *T {
	return &v
}

// TextCatalog returns a catalog with a text input, an items input and a
// categorical objective. The text field declares "great" as a form of
// "good".
func TextCatalog() *fields.Catalog {
	c, err := fields.NewCatalog([]*fields.Field{
		{
			ID: Review, Name: "review", Optype: fields.Text, ColumnNumber: 1, Preferred: true,
			TermAnalysis: &fields.TermAnalysis{
				CaseSensitive: ptr(false),
				TokenMode:     ptr(fields.TokenModeAll),
			},
			TermForms: map[string][]string{"good": {"great"}},
		},
		{ID: Tags, Name: "tags", Optype: fields.Items, ColumnNumber: 2, Preferred: true},
		{ID: Sentiment, Name: "sentiment", Optype: fields.Categorical, ColumnNumber: 3, Preferred: true},
	}, Sentiment, nil)
	if err != nil {
		panic(err)
	}
	return c
}

// TextTree splits on the term "good" and then on the item "urgent".
func TextTree() *tree.Tree {
	return &tree.Tree{Root: &tree.Node{
		ID:         0,
		Output:     "neutral",
		Confidence: 0.5,
		Children: []*tree.Node{
			leaf(1, &tree.Predicate{Operator: tree.OpGreater, Field: Review, Term: "good", Value: 0}, "positive", 0.8),
			{
				ID:         2,
				Output:     "neutral",
				Confidence: 0.6,
				Predicate:  &tree.Predicate{Operator: tree.OpLessEqual, Field: Review, Term: "good", Value: 0},
				Children: []*tree.Node{
					leaf(3, &tree.Predicate{Operator: tree.OpGreater, Field: Tags, Term: "urgent", Value: 0}, "negative", 0.7),
					leaf(4, &tree.Predicate{Operator: tree.OpLessEqual, Field: Tags, Term: "urgent", Value: 0}, "neutral", 0.65),
				},
			},
		},
	}}
}
