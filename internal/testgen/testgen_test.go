package testgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/treegen/internal/codegen/codegentest"
	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/model"
	"github.com/lhaig/treegen/internal/tree"
)

func TestGenerateDeepIris(t *testing.T) {
	t.Parallel()

	suite, err := Generate(&model.Model{
		Resource: "model/iris",
		Catalog:  codegentest.IrisCatalog(),
		Tree:     codegentest.DeepIrisTree(),
	})
	require.NoError(t, err)

	assert.Equal(t, "model/iris", suite.Model)
	assert.Equal(t, "species", suite.Objective)
	assert.Equal(t, "confidence", suite.Metric)
	require.Len(t, suite.Cases, 3)
	assert.Equal(t, 3, suite.Reached())

	want := []Case{
		{Leaf: 1, Inputs: map[string]any{"petal length": 1.45}, Prediction: "Iris-setosa", Metric: 0.95, Path: []int{0, 1}},
		{Leaf: 3, Inputs: map[string]any{"petal length": 3.6}, Prediction: "Iris-versicolor", Metric: 0.97, Path: []int{0, 2, 3}},
		{Leaf: 4, Inputs: map[string]any{"petal length": 5.75}, Prediction: "Iris-virginica", Metric: 0.8, Path: []int{0, 2, 4}},
	}
	for i, c := range suite.Cases {
		assert.Equal(t, want[i].Leaf, c.Leaf)
		assert.InDelta(t, want[i].Inputs["petal length"], c.Inputs["petal length"], 1e-9)
		assert.Equal(t, want[i].Prediction, c.Prediction)
		assert.InDelta(t, want[i].Metric, c.Metric, 1e-9)
		assert.Equal(t, want[i].Path, c.Path)
	}
}

func TestGenerateMissingBranch(t *testing.T) {
	t.Parallel()

	suite, err := Generate(&model.Model{Catalog: codegentest.IrisCatalog(), Tree: codegentest.IrisMissingTree()})
	require.NoError(t, err)
	require.Len(t, suite.Cases, 3)

	missing := suite.Cases[0]
	assert.Empty(t, missing.Inputs)
	assert.Equal(t, "Iris-setosa", missing.Prediction)
	assert.True(t, missing.Reached())
	assert.Equal(t, 3, suite.Reached())
}

func TestGenerateTermsAndItems(t *testing.T) {
	t.Parallel()

	suite, err := Generate(&model.Model{Catalog: codegentest.TextCatalog(), Tree: codegentest.TextTree()})
	require.NoError(t, err)
	require.Len(t, suite.Cases, 3)
	assert.Equal(t, 3, suite.Reached())

	assert.Equal(t, map[string]any{"review": "good"}, suite.Cases[0].Inputs)
	assert.Equal(t, "positive", suite.Cases[0].Prediction)
	assert.Equal(t, map[string]any{"review": "", "tags": "urgent"}, suite.Cases[1].Inputs)
	assert.Equal(t, "negative", suite.Cases[1].Prediction)
	assert.Equal(t, map[string]any{"review": "", "tags": ""}, suite.Cases[2].Inputs)
	assert.Equal(t, "neutral", suite.Cases[2].Prediction)
}

func TestGenerateCategories(t *testing.T) {
	t.Parallel()

	catalog, err := fields.NewCatalog([]*fields.Field{
		{ID: "000000", Name: "color", Optype: fields.Categorical, ColumnNumber: 0, Preferred: true},
		{ID: "000001", Name: "price", Optype: fields.Numeric, ColumnNumber: 1, Preferred: true},
	}, "000001", nil)
	require.NoError(t, err)

	m := &model.Model{Catalog: catalog, Tree: &tree.Tree{Regression: true, Root: &tree.Node{
		Output: 10.0,
		Children: []*tree.Node{
			{ID: 1, Output: 20.0, Confidence: 1.5, Predicate: &tree.Predicate{Operator: tree.OpEqual, Field: "000000", Value: "red"}},
			{ID: 2, Output: 5.0, Confidence: 2.5, Predicate: &tree.Predicate{Operator: tree.OpNotEqual, Field: "000000", Value: "red"}},
		},
	}}}

	suite, err := Generate(m)
	require.NoError(t, err)
	assert.Equal(t, "error", suite.Metric)
	require.Len(t, suite.Cases, 2)
	assert.Equal(t, map[string]any{"color": "red"}, suite.Cases[0].Inputs)
	assert.Equal(t, map[string]any{"color": "other"}, suite.Cases[1].Inputs)
	assert.Equal(t, 5.0, suite.Cases[1].Prediction)
	assert.Equal(t, 2, suite.Reached())
}

func TestPathConstraintsKeepTighterBounds(t *testing.T) {
	t.Parallel()

	root := codegentest.DeepIrisTree().Root
	path := []*tree.Node{root, root.Children[1], root.Children[1].Children[0]}

	constraints := PathConstraints(codegentest.IrisCatalog(), path)
	require.Len(t, constraints, 1)

	c := constraints[0]
	require.NotNil(t, c.lower)
	require.NotNil(t, c.upper)
	assert.InDelta(t, 2.45, c.lower.value, 1e-9)
	assert.False(t, c.lower.inclusive)
	assert.InDelta(t, 4.75, c.upper.value, 1e-9)
	assert.True(t, c.upper.inclusive)
}

func TestNumberAvoidsExcludedValues(t *testing.T) {
	t.Parallel()

	f := &fields.Field{ID: "x", Optype: fields.Numeric}
	c := newConstraint(f)
	c.apply(&tree.Predicate{Operator: tree.OpNotEqual, Field: "x", Value: 0.0})
	c.apply(&tree.Predicate{Operator: tree.OpNotEqual, Field: "x", Value: 0.5})

	assert.InDelta(t, 1.0, c.Value(nil), 1e-9)
}

func TestSuiteYAML(t *testing.T) {
	t.Parallel()

	suite, err := Generate(&model.Model{Catalog: codegentest.IrisCatalog(), Tree: codegentest.IrisTree()})
	require.NoError(t, err)

	data, err := suite.YAML()
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "objective: species\n")
	assert.Contains(t, out, "metric: confidence\n")
	assert.Contains(t, out, "path: [0, 1]")
	assert.NotContains(t, out, "model:")
}
