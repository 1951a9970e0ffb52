package codegen_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/treegen/internal/codegen"
	"github.com/lhaig/treegen/internal/codegen/codegentest"
	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/ident"
	"github.com/lhaig/treegen/internal/jsbe"
	"github.com/lhaig/treegen/internal/rbe"
	"github.com/lhaig/treegen/internal/tree"
)

func emitJS(t *testing.T, catalog *fields.Catalog, tr *tree.Tree, opts codegen.Options) *codegen.Result {
	t.Helper()
	res, err := codegen.New(jsbe.New(nil), catalog, opts).Emit(tr)
	require.NoError(t, err)
	return res
}

func TestIrisScenario(t *testing.T) {
	t.Parallel()

	code := emitJS(t, codegentest.IrisCatalog(), codegentest.IrisTree(), codegen.Options{}).Code

	assert.Contains(t, code, "function predictSpecies(petalLength)")
	branch := strings.Index(code, "if (petalLength <= 2.45) {\n        return {prediction: \"Iris-setosa\", confidence: 0.95};\n    }")
	require.GreaterOrEqual(t, branch, 0)
	assert.Contains(t, code[branch:], "return {prediction: \"Iris-versicolor\", confidence: 0.9};")
}

func TestIrisMissingScenarioR(t *testing.T) {
	t.Parallel()

	res, err := codegen.New(rbe.New(nil), codegentest.IrisCatalog(), codegen.Options{}).Emit(codegentest.IrisMissingTree())
	require.NoError(t, err)

	assert.Contains(t, res.Code, "is.na(petal.length)")
	assert.Contains(t, res.Code, "<=")
	assert.Equal(t, 3, strings.Count(res.Code, "    if ("))
}

func TestNoDoubleGuardOnPath(t *testing.T) {
	t.Parallel()

	code := emitJS(t, codegentest.IrisCatalog(), codegentest.DeepIrisTree(), codegen.Options{}).Code
	assert.Equal(t, 1, strings.Count(code, "petalLength == null"))
	assert.NotContains(t, code, "petalLength != null")
}

func twoFieldModel(t *testing.T) (*fields.Catalog, *tree.Tree) {
	t.Helper()

	catalog, err := fields.NewCatalog([]*fields.Field{
		{ID: "x", Name: "x", Optype: fields.Numeric, ColumnNumber: 0},
		{ID: "y", Name: "y", Optype: fields.Numeric, ColumnNumber: 1},
		{ID: "z", Name: "z", Optype: fields.Categorical, ColumnNumber: 2},
	}, "z", nil)
	require.NoError(t, err)

	split := func(id int, pred *tree.Predicate, at float64) *tree.Node {
		return &tree.Node{ID: id, Output: "mid", Predicate: pred, Children: []*tree.Node{
			{ID: id*10 + 1, Output: "low", Predicate: &tree.Predicate{Operator: tree.OpLessEqual, Field: "y", Value: at}},
			{ID: id*10 + 2, Output: "high", Predicate: &tree.Predicate{Operator: tree.OpGreater, Field: "y", Value: at}},
		}}
	}
	tr := &tree.Tree{Root: &tree.Node{ID: 0, Output: "mid", Children: []*tree.Node{
		split(1, &tree.Predicate{Operator: tree.OpLessEqual, Field: "x", Value: 1}, 5),
		split(2, &tree.Predicate{Operator: tree.OpGreater, Field: "x", Value: 1}, 3),
	}}}
	return catalog, tr
}

func TestNoLeakedGuardAcrossSiblings(t *testing.T) {
	t.Parallel()

	catalog, tr := twoFieldModel(t)
	code := emitJS(t, catalog, tr, codegen.Options{})

	assert.Equal(t, 1, strings.Count(code.Code, "if (x == null) {"))
	assert.Equal(t, 2, strings.Count(code.Code, "if (y == null) {"))
}

func TestPruning(t *testing.T) {
	t.Parallel()

	catalog := codegentest.IrisCatalog()
	deep := codegentest.DeepIrisTree()

	path, err := tree.PathTo(deep.Root, 3)
	require.NoError(t, err)
	code := emitJS(t, catalog, deep, codegen.Options{IDs: path}).Code
	assert.Contains(t, code, "confidence: 0.97")
	assert.NotContains(t, code, "confidence: 0.95")
	assert.NotContains(t, code, "Iris-virginica")

	path, err = tree.PathTo(deep.Root, 2)
	require.NoError(t, err)
	code = emitJS(t, catalog, deep, codegen.Options{IDs: path, Subtree: true}).Code
	assert.Contains(t, code, "Iris-virginica")
	assert.Contains(t, code, "confidence: 0.97")
	assert.NotContains(t, code, "confidence: 0.95")

	code = emitJS(t, catalog, deep, codegen.Options{IDs: path}).Code
	assert.Contains(t, code, "if (petalLength > 2.45) {\n        return {prediction: \"Iris-versicolor\", confidence: 0.6};")
	assert.NotContains(t, code, "Iris-virginica")
}

func TestAnalysisTables(t *testing.T) {
	t.Parallel()

	res := emitJS(t, codegentest.TextCatalog(), codegentest.TextTree(), codegen.Options{})
	a := res.Function.Analysis

	assert.Equal(t, []codegen.Pair{{Field: codegentest.Review, Value: "good"}}, a.TermPairs)
	assert.Equal(t, []codegen.Pair{{Field: codegentest.Tags, Value: "urgent"}}, a.ItemPairs)

	require.Len(t, a.TermAnalysis, 1)
	assert.Equal(t, "review", a.TermAnalysis[0].Field)
	assert.Equal(t, []codegen.Option{
		{Key: "case_sensitive", Value: false},
		{Key: "token_mode", Value: fields.TokenModeAll},
	}, a.TermAnalysis[0].Options)

	require.Len(t, a.TermForms, 1)
	assert.Equal(t, []codegen.TermForm{{Term: "good", Forms: []string{"good", "great"}}}, a.TermForms[0].Terms)

	require.Len(t, a.ItemAnalysis, 1)
	assert.Empty(t, a.ItemAnalysis[0].Options)
}

func TestTermFormsCompleteness(t *testing.T) {
	t.Parallel()

	catalog := codegentest.TextCatalog()
	tr := codegentest.TextTree()
	// A second term without synonyms on the same field.
	tr.Root.Children[0].Predicate = &tree.Predicate{Operator: tree.OpGreater, Field: codegentest.Review, Term: "bad", Value: 0}

	res := emitJS(t, catalog, tr, codegen.Options{})
	a := res.Function.Analysis

	fieldsWithAnalysis := make(map[string]bool)
	for _, fo := range a.TermAnalysis {
		fieldsWithAnalysis[fo.Field] = true
	}
	forms := make(map[string]map[string]bool)
	for _, ff := range a.TermForms {
		forms[ff.Field] = make(map[string]bool)
		for _, tf := range ff.Terms {
			forms[ff.Field][tf.Term] = true
		}
	}

	for _, p := range a.TermPairs {
		f, ok := catalog.Get(p.Field)
		require.True(t, ok)
		assert.True(t, fieldsWithAnalysis[f.Name], p)
		assert.Equal(t, len(f.Synonyms(p.Value)) > 0, forms[f.Name][p.Value], p)
	}
	assert.Contains(t, res.Code, `var TERM_FORMS = {"review": {"good": ["good", "great"]}};`)
}

func TestMissingTermAnalysisWarns(t *testing.T) {
	t.Parallel()

	catalog, err := fields.NewCatalog([]*fields.Field{
		{ID: "t", Name: "title", Optype: fields.Text},
		{ID: "o", Name: "out", Optype: fields.Categorical, ColumnNumber: 1},
	}, "o", nil)
	require.NoError(t, err)
	tr := &tree.Tree{Root: &tree.Node{Output: "a", Children: []*tree.Node{
		{ID: 1, Output: "b", Predicate: &tree.Predicate{Operator: tree.OpGreater, Field: "t", Term: "x", Value: 0}},
	}}}

	res := emitJS(t, catalog, tr, codegen.Options{})
	warnings := res.Diagnostics.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "t", warnings[0].Field)
	assert.Contains(t, res.Code, `var TERM_ANALYSIS = {"title": {}};`)
	assert.Contains(t, res.Code, `var TERM_FORMS = {"title": {}};`)
}

func TestIdentifierCollision(t *testing.T) {
	t.Parallel()

	catalog, err := fields.NewCatalog([]*fields.Field{
		{ID: "a", Name: "petal width", Optype: fields.Numeric},
		{ID: "b", Name: "petal-width", Optype: fields.Numeric, ColumnNumber: 1},
		{ID: "o", Name: "out", Optype: fields.Categorical, ColumnNumber: 2},
	}, "o", nil)
	require.NoError(t, err)

	_, err = codegen.New(jsbe.New(nil), catalog, codegen.Options{}).Emit(&tree.Tree{Root: &tree.Node{Output: "a"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ident.ErrCollision))
}

func TestUnknownFieldIsAnError(t *testing.T) {
	t.Parallel()

	tr := &tree.Tree{Root: &tree.Node{Children: []*tree.Node{
		{ID: 1, Predicate: &tree.Predicate{Operator: tree.OpLess, Field: "missing", Value: 1}},
	}}}
	_, err := codegen.New(jsbe.New(nil), codegentest.IrisCatalog(), codegen.Options{}).Emit(tr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestInvalidTree(t *testing.T) {
	t.Parallel()

	_, err := codegen.New(jsbe.New(nil), codegentest.IrisCatalog(), codegen.Options{}).Emit(&tree.Tree{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tree")
}

func TestManyInputsUseDataArgument(t *testing.T) {
	t.Parallel()

	list := []*fields.Field{{ID: "out", Name: "out", Optype: fields.Categorical, ColumnNumber: 99}}
	for i := 0; i < codegen.DefaultMaxArgs+1; i++ {
		list = append(list, &fields.Field{
			ID: fmt.Sprintf("f%02d", i), Name: fmt.Sprintf("feature %d", i),
			Optype: fields.Numeric, ColumnNumber: i,
		})
	}
	catalog, err := fields.NewCatalog(list, "out", nil)
	require.NoError(t, err)
	tr := &tree.Tree{Root: &tree.Node{Output: "a", Children: []*tree.Node{
		{ID: 1, Output: "b", Predicate: &tree.Predicate{Operator: tree.OpLess, Field: "f03", Value: 1}},
	}}}

	res := emitJS(t, catalog, tr, codegen.Options{})
	assert.True(t, res.Function.Aggregate)
	assert.Contains(t, res.Code, "function predictOut(data) {")
	assert.Contains(t, res.Code, "if (data.feature3 < 1) {")

	res = emitJS(t, catalog, tr, codegen.Options{MaxArgs: 20})
	assert.False(t, res.Function.Aggregate)
	assert.Len(t, res.Function.Params, codegen.DefaultMaxArgs+1)
}

func TestEmitterIsReusable(t *testing.T) {
	t.Parallel()

	em := codegen.New(jsbe.New(nil), codegentest.IrisCatalog(), codegen.Options{})
	done := make(chan string, 4)
	for i := 0; i < 4; i++ {
		go func() {
			res, err := em.Emit(codegentest.DeepIrisTree())
			if err != nil {
				done <- err.Error()
				return
			}
			done <- res.Code
		}()
	}
	first := <-done
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, <-done)
	}
}

func TestStyleString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "block", codegen.StyleBlock.String())
	assert.Equal(t, "ternary", codegen.StyleTernary.String())
	assert.Equal(t, "flat", codegen.StyleFlat.String())
}
