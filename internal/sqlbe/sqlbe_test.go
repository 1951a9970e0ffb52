package sqlbe

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/treegen/internal/codegen"
	"github.com/lhaig/treegen/internal/codegen/codegentest"
	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/tree"
)

func TestGenerateIris(t *testing.T) {
	t.Parallel()

	res, err := codegen.New(New(), codegentest.IrisCatalog(), codegen.Options{}).Emit(codegentest.IrisTree())
	require.NoError(t, err)

	want := "CREATE FUNCTION predict_species (`petal length` NUMERIC)\n" +
		"RETURNS VARCHAR(250) DETERMINISTIC\n" +
		"RETURN IF(`petal length` IS NULL,\n" +
		"        'Iris-versicolor',\n" +
		"        IF(`petal length` <= 2.45,\n" +
		"        'Iris-setosa',\n" +
		"        IF(`petal length` > 2.45,\n" +
		"        'Iris-versicolor',\n" +
		"        'Iris-versicolor')));\n"
	assert.Equal(t, want, res.Code)
}

func TestGenerateConfidence(t *testing.T) {
	t.Parallel()

	res, err := codegen.New(New(), codegentest.IrisCatalog(), codegen.Options{Attr: true}).Emit(codegentest.IrisTree())
	require.NoError(t, err)

	assert.Contains(t, res.Code, "CREATE FUNCTION predict_species_confidence (")
	assert.Contains(t, res.Code, "RETURNS NUMERIC DETERMINISTIC")
	assert.Contains(t, res.Code, "0.95")
	assert.NotContains(t, res.Code, "'Iris-setosa'")
}

func TestParenthesesBalance(t *testing.T) {
	t.Parallel()

	for name, tr := range map[string]*tree.Tree{
		"flat":    codegentest.IrisTree(),
		"missing": codegentest.IrisMissingTree(),
		"deep":    codegentest.DeepIrisTree(),
	} {
		res, err := codegen.New(New(), codegentest.IrisCatalog(), codegen.Options{}).Emit(tr)
		require.NoError(t, err, name)
		assert.Equal(t, strings.Count(res.Code, "("), strings.Count(res.Code, ")"), name)
	}
}

func TestMissingBranch(t *testing.T) {
	t.Parallel()

	res, err := codegen.New(New(), codegentest.IrisCatalog(), codegen.Options{}).Emit(codegentest.IrisMissingTree())
	require.NoError(t, err)

	assert.Contains(t, res.Code, "RETURN IF(`petal length` IS NULL,\n        'Iris-setosa',")
	assert.Contains(t, res.Code, "IF((`petal length` IS NOT NULL AND `petal length` <= 2.45),")
}

func TestUnsupportedOptype(t *testing.T) {
	t.Parallel()

	_, err := codegen.New(New(), codegentest.TextCatalog(), codegen.Options{}).Emit(codegentest.TextTree())
	require.Error(t, err)
	assert.True(t, errors.Is(err, codegen.ErrUnsupportedOptype))
	assert.Equal(t, "Failed to represent this model in MySQL syntax. "+
		"Currently only models with categorical and numeric fields can be generated.", err.Error())
}

// unquote reads a single quoted MySQL literal with backslash escapes.
func unquote(lit string) string {
	body := lit[1 : len(lit)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		sb.WriteByte(body[i])
	}
	return sb.String()
}

func TestQuotingRoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"it's", `back\slash`, `\'`, "plain"} {
		lit := codegen.FormatValue(s, fields.Categorical, syntax)
		assert.Equal(t, s, unquote(lit), lit)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	em := codegen.New(New(), codegentest.IrisCatalog(), codegen.Options{Attr: true})
	first, err := em.Emit(codegentest.DeepIrisTree())
	require.NoError(t, err)
	second, err := em.Emit(codegentest.DeepIrisTree())
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
}
