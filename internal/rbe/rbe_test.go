package rbe

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/treegen/internal/codegen"
	"github.com/lhaig/treegen/internal/codegen/codegentest"
	"github.com/lhaig/treegen/internal/fields"
)

func TestGenerateIris(t *testing.T) {
	t.Parallel()

	res, err := codegen.New(New(nil), codegentest.IrisCatalog(), codegen.Options{}).Emit(codegentest.IrisTree())
	require.NoError(t, err)

	want := `# Predictor for species
#
# petal.length: petal length
predictSpecies <- function(petal.length=NA) {
    if (is.na(petal.length)) {
        return(list(prediction="Iris-versicolor", confidence=0.4))
    }
    if (petal.length <= 2.45) {
        return(list(prediction="Iris-setosa", confidence=0.95))
    }
    if (petal.length > 2.45) {
        return(list(prediction="Iris-versicolor", confidence=0.9))
    }
    return(list(prediction="Iris-versicolor", confidence=0.4))
}
`
	assert.Equal(t, want, res.Code)
}

func TestGenerateMissingBranch(t *testing.T) {
	t.Parallel()

	res, err := codegen.New(New(nil), codegentest.IrisCatalog(), codegen.Options{}).Emit(codegentest.IrisMissingTree())
	require.NoError(t, err)

	code := res.Code
	assert.Equal(t, 3, strings.Count(code, "if ("))
	assert.Contains(t, code, "if (is.na(petal.length)) {\n        return(list(prediction=\"Iris-setosa\", confidence=0.5))")
	assert.Contains(t, code, "if ((!is.na(petal.length) && petal.length <= 2.45)) {")
	assert.Contains(t, code, "if ((!is.na(petal.length) && petal.length > 2.45)) {")
	assert.NotContains(t, code, "return(list(prediction=\"Iris-versicolor\", confidence=0.4))\n    }")
}

func TestGenerateDataArgument(t *testing.T) {
	t.Parallel()

	res, err := codegen.New(New(nil), codegentest.IrisCatalog(), codegen.Options{MaxArgs: 1, InputMap: true}).Emit(codegentest.IrisTree())
	require.NoError(t, err)
	assert.Contains(t, res.Code, "predictSpecies <- function(data) {\n    for (key in c(\"petal.length\")) {\n")
	assert.Contains(t, res.Code, "        if (is.null(data[[key]])) data[[key]] <- NA\n    }\n")
	assert.Contains(t, res.Code, `if (data[["petal.length"]] <= 2.45) {`)
}

func TestGenerateTermsAndItems(t *testing.T) {
	t.Parallel()

	res, err := codegen.New(New(nil), codegentest.TextCatalog(), codegen.Options{}).Emit(codegentest.TextTree())
	require.NoError(t, err)

	code := res.Code
	assert.Contains(t, code, "predictSentiment <- function(review=NA, tags=NA) {")
	assert.Contains(t, code, `    TERM_ANALYSIS <- list("review"=list("case_sensitive"=FALSE, "token_mode"="all"))`)
	assert.Contains(t, code, `    TERM_FORMS <- list("review"=list("good"=list("good", "great")))`)
	assert.Contains(t, code, `    ITEM_ANALYSIS <- list("tags"=list())`)
	assert.Contains(t, code, "termMatches <- function (text, fieldLabel, term) {")
	assert.Contains(t, code, "itemMatches <- function (text, fieldLabel, item) {")
	assert.Contains(t, code, `if (termMatches(review, "review", "good") > 0) {`)
	assert.Contains(t, code, `if (itemMatches(tags, "tags", "urgent") > 0) {`)
	assert.Contains(t, code, `quoted <- lapply(terms, function (form) gsub("(\\W)", "\\\\\\1", form, perl=TRUE))`)
}

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	em := codegen.New(New(nil), codegentest.TextCatalog(), codegen.Options{InputMap: true})
	first, err := em.Emit(codegentest.TextTree())
	require.NoError(t, err)
	second, err := em.Emit(codegentest.TextTree())
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
}

func TestQuotingRoundTrip(t *testing.T) {
	t.Parallel()

	// R double quoted strings share Go's escapes for quotes and backslashes.
	for _, s := range []string{`say "hi"`, `C:\temp`, "plain"} {
		lit := codegen.FormatValue(s, fields.Categorical, syntax)
		got, err := strconv.Unquote(lit)
		require.NoError(t, err, lit)
		assert.Equal(t, s, got)
	}
}
