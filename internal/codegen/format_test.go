package codegen

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lhaig/treegen/internal/fields"
)

var testSyntax = &Syntax{
	Null:            "null",
	True:            "true",
	False:           "false",
	Quote:           `"`,
	QuoteEscape:     `\"`,
	EscapeBackslash: true,
	DictOpen:        "{",
	DictClose:       "}",
	KeyValue:        "{key}: {value}",
	ListOpen:        "[",
	ListClose:       "]",
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  any
		optype fields.Optype
		want   string
	}{
		{"nil", nil, fields.Categorical, "null"},
		{"nil numeric", nil, fields.Numeric, "null"},
		{"float", 2.45, fields.Numeric, "2.45"},
		{"trailing zero", 0.90, fields.Numeric, "0.9"},
		{"whole float", 3.0, fields.Numeric, "3"},
		{"int", 7, fields.Numeric, "7"},
		{"int64", int64(-4), fields.Numeric, "-4"},
		{"numeric string", "1.50", fields.Numeric, "1.5"},
		{"count", 0, fields.Text, "0"},
		{"category", "Iris-setosa", fields.Categorical, `"Iris-setosa"`},
		{"category that looks numeric", 1, fields.Categorical, `"1"`},
		{"quote", `say "hi"`, fields.Categorical, `"say \"hi\""`},
		{"backslash", `a\b`, fields.Categorical, `"a\\b"`},
		{"not a number", "abc", fields.Numeric, `"abc"`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatValue(tt.value, tt.optype, testSyntax))
		})
	}
}

func TestQuotedRoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []string{`"`, `\`, `\"`, `it's "quoted" \n`, ""} {
		got, err := strconv.Unquote(testSyntax.Quoted(s))
		assert.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestDoubledQuote(t *testing.T) {
	t.Parallel()

	syn := &Syntax{Quote: `"`, QuoteEscape: `""`}
	assert.Equal(t, `"a ""b"" \c"`, syn.Quoted(`a "b" \c`))
}
