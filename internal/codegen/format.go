package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lhaig/treegen/internal/fields"
)

// FormatValue renders v as a literal of the target. Nil becomes the null
// literal, numbers of numeric (and term or item count) fields are written
// bare and everything else is quoted.
func FormatValue(v any, optype fields.Optype, syn *Syntax) string {
	if v == nil {
		return syn.Null
	}
	if optype == fields.Numeric || optype.Composed() {
		if lit, ok := numberLiteral(v); ok {
			return lit
		}
	}
	return syn.Quoted(fmt.Sprint(v))
}

// Quoted returns s as a string literal.
func (s *Syntax) Quoted(text string) string {
	if s.EscapeBackslash {
		text = strings.ReplaceAll(text, `\`, `\\`)
	}
	text = strings.ReplaceAll(text, s.Quote, s.QuoteEscape)
	return s.Quote + text + s.Quote
}

// Bool returns the boolean literal for b.
func (s *Syntax) Bool(b bool) string {
	if b {
		return s.True
	}
	return s.False
}

func numberLiteral(v any) (string, bool) {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case string:
		// Numbers that travelled as strings are still numbers.
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
	}
	return "", false
}
