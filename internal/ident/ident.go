// Package ident turns field names into identifiers that are legal in each
// target language.
package ident

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lhaig/treegen/internal/fields"
)

// ErrCollision is returned when two different fields map to one identifier.
var ErrCollision = errors.New("identifier collision")

// Convention maps a display name to an identifier. It must be a pure
// function of its input.
type Convention func(name string) string

var jsReserved = wordSet(
	"break", "case", "catch", "class", "const", "continue", "debugger",
	"default", "delete", "do", "else", "enum", "export", "extends", "false",
	"finally", "for", "function", "if", "implements", "import", "in",
	"instanceof", "interface", "let", "new", "null", "package", "private",
	"protected", "public", "return", "static", "super", "switch", "this",
	"throw", "true", "try", "typeof", "var", "void", "while", "with", "yield",
	"undefined", "NaN", "Infinity", "arguments", "eval", "data",
	"termMatches", "itemMatches", "fullTermMatch", "termMatchesTokens",
	"getTokensFlags", "escape", "TERM_ANALYSIS", "TERM_FORMS",
	"ITEM_ANALYSIS", "TM_ALL", "TM_TOKENS", "TM_FULL_TERM",
	"FULL_TERM_PATTERN",
)

var rReserved = wordSet(
	"if", "else", "repeat", "while", "function", "for", "next", "break",
	"TRUE", "FALSE", "NULL", "Inf", "NaN", "NA", "NA_integer_", "NA_real_",
	"NA_character_", "in", "data", "termMatches", "itemMatches",
	"termMatchesTokens", "escape", "TERM_ANALYSIS", "TERM_FORMS",
	"ITEM_ANALYSIS", "TM_ALL", "TM_TOKENS", "TM_FULL_TERM",
	"FULL_TERM_PATTERN",
)

var pyReserved = wordSet(
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is", "lambda",
	"nonlocal", "not", "or", "pass", "raise", "return", "try", "while",
	"with", "yield", "data", "re", "term_matches", "item_matches",
	"full_term_match", "term_matches_tokens", "term_analysis", "term_forms",
	"item_analysis", "tm_all", "tm_tokens", "tm_full_term", "len",
)

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// stripMarks removes combining diacritics so "Año" becomes "Ano".
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func words(s string) []string {
	return strings.FieldsFunc(stripMarks(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func startsWithDigit(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && unicode.IsDigit(r)
}

// CamelCase is the JavaScript convention: "petal length" -> "petalLength".
func CamelCase(name string) string {
	return camel(name, true)
}

// UpperCamelCase is used for function names: "species" -> "Species".
func UpperCamelCase(name string) string {
	return camel(name, false)
}

func camel(name string, firstLower bool) string {
	ws := words(name)
	if len(ws) == 0 {
		return "field"
	}
	// Casers keep state, so each call gets its own.
	title := cases.Title(language.Und, cases.NoLower)
	var sb strings.Builder
	for i, w := range ws {
		if i == 0 && firstLower {
			sb.WriteString(lowerFirst(w))
			continue
		}
		sb.WriteString(title.String(w))
	}
	out := sb.String()
	if startsWithDigit(out) {
		out = "_" + out
	}
	if jsReserved[out] {
		out += "_"
	}
	return out
}

// Dotted is the R convention: "petal length" -> "petal.length".
func Dotted(name string) string {
	var sb strings.Builder
	for _, r := range stripMarks(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('.')
		}
	}
	out := sb.String()
	switch {
	case out == "":
		return "field"
	case startsWithDigit(out), out[0] == '_', strings.HasPrefix(out, ".") && startsWithDigit(out[1:]):
		out = "X" + out
	}
	if rReserved[out] {
		out += "."
	}
	return out
}

// Snake is the Python convention: "Petal Length" -> "petal_length".
func Snake(name string) string {
	ws := words(name)
	if len(ws) == 0 {
		return "field"
	}
	for i, w := range ws {
		ws[i] = strings.ToLower(w)
	}
	out := strings.Join(ws, "_")
	if startsWithDigit(out) {
		out = "field_" + out
	}
	if pyReserved[out] {
		out += "_"
	}
	return out
}

// Backtick quotes the literal name for MySQL.
func Backtick(name string) string {
	return "`" + strings.ReplaceAll(strings.TrimSpace(name), "`", "``") + "`"
}

// Bracket quotes the literal name for Tableau.
func Bracket(name string) string {
	return "[" + strings.ReplaceAll(strings.TrimSpace(name), "]", "]]") + "]"
}

// Namer memoizes one convention for the duration of a single emission and
// rejects collisions between distinct fields.
type Namer struct {
	convention Convention
	byID       map[string]string
	owners     map[string]string
}

// NewNamer returns an empty namer for the convention.
func NewNamer(c Convention) *Namer {
	return &Namer{
		convention: c,
		byID:       make(map[string]string),
		owners:     make(map[string]string),
	}
}

// Name returns the identifier of f, computing it on first use.
func (n *Namer) Name(f *fields.Field) (string, error) {
	if id, ok := n.byID[f.ID]; ok {
		return id, nil
	}
	name := f.Name
	if strings.TrimSpace(name) == "" {
		name = f.ID
	}
	out := n.convention(name)
	if owner, taken := n.owners[out]; taken && owner != f.ID {
		return "", fmt.Errorf("%w: fields %q and %q both map to %s", ErrCollision, owner, f.ID, out)
	}
	n.byID[f.ID] = out
	n.owners[out] = f.ID
	return out, nil
}

// NameAll names every field up front so collisions surface before any
// code is produced.
func (n *Namer) NameAll(list []*fields.Field) error {
	for _, f := range list {
		if _, err := n.Name(f); err != nil {
			return err
		}
	}
	return nil
}
