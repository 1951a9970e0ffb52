package codegen

import (
	"strings"

	"github.com/lhaig/treegen/internal/diagnostic"
	"github.com/lhaig/treegen/internal/fields"
)

// Option names copied into the generated lookup tables, in table order.
var (
	termOptions = []string{"case_sensitive", "token_mode"}
	itemOptions = []string{"separator", "separator_regexp"}
)

// Pair is a (field, term) or (field, item) reference found in a predicate.
type Pair struct {
	Field string
	Value string
}

// pairSet keeps pairs unique in first-seen order.
type pairSet struct {
	seen  map[Pair]bool
	order []Pair
}

func (s *pairSet) add(p Pair) {
	if s.seen == nil {
		s.seen = make(map[Pair]bool)
	}
	if s.seen[p] {
		return
	}
	s.seen[p] = true
	s.order = append(s.order, p)
}

// Option is one analysis setting of a field.
type Option struct {
	Key   string
	Value any
}

// FieldOptions is the analysis settings of one field, keyed by its name.
type FieldOptions struct {
	Field   string
	Options []Option
}

// TermForm lists a term followed by its synonyms.
type TermForm struct {
	Term  string
	Forms []string
}

// FieldForms is the synonym table of one text field.
type FieldForms struct {
	Field string
	Terms []TermForm
}

// Analysis is the static data generated code needs to match terms and
// items the way the model was trained.
type Analysis struct {
	TermPairs    []Pair
	ItemPairs    []Pair
	TermAnalysis []FieldOptions
	// TermForms has an entry for every text field, possibly without terms.
	TermForms    []FieldForms
	ItemAnalysis []FieldOptions
}

// analyze builds the lookup tables for the pairs found during the walk.
// Fields lacking configuration get a warning and an empty entry.
func analyze(catalog *fields.Catalog, terms, items []Pair, diags *diagnostic.Diagnostics) *Analysis {
	a := &Analysis{TermPairs: terms, ItemPairs: items}

	for _, id := range uniqueFields(terms) {
		f, _ := catalog.Get(id)
		var opts []Option
		if ta := f.TermAnalysis; ta != nil {
			if ta.CaseSensitive != nil {
				opts = append(opts, Option{Key: termOptions[0], Value: *ta.CaseSensitive})
			}
			if ta.TokenMode != nil {
				opts = append(opts, Option{Key: termOptions[1], Value: *ta.TokenMode})
			}
		}
		if len(opts) == 0 {
			diags.WarningWithHint(id,
				"field \""+f.Name+"\" has no term analysis options",
				"matching uses "+strings.Join(termOptions, " and ")+" defaults")
		}
		a.TermAnalysis = append(a.TermAnalysis, FieldOptions{Field: f.Name, Options: opts})

		forms := FieldForms{Field: f.Name}
		for _, p := range terms {
			if p.Field != id {
				continue
			}
			if syn := f.Synonyms(p.Value); len(syn) > 0 {
				forms.Terms = append(forms.Terms, TermForm{
					Term:  p.Value,
					Forms: append([]string{p.Value}, syn...),
				})
			}
		}
		a.TermForms = append(a.TermForms, forms)
	}

	for _, id := range uniqueFields(items) {
		f, _ := catalog.Get(id)
		var opts []Option
		if ia := f.ItemAnalysis; ia != nil {
			if ia.Separator != nil {
				opts = append(opts, Option{Key: itemOptions[0], Value: *ia.Separator})
			}
			if ia.SeparatorRegexp != nil {
				opts = append(opts, Option{Key: itemOptions[1], Value: *ia.SeparatorRegexp})
			}
		}
		if len(opts) == 0 {
			diags.WarningWithHint(id,
				"field \""+f.Name+"\" has no item analysis options",
				"items are split on single spaces")
		}
		a.ItemAnalysis = append(a.ItemAnalysis, FieldOptions{Field: f.Name, Options: opts})
	}
	return a
}

func uniqueFields(pairs []Pair) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range pairs {
		if !seen[p.Field] {
			seen[p.Field] = true
			out = append(out, p.Field)
		}
	}
	return out
}

// Tables renders the three lookup tables as dictionary literals of the
// target, in term analysis, term forms, item analysis order.
func (a *Analysis) Tables(syn *Syntax) (termAnalysis, termForms, itemAnalysis string) {
	if a == nil {
		a = &Analysis{}
	}
	return renderOptions(a.TermAnalysis, syn), renderForms(a.TermForms, syn), renderOptions(a.ItemAnalysis, syn)
}

func renderOptions(list []FieldOptions, syn *Syntax) string {
	entries := make([]string, 0, len(list))
	for _, fo := range list {
		opts := make([]string, 0, len(fo.Options))
		for _, o := range fo.Options {
			var v string
			switch x := o.Value.(type) {
			case bool:
				v = syn.Bool(x)
			default:
				v = FormatValue(x, fields.Categorical, syn)
			}
			opts = append(opts, keyValue(syn, o.Key, v))
		}
		entries = append(entries, keyValue(syn, fo.Field, dict(syn, opts)))
	}
	return dict(syn, entries)
}

func renderForms(list []FieldForms, syn *Syntax) string {
	entries := make([]string, 0, len(list))
	for _, ff := range list {
		terms := make([]string, 0, len(ff.Terms))
		for _, tf := range ff.Terms {
			forms := make([]string, len(tf.Forms))
			for i, form := range tf.Forms {
				forms[i] = syn.Quoted(form)
			}
			terms = append(terms, keyValue(syn, tf.Term, syn.ListOpen+strings.Join(forms, ", ")+syn.ListClose))
		}
		entries = append(entries, keyValue(syn, ff.Field, dict(syn, terms)))
	}
	return dict(syn, entries)
}

func keyValue(syn *Syntax, key, value string) string {
	return strings.NewReplacer("{key}", syn.Quoted(key), "{value}", value).Replace(syn.KeyValue)
}

func dict(syn *Syntax, entries []string) string {
	return syn.DictOpen + strings.Join(entries, ", ") + syn.DictClose
}
