package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is a single message raised while loading a model or emitting
// code for it. Field is the id of the field concerned, when there is one.
type Diagnostic struct {
	Severity Severity
	Message  string
	Field    string
	Target   string
	Hint     string
}

// Diagnostics manages a collection of diagnostic messages
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{
		items: make([]Diagnostic, 0),
	}
}

func (d *Diagnostics) add(sev Severity, field, msg string) {
	d.items = append(d.items, Diagnostic{
		Severity: sev,
		Message:  msg,
		Field:    field,
	})
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(field, format string, args ...any) {
	d.add(Error, field, fmt.Sprintf(format, args...))
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(field, format string, args ...any) {
	d.add(Warning, field, fmt.Sprintf(format, args...))
}

// Infof adds an info diagnostic with formatted message
func (d *Diagnostics) Infof(field, format string, args ...any) {
	d.add(Info, field, fmt.Sprintf(format, args...))
}

// WarningWithHint adds a warning diagnostic with an optional hint
func (d *Diagnostics) WarningWithHint(field, msg, hint string) {
	d.items = append(d.items, Diagnostic{
		Severity: Warning,
		Message:  msg,
		Field:    field,
		Hint:     hint,
	})
}

// Merge appends other's diagnostics, tagging them with target when they
// carry none.
func (d *Diagnostics) Merge(target string, other *Diagnostics) {
	if other == nil {
		return
	}
	for _, item := range other.items {
		if item.Target == "" {
			item.Target = target
		}
		d.items = append(d.items, item)
	}
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	return d.filter(Error)
}

// Warnings returns only the warning-level diagnostics
func (d *Diagnostics) Warnings() []Diagnostic {
	return d.filter(Warning)
}

func (d *Diagnostics) filter(sev Severity) []Diagnostic {
	out := make([]Diagnostic, 0)
	for _, item := range d.items {
		if item.Severity == sev {
			out = append(out, item)
		}
	}
	return out
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// Format returns the diagnostic as one line, plus an indented hint line
// when it has a hint.
func (item Diagnostic) Format(source string) string {
	location := source
	if item.Target != "" {
		location += ":" + item.Target
	}
	if item.Field != "" {
		location += ":" + item.Field
	}

	out := fmt.Sprintf("%s[%s]: %s", item.Severity.String(), location, item.Message)
	if item.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", item.Hint)
	}
	return out
}

// Format returns human-readable messages, one per line:
//
//	warning[model/5e8f:javascript:000005]: field "title" has no term analysis options
//	  hint: term matching falls back to the generated defaults
func (d *Diagnostics) Format(source string) string {
	lines := make([]string, len(d.items))
	for i, item := range d.items {
		lines[i] = item.Format(source)
	}
	return strings.Join(lines, "\n")
}
