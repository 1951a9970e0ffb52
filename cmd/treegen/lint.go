package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lhaig/treegen/internal/diagnostic"
	"github.com/lhaig/treegen/internal/linter"
	"github.com/lhaig/treegen/internal/model"
)

// errLintFailed is returned when lint found problems that break export.
var errLintFailed = errors.New("lint found errors")

func newLintCmd(_ *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "lint <model.json>",
		Short: "Report tree oddities that change the generated code",
		Long: `Report single branch splits, unreachable branches, splits testing several
fields, untested inputs and field names that collide once turned into
identifiers for a target language.

Collisions are errors since export to that language fails; the rest are
warnings and notes.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args[0])
		},
	}
}

func runLint(cmd *cobra.Command, path string) error {
	m, err := model.Load(path)
	if err != nil {
		return err
	}

	diags := linter.Lint(m)
	out := cmd.OutOrStdout()
	if diags.Count() == 0 {
		color.New(color.FgGreen).Fprintf(out, "No problems found (%s)\n", path)
		return nil
	}

	source := filepath.Base(path)
	for _, d := range diags.All() {
		severityColor(d.Severity).Fprintln(out, d.Format(source))
	}
	fmt.Fprintf(out, "\n%d problem(s)\n", diags.Count())

	if diags.HasErrors() {
		return errLintFailed
	}
	return nil
}

func severityColor(s diagnostic.Severity) *color.Color {
	switch s {
	case diagnostic.Error:
		return color.New(color.FgRed)
	case diagnostic.Warning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}
