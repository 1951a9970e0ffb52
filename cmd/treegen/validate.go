package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lhaig/treegen/internal/model"
	"github.com/lhaig/treegen/internal/tree"
)

// errValidationFailed is returned once the problems were printed.
var errValidationFailed = errors.New("validation failed")

func newValidateCmd(_ *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <model.json>",
		Short: "Check a model document against the model schema",
		Long: `Check a model document against the embedded model schema, then decode it
and verify the tree only tests known fields.

Examples:
  treegen validate iris.json
  treegen validate --no-color model.yaml
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model: %w", err)
	}

	out := cmd.OutOrStdout()
	red := color.New(color.FgRed)

	m, err := model.Parse(data)
	if err != nil {
		red.Fprintf(out, "Model validation failed (%s)\n", path)

		var schemaErr *model.SchemaError
		if errors.As(err, &schemaErr) {
			for _, p := range schemaErr.Problems {
				red.Fprintf(out, "  - %s\n", p)
			}
		} else {
			red.Fprintf(out, "  - %v\n", err)
		}
		return errValidationFailed
	}

	color.New(color.FgGreen).Fprintf(out, "Model is valid (%s)\n", path)
	if id := m.ID(); id != "" {
		fmt.Fprintf(out, "  Model: %s\n", id)
	}
	fmt.Fprintf(out, "  Nodes: %s\n", humanize.Comma(int64(tree.Count(m.Tree.Root))))
	fmt.Fprintf(out, "  Fields: %d (%d skipped)\n", m.Catalog.Len(), len(m.Skipped))
	fmt.Fprintf(out, "  Objective: %s\n", m.Catalog.Objective().Name)
	return nil
}
