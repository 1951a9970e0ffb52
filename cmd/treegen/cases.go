package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lhaig/treegen/internal/model"
	"github.com/lhaig/treegen/internal/testgen"
)

func newCasesCmd(_ *globals) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "cases <model.json>",
		Short: "Generate golden input rows with their expected predictions",
		Long: `Generate one input row per leaf of the tree, built from the predicates on
the path to that leaf, together with the prediction the tree makes for it.
Generated code must return the same prediction for every row.

Examples:
  treegen cases iris.json
  treegen cases -o iris_cases.yaml iris.json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCases(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write cases to this file instead of stdout")

	return cmd
}

func runCases(cmd *cobra.Command, path, output string) error {
	m, err := model.Load(path)
	if err != nil {
		return err
	}

	suite, err := testgen.Generate(m)
	if err != nil {
		return err
	}
	if unreached := len(suite.Cases) - suite.Reached(); unreached > 0 {
		slog.Warn("some rows do not reach their leaf", "rows", unreached)
	}

	data, err := suite.YAML()
	if err != nil {
		return err
	}
	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cases: %w", err)
	}
	slog.Info("wrote cases", "path", output, "cases", len(suite.Cases))
	return nil
}
