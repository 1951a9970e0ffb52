package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lhaig/treegen/internal/fields"
	"github.com/lhaig/treegen/internal/model"
)

func newPredictCmd(_ *globals) *cobra.Command {
	var inputs []string

	cmd := &cobra.Command{
		Use:   "predict <model.json>",
		Short: "Evaluate the tree locally for one input row",
		Long: `Evaluate the tree for one input row and print the prediction, its
confidence (or error, for regression trees) and the path of node ids.

Inputs are given as name=value, where name is a field name or id. Fields
left out, or given an empty value, are missing.

Examples:
  treegen predict --input "petal length=3.1" iris.json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, args[0], inputs)
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "input value as name=value (repeatable)")

	return cmd
}

func runPredict(cmd *cobra.Command, path string, inputs []string) error {
	m, err := model.Load(path)
	if err != nil {
		return err
	}

	row, err := parseRow(m.Catalog, inputs)
	if err != nil {
		return err
	}

	p, err := m.Tree.Predict(m.Catalog, row)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	trail := make([]string, len(p.Path))
	for i, id := range p.Path {
		trail[i] = strconv.Itoa(id)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "prediction: %v\n", p.Output)
	fmt.Fprintf(out, "%s: %s\n", m.Tree.MetricName(), strconv.FormatFloat(p.Confidence, 'f', -1, 64))
	fmt.Fprintf(out, "path: %s\n", strings.Join(trail, " -> "))
	return nil
}

// parseRow maps name=value pairs to a row keyed by field id.
func parseRow(catalog *fields.Catalog, inputs []string) (map[string]any, error) {
	row := make(map[string]any, len(inputs))
	for _, in := range inputs {
		name, value, ok := strings.Cut(in, "=")
		if !ok {
			return nil, fmt.Errorf("invalid input %q: expected name=value", in)
		}
		f, found := catalog.ByName(name)
		if !found {
			f, found = catalog.Get(name)
		}
		if !found {
			return nil, fmt.Errorf("invalid input %q: unknown field %q", in, name)
		}
		if value == "" {
			row[f.ID] = nil
			continue
		}
		row[f.ID] = value
	}
	return row, nil
}
