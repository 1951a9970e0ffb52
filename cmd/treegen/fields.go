package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lhaig/treegen/internal/backend"
	"github.com/lhaig/treegen/internal/ident"
	"github.com/lhaig/treegen/internal/model"
)

func newFieldsCmd(_ *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <model.json>",
		Short: "List the model fields and their generated identifiers",
		Long: `List every usable field of a model with its optype, column and role, and
the identifier each target language generates for it.

Fields whose optype no tree predicate can test are reported as skipped.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(cmd, args[0])
		},
	}
}

func runFields(cmd *cobra.Command, path string) error {
	m, err := model.Load(path)
	if err != nil {
		return err
	}

	backends := backend.All()
	namers := make([]*ident.Namer, len(backends))
	header := table.Row{"ID", "NAME", "OPTYPE", "COLUMN", "ROLE"}
	for i, b := range backends {
		namers[i] = ident.NewNamer(b.Target(nil).Convention())
		header = append(header, b.Name)
	}

	inputs := make(map[string]bool)
	for _, f := range m.Catalog.Inputs() {
		inputs[f.ID] = true
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(cmd.OutOrStdout())
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(header)

	for _, f := range m.Catalog.All() {
		role := ""
		switch {
		case f.ID == m.Catalog.ObjectiveID():
			role = "objective"
		case inputs[f.ID]:
			role = "input"
		}
		row := table.Row{f.ID, f.Name, f.Optype.String(), strconv.Itoa(f.ColumnNumber), role}
		for _, n := range namers {
			name, err := n.Name(f)
			if err != nil {
				return err
			}
			row = append(row, name)
		}
		tbl.AppendRow(row)
	}
	tbl.Render()

	for _, id := range m.Skipped {
		cmd.PrintErrf("skipped field %s: unsupported optype\n", id)
	}
	return nil
}
