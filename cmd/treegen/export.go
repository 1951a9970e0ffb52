package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lhaig/treegen/internal/backend"
	"github.com/lhaig/treegen/internal/codegen"
	"github.com/lhaig/treegen/internal/compiler"
	"github.com/lhaig/treegen/internal/diagnostic"
	"github.com/lhaig/treegen/internal/model"
	"github.com/lhaig/treegen/internal/templates"
	"github.com/lhaig/treegen/internal/tree"
)

type exportFlags struct {
	languages    []string
	outputDir    string
	maxArgs      int
	inputMap     bool
	noAttr       bool
	filterNode   int
	subtree      bool
	templatesDir string
}

func newExportCmd(g *globals) *cobra.Command {
	f := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export <model.json>",
		Short: "Generate prediction code for a model",
		Long: `Generate prediction code for a model in one or more languages.

MySQL and Tableau cannot return a prediction together with its confidence,
so they get a second <model>_confidence artifact unless --no-attr is set.

Examples:
  treegen export iris.json
  treegen export --language mysql,r --output-dir out iris.json
  treegen export --filter-node 4 --subtree iris.json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, g, f, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&f.languages, "language", "l", nil,
		"target languages: "+strings.Join(backend.Names(), ", "))
	flags.StringVarP(&f.outputDir, "output-dir", "o", "", "directory for generated files")
	flags.IntVar(&f.maxArgs, "max-args", 0, "input count above which functions take a single data argument")
	flags.BoolVar(&f.inputMap, "input-map", false, "always take a single data argument")
	flags.BoolVar(&f.noAttr, "no-attr", false, "skip the separate confidence artifacts")
	flags.IntVar(&f.filterNode, "filter-node", -1, "emit only the path from the root to this node id")
	flags.BoolVar(&f.subtree, "subtree", false, "keep every descendant of --filter-node")
	flags.StringVar(&f.templatesDir, "templates", "", "directory overriding the embedded helper fragments")

	return cmd
}

func runExport(cmd *cobra.Command, g *globals, f *exportFlags, path string) error {
	cfg := g.cfg

	m, err := model.Load(path)
	if err != nil {
		return err
	}

	languages := cfg.Export.Languages
	if cmd.Flags().Changed("language") {
		languages = f.languages
	}
	backends, err := backend.Resolve(languages)
	if err != nil {
		return err
	}

	opts := compiler.Options{
		Attr: cfg.Export.Attr && !f.noAttr,
		Emit: codegen.Options{
			MaxArgs:  cfg.Export.MaxArgs,
			InputMap: cfg.Export.InputMap || f.inputMap,
		},
	}
	if cmd.Flags().Changed("max-args") {
		if f.maxArgs <= 0 {
			return fmt.Errorf("--max-args must be positive, got %d", f.maxArgs)
		}
		opts.Emit.MaxArgs = f.maxArgs
	}
	if f.filterNode >= 0 {
		ids, err := tree.PathTo(m.Tree.Root, f.filterNode)
		if err != nil {
			return err
		}
		opts.Emit.IDs = ids
		opts.Emit.Subtree = f.subtree
	}
	if dir := firstNonEmpty(f.templatesDir, cfg.Templates.Dir); dir != "" {
		opts.Store = templates.FromDir(dir)
	}
	outDir := firstNonEmpty(f.outputDir, cfg.Export.OutputDir)

	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.Name
	}
	slog.Info("generating code", "model", path, "targets", strings.Join(names, ","))

	artifacts, err := compiler.Export(cmd.Context(), m, backends, outDir, opts)
	if err != nil {
		return err
	}

	diags := diagnostic.New()
	for _, a := range artifacts {
		if !a.Attr {
			diags.Merge(a.Backend.Name, a.Diagnostics)
		}
	}
	if diags.Count() > 0 {
		color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), diags.Format(filepath.Base(path)))
	}

	if g.quiet {
		return nil
	}
	out := cmd.OutOrStdout()
	for _, a := range artifacts {
		fmt.Fprintf(out, "Wrote %s (%s)\n", filepath.Join(outDir, a.Name), humanize.Bytes(uint64(a.Size())))
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
