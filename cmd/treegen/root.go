package main

import (
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lhaig/treegen/internal/config"
	"github.com/lhaig/treegen/internal/logging"
)

// globals holds the persistent flags and the configuration they resolve to.
type globals struct {
	configPath string
	verbose    bool
	quiet      bool
	noColor    bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "treegen",
		Short: "Compile decision tree models into standalone source code",
		Long: `treegen turns a trained decision tree model into prediction code that runs
without the model, in JavaScript, MySQL, R, Tableau or Python.

Commands:
  export    Generate prediction code for one or more languages
  fields    List the model fields and their generated identifiers
  lint      Report tree oddities that change the generated code
  cases     Generate golden input rows with their expected predictions
  predict   Evaluate the tree locally for one input row
  validate  Check a model document against the model schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "config file (default: treegen.yaml in ., ./config or ~/.config/treegen)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&g.quiet, "quiet", "q", false, "suppress output")
	flags.BoolVar(&g.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newExportCmd(g))
	rootCmd.AddCommand(newFieldsCmd(g))
	rootCmd.AddCommand(newLintCmd(g))
	rootCmd.AddCommand(newCasesCmd(g))
	rootCmd.AddCommand(newPredictCmd(g))
	rootCmd.AddCommand(newValidateCmd(g))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (g *globals) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return err
	}
	g.cfg = cfg

	level := logging.ParseLevel(cfg.Logging.Level)
	switch {
	case g.quiet:
		level = slog.LevelError
	case g.verbose:
		level = slog.LevelDebug
	}
	logging.Init(cmd.ErrOrStderr(), level, cfg.Logging.Format)

	if g.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}
	return nil
}
