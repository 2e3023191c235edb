package main

import (
	"fmt"

	"pdfmerge/cmd/pdfmerge/cli"
	"pdfmerge/internal/config"
	"pdfmerge/internal/log"
	"pdfmerge/internal/merge"

	"github.com/spf13/cobra"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfgFile string
	debug   bool
	jsonLog bool

	cfg *config.Config
	out *cli.Printer
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pdfmerge",
		Short: "Merge the PDFs of every subdirectory into one document each",
		Long: `pdfmerge walks the immediate subdirectories of a main directory and
combines the PDF files of each one into a single output document.

Files are chosen either by a glob pattern (natural order) or by a saved
merge order listing file stems, keyed by subdirectory name or by the main
directory's path.

Output name placeholders:
  {directory}  name of the subdirectory
  {date}       current date (YYYY-MM-DD)
  {time}       current time (HHMMSS)
  {datetime}   current date and time (YYYY-MM-DD_HHMMSS)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/pdfmerge/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&a.jsonLog, "json-log", false, "write logs as JSON lines")

	rootCmd.AddCommand(a.mergeCmd())
	rootCmd.AddCommand(a.previewCmd())
	rootCmd.AddCommand(a.statsCmd())
	rootCmd.AddCommand(a.validateCmd())
	rootCmd.AddCommand(a.configCmd())
	rootCmd.AddCommand(a.watchCmd())
	rootCmd.AddCommand(a.historyCmd())

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadConfigFile(a.cfgFile)
	} else {
		a.cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	opts := []log.Option{log.WithOutput(cmd.ErrOrStderr())}
	if a.jsonLog || a.cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	log.Configure(opts...)
	log.SetDebug(a.debug || a.cfg.Log.Debug)

	a.out = cli.NewPrinter(cmd.OutOrStdout(), a.cfg)
	return nil
}

// stores opens both merge-order tables and warns about unreadable ones.
func (a *app) stores() (*merge.Stores, error) {
	stores, err := merge.OpenStores(a.cfg)
	if err != nil {
		return nil, err
	}
	for _, s := range []interface {
		LoadErr() error
		Path() string
	}{stores.Roots, stores.Components} {
		if err := s.LoadErr(); err != nil {
			a.out.Warning("Ignoring unreadable merge orders in %s: %v", s.Path(), err)
		}
	}
	return stores, nil
}

// engine builds the merge engine, recording history when enabled. The
// returned close function releases the history database.
func (a *app) engine(withHistory bool) (merge.Merger, func(), error) {
	stores, err := a.stores()
	if err != nil {
		return nil, nil, err
	}

	var opts []merge.Option
	closeFn := func() {}
	if withHistory && a.cfg.History.Enabled {
		repo, err := openHistory(a.cfg)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, merge.WithRecorder(repo))
		closeFn = func() { repo.Close() }
	}
	return merge.CurrentEngineFactory(a.cfg, stores, opts...), closeFn, nil
}
