package main

import (
	"pdfmerge/internal/config"
	"pdfmerge/internal/history"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func openHistory(cfg *config.Config) (*history.Repository, error) {
	return history.Open(cfg.History.Path)
}

func (a *app) historyCmd() *cobra.Command {
	var (
		limit int
		batch string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently merged documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.History.Enabled {
				a.out.Muted("History is disabled; set history.enabled in the config file.")
				return nil
			}
			repo, err := openHistory(a.cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			if limit == 0 {
				limit = a.cfg.History.Limit
			}
			var entries []history.Entry
			if batch != "" {
				entries, err = repo.Batch(cmd.Context(), batch)
			} else {
				entries, err = repo.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				a.out.Muted("No merges recorded yet.")
				return nil
			}

			for _, e := range entries {
				when := humanize.Time(e.CreatedAt)
				if e.Success {
					a.out.Success("%s  %s (%d files, %s mode, %s)", e.Subdir, e.Output, len(e.Inputs), e.Mode, when)
				} else {
					a.out.Error("%s  failed: %s (%s)", e.Subdir, e.Error, when)
				}
				a.out.Muted("    batch %s", e.BatchID)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "number of entries to show (default from config)")
	cmd.Flags().StringVar(&batch, "batch", "", "show only the entries of one batch")
	return cmd
}
