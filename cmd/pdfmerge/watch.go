package main

import (
	"time"

	"pdfmerge/internal/merge"
	"pdfmerge/internal/watch"

	"github.com/spf13/cobra"
)

func (a *app) watchCmd() *cobra.Command {
	var (
		f        mergeFlags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Re-merge subdirectories whenever their PDFs change",
		Long: `Watch <directory> and its immediate subdirectories. Once changes have been
quiet for the debounce interval, a merge batch runs with the same options
as the merge command. Outputs written by a batch do not trigger another.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(args[0], &f)
			if err != nil {
				return err
			}
			engine, closeFn, err := a.engine(true)
			if err != nil {
				return err
			}
			defer closeFn()

			if !cmd.Flags().Changed("debounce") {
				debounce = time.Duration(a.cfg.Watch.DebounceMillis) * time.Millisecond
			}
			if f.verbose {
				req.Observer = merge.ObserverFunc(a.out.Progress())
			}

			d, err := watch.NewDaemon(engine, req, debounce)
			if err != nil {
				return err
			}
			d.SetCallback(func(outputs []string, err error) {
				switch {
				case err != nil:
					a.out.Error("Merge failed: %v", err)
				case len(outputs) == 0:
					a.out.Muted("Nothing to merge.")
				default:
					for _, out := range outputs {
						a.out.Success("Created: %s", out)
					}
				}
			})

			if err := d.Start(cmd.Context()); err != nil {
				return err
			}
			a.out.Info("Watching %s (%s mode). Press Ctrl+C to stop.", req.Root, req.Mode)
			d.Wait()
			d.Stop()
			a.out.Info("Stopped watching %s.", req.Root)
			return nil
		},
	}

	f.register(cmd, false)
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before merging (default from config)")
	return cmd
}
