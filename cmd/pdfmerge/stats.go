package main

import (
	"fmt"
	"path/filepath"

	"pdfmerge/internal/codec"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *app) statsCmd() *cobra.Command {
	var (
		pattern string
		verbose bool
		pages   bool
	)

	cmd := &cobra.Command{
		Use:   "stats <directory>",
		Short: "Show how many matching files each subdirectory holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pattern == "" {
				pattern = a.cfg.Merge.Pattern
			}
			engine, closeFn, err := a.engine(false)
			if err != nil {
				return err
			}
			defer closeFn()

			stats, err := engine.Stats(args[0], pattern)
			if err != nil {
				return err
			}

			a.out.Header("Directory Statistics")
			a.out.Plain("  Total subdirectories: %d", stats.TotalSubdirs)
			a.out.Plain("  Subdirectories with matching files: %d", stats.SubdirsWithPDFs)
			a.out.Plain("  Total matching files: %d (%s)", stats.TotalFiles, humanize.Bytes(uint64(stats.TotalBytes)))

			if !verbose && !pages {
				return nil
			}

			pdf := codec.New()
			a.out.Header("Subdirectory Details")
			for _, ds := range stats.Subdirs {
				if ds.FileCount() == 0 {
					continue
				}
				a.out.Info("  %s: %d files, %s", ds.Name, ds.FileCount(), humanize.Bytes(uint64(ds.Bytes)))
				if !verbose {
					continue
				}
				for _, file := range ds.Files {
					detail := ""
					if pages {
						if n, err := pdf.PageCount(file); err == nil {
							detail = fmt.Sprintf(" (%s)", pluralPages(n))
						} else {
							detail = " (unreadable)"
						}
					}
					a.out.Plain("    - %s%s", filepath.Base(file), detail)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "file pattern to match (default from config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list matching files")
	cmd.Flags().BoolVar(&pages, "pages", false, "count pages of each matching file")
	return cmd
}

func pluralPages(n int) string {
	if n == 1 {
		return "1 page"
	}
	return humanize.Comma(int64(n)) + " pages"
}
