package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pdfmerge/internal/merge"
	"pdfmerge/internal/selector"
	"pdfmerge/pkg/types"

	"github.com/spf13/cobra"
)

// errNothingMerged makes the process exit with status 1 after a batch
// that produced no output.
var errNothingMerged = fmt.Errorf("no PDFs were merged")

type mergeFlags struct {
	pattern string
	output  string
	mode    string
	preview bool
	verbose bool
}

func (f *mergeFlags) register(cmd *cobra.Command, withPreview bool) {
	cmd.Flags().StringVarP(&f.pattern, "pattern", "p", "", "file pattern to match (default from config, *.pdf)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output filename template (default from config, {directory}_{date}.pdf)")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "selection mode: "+strings.Join(types.ModeNames(), ", "))
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "verbose output")
	if withPreview {
		cmd.Flags().BoolVarP(&f.preview, "preview", "n", false, "preview what would be merged without merging")
	}
}

// request combines flags with configured defaults.
func (a *app) request(root string, f *mergeFlags) (merge.Request, error) {
	req := merge.Request{
		Root:     root,
		Pattern:  a.cfg.Merge.Pattern,
		Template: a.cfg.Merge.Output,
		Mode:     a.cfg.SelectionMode(),
	}
	if f.pattern != "" {
		req.Pattern = f.pattern
	}
	if f.output != "" {
		if strings.ContainsRune(f.output, filepath.Separator) {
			return req, fmt.Errorf("output template must be a file name, got %q", f.output)
		}
		req.Template = f.output
	}
	if f.mode != "" {
		mode, err := types.ParseMode(f.mode)
		if err != nil {
			return req, err
		}
		req.Mode = mode
	}
	if strings.ContainsRune(req.Pattern, filepath.Separator) {
		return req, fmt.Errorf("file pattern must match names inside each subdirectory, got %q", req.Pattern)
	}
	if _, err := selector.Compile(req.Pattern); err != nil {
		return req, fmt.Errorf("invalid file pattern %q: %w", req.Pattern, err)
	}
	return req, nil
}

// outputMatchesPattern reports whether files named by the template would be
// picked up by the pattern on a later run.
func outputMatchesPattern(req merge.Request, formatter merge.Formatter) bool {
	if req.Mode != types.ModePattern && req.Mode != types.ModePerDirectory {
		return false
	}
	g, err := selector.Compile(req.Pattern)
	if err != nil {
		return false
	}
	return g.Match(formatter.Format(req.Template, req.Root))
}

func (a *app) mergeCmd() *cobra.Command {
	var f mergeFlags

	cmd := &cobra.Command{
		Use:   "merge <directory>",
		Short: "Merge the PDFs in each subdirectory",
		Long: `Merge the PDF files of every immediate subdirectory of <directory> into
one document per subdirectory, written inside that subdirectory.`,
		Example: `  pdfmerge merge ~/scans
  pdfmerge merge ~/scans --pattern "report*.pdf"
  pdfmerge merge ~/scans --output "{directory}_merged_{date}.pdf"
  pdfmerge merge ~/scans --mode per-directory --preview`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.preview {
				return a.runPreview(cmd, args[0], &f)
			}
			return a.runMerge(cmd, args[0], &f)
		},
	}
	f.register(cmd, true)
	return cmd
}

func (a *app) previewCmd() *cobra.Command {
	var f mergeFlags

	cmd := &cobra.Command{
		Use:   "preview <directory>",
		Short: "Show what merge would do without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPreview(cmd, args[0], &f)
		},
	}
	f.register(cmd, false)
	return cmd
}

func (a *app) runMerge(cmd *cobra.Command, root string, f *mergeFlags) error {
	req, err := a.request(root, f)
	if err != nil {
		return err
	}
	engine, closeFn, err := a.engine(true)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := engine.ValidateDirectory(root); err != nil {
		return err
	}

	if f.verbose {
		a.out.Info("Processing directory: %s", root)
		a.out.Info("File pattern: %s", req.Pattern)
		a.out.Info("Output format: %s", req.Template)
	}
	if outputMatchesPattern(req, merge.Formatter{}) {
		a.out.Warning("Output names match %q; outputs from earlier runs will be merged again", req.Pattern)
	}

	a.out.Plain("Merging PDFs (%s mode)...", req.Mode)
	if f.verbose {
		req.Observer = merge.ObserverFunc(a.out.Progress())
	}

	outputs, err := engine.Merge(cmd.Context(), req)
	if err != nil {
		return err
	}
	if len(outputs) == 0 {
		a.out.Warning("No PDFs were merged.")
		return errNothingMerged
	}

	a.out.Header(fmt.Sprintf("Successfully merged %d directories", len(outputs)))
	for _, out := range outputs {
		a.out.Success("Created: %s", out)
	}
	return nil
}

func (a *app) runPreview(cmd *cobra.Command, root string, f *mergeFlags) error {
	req, err := a.request(root, f)
	if err != nil {
		return err
	}
	engine, closeFn, err := a.engine(false)
	if err != nil {
		return err
	}
	defer closeFn()

	entries, err := engine.Preview(cmd.Context(), req)
	if err != nil {
		return err
	}

	a.out.Plain("Preview Mode - Showing what would be merged (%s mode):", req.Mode)
	if len(entries) == 0 {
		a.out.Muted("No subdirectories found.")
		return nil
	}

	a.out.Header(fmt.Sprintf("Found %d subdirectories", len(entries)))
	var total, ready, missing int
	for _, e := range entries {
		outName := filepath.Base(e.Output)
		switch e.Status {
		case types.StatusMissing:
			missing++
			a.out.Warning("%s: MISSING COMPONENTS - %s", e.Name, strings.Join(e.Missing, ", "))
		case types.StatusNoFiles:
			a.out.Muted("  %s: no matching files", e.Name)
		case types.StatusReady:
			ready++
			total += len(e.Files)
			if len(e.Stems) > 0 {
				a.out.Success("%s: READY (%d files in order: %s) -> %s", e.Name, len(e.Files), strings.Join(e.Stems, ", "), outName)
			} else {
				a.out.Success("%s: %d files -> %s", e.Name, len(e.Files), outName)
			}
			if f.verbose {
				for _, file := range e.Files {
					a.out.Plain("    - %s", filepath.Base(file))
				}
			}
			if _, err := os.Stat(e.Output); err == nil {
				a.out.Warning("  %s already exists, will overwrite", outName)
			}
		}
	}

	a.out.Plain("")
	a.out.Box(fmt.Sprintf("Total files to merge: %d\nReady to merge: %d, Missing components: %d", total, ready, missing))
	return nil
}
