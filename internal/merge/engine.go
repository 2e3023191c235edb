// Package merge walks the subdirectories of a root, selects the PDF files
// each one contributes and combines them into one output per subdirectory.
package merge

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pdfmerge/internal/errors"
	"pdfmerge/internal/log"
	"pdfmerge/internal/natsort"
	"pdfmerge/internal/selector"
	"pdfmerge/internal/storage"
	"pdfmerge/pkg/types"
)

// Request describes one merge batch.
type Request struct {
	Root     string              // Directory whose immediate subdirectories are merged
	Pattern  string              // Glob used by pattern selection
	Template string              // Output name template, see Formatter
	Mode     types.SelectionMode // How each subdirectory selects its inputs
	Observer Observer            // Optional progress sink
}

// Engine runs merge batches. Its zero value is not usable; use New.
type Engine struct {
	roots      OrderSource // merge orders keyed by absolute root path
	components OrderSource // merge orders keyed by subdirectory name
	codec      Codec
	formatter  Formatter
	recorder   Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithRootOrders sets the store consulted in whole-root mode.
func WithRootOrders(src OrderSource) Option {
	return func(e *Engine) { e.roots = src }
}

// WithComponentOrders sets the store consulted in per-directory mode.
func WithComponentOrders(src OrderSource) Option {
	return func(e *Engine) { e.components = src }
}

// WithClock sets the clock used for {date} and {time}.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.formatter.Clock = c }
}

// WithRecorder records every batch that produced at least one output.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// New creates an engine that writes through codec.
func New(codec Codec, opts ...Option) *Engine {
	e := &Engine{
		codec:     codec,
		formatter: Formatter{Clock: SystemClock},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Formatter returns the output name formatter the engine uses.
func (e *Engine) Formatter() Formatter {
	return e.formatter
}

// ValidateDirectory checks that path names an existing, listable directory.
func (e *Engine) ValidateDirectory(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewFileError("no directory specified", path, errors.InvalidPath, nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileError("directory does not exist", path, errors.FileNotFound, err)
		}
		if os.IsPermission(err) {
			return errors.NewFileError("permission denied accessing directory", path, errors.FileAccessDenied, err)
		}
		return errors.NewFileError("error accessing directory", path, errors.FileOperationFailed, err)
	}
	if !info.IsDir() {
		return errors.NewFileError("path is not a directory", path, errors.NotADirectory, nil)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return errors.NewFileError("permission denied accessing directory", path, errors.FileAccessDenied, err)
		}
		return errors.NewFileError("error accessing directory", path, errors.FileOperationFailed, err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && err != io.EOF {
		if os.IsPermission(err) {
			return errors.NewFileError("permission denied accessing directory", path, errors.FileAccessDenied, err)
		}
		return errors.NewFileError("error accessing directory", path, errors.FileOperationFailed, err)
	}
	return nil
}

// batch is the validated, mode-resolved form of a Request.
type batch struct {
	req     Request
	root    string
	rootOrd []string // whole-root merge order, nil in other modes
	subdirs []string
}

// prepare validates the root, loads the whole-root order when required and
// lists subdirectories in natural order. Every error it returns is fatal.
func (e *Engine) prepare(req Request) (*batch, error) {
	if err := e.ValidateDirectory(req.Root); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(req.Root)
	if err != nil {
		return nil, errors.NewFileError("cannot resolve root path", req.Root, errors.InvalidPath, err)
	}

	b := &batch{req: req, root: root}

	if req.Mode == types.ModeWholeRoot {
		var stems []string
		var ok bool
		if e.roots != nil {
			stems, ok = e.roots.Get(root)
		}
		if !ok || len(stems) == 0 {
			return nil, errors.NewConfigError(
				fmt.Sprintf("merge configuration for %s is required but not set", root),
				root, errors.ConfigNotSet, nil)
		}
		b.rootOrd = stems
	}

	subdirs, err := storage.ListSubdirs(root)
	if err != nil {
		return nil, errors.NewFileError("cannot list subdirectories", root, errors.FileAccessDenied, err)
	}
	natsort.Sort(subdirs)
	b.subdirs = subdirs
	return b, nil
}

// plan decides what one subdirectory contributes.
func (e *Engine) plan(b *batch, dir string) types.PreviewEntry {
	name := filepath.Base(dir)
	entry := types.PreviewEntry{
		Dir:    dir,
		Name:   name,
		Output: filepath.Join(dir, e.formatter.Format(b.req.Template, dir)),
		Mode:   b.req.Mode,
	}

	var stems []string
	switch b.req.Mode {
	case types.ModeWholeRoot:
		stems = b.rootOrd
	case types.ModePerDirectory:
		if e.components != nil {
			if s, ok := e.components.Get(name); ok && len(s) > 0 {
				stems = s
			}
		}
	}

	if stems == nil {
		entry.Files = selector.ListMatching(dir, b.req.Pattern)
	} else {
		res := selector.Resolve(dir, stems)
		entry.Stems = stems
		if !res.Complete {
			entry.Status = types.StatusMissing
			entry.Missing = res.Missing
			return entry
		}
		entry.Files = res.Files
	}

	if len(entry.Files) == 0 {
		entry.Status = types.StatusNoFiles
	} else {
		entry.Status = types.StatusReady
	}
	return entry
}

// Preview reports, for every subdirectory, what Merge would select and
// write. Nothing is written.
func (e *Engine) Preview(ctx context.Context, req Request) ([]types.PreviewEntry, error) {
	b, err := e.prepare(req)
	if err != nil {
		return nil, err
	}
	entries := make([]types.PreviewEntry, 0, len(b.subdirs))
	for _, dir := range b.subdirs {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		entries = append(entries, e.plan(b, dir))
	}
	return entries, nil
}

// Merge runs a batch and returns the outputs written, in processing order.
// An empty result with a nil error means no subdirectory was eligible.
func (e *Engine) Merge(ctx context.Context, req Request) ([]string, error) {
	results, err := e.Run(ctx, req)
	var outputs []string
	for _, r := range results {
		if !r.Skipped && r.Error == nil {
			outputs = append(outputs, r.Output)
		}
	}
	return outputs, err
}

// Run is Merge with the per-subdirectory outcome of every subdirectory
// visited, including skipped and failed ones.
func (e *Engine) Run(ctx context.Context, req Request) ([]types.MergeResult, error) {
	notify := func(format string, args ...interface{}) {
		if req.Observer != nil {
			req.Observer.Notify(fmt.Sprintf(format, args...))
		}
	}

	b, err := e.prepare(req)
	if err != nil {
		return nil, err
	}
	if b.rootOrd != nil {
		notify("Using merge configuration: %s", strings.Join(b.rootOrd, ", "))
	}

	total := len(b.subdirs)
	notify("Found %d subdirectories to process", total)
	logger := log.LogWithFields(log.F("root", b.root), log.F("mode", req.Mode.String()))
	logger.Infof("Starting merge batch over %d subdirectories", total)

	results := make([]types.MergeResult, 0, total)
	for i, dir := range b.subdirs {
		if err := ctx.Err(); err != nil {
			e.record(ctx, b, results)
			return results, err
		}

		entry := e.plan(b, dir)
		notify("Processing %d/%d: %s", i+1, total, entry.Name)

		switch entry.Status {
		case types.StatusMissing:
			notify("  Skipping %s: missing components: %s", entry.Name, strings.Join(entry.Missing, ", "))
			results = append(results, types.MergeResult{Dir: dir, Skipped: true})
			continue
		case types.StatusNoFiles:
			notify("  No matching files found in %s", entry.Name)
			results = append(results, types.MergeResult{Dir: dir, Skipped: true})
			continue
		}

		notify("  Found %d matching files", len(entry.Files))
		outName := filepath.Base(entry.Output)
		if storage.FileExists(entry.Output) {
			notify("  Warning: %s already exists, will overwrite", outName)
		}

		result := types.MergeResult{Dir: dir, Output: entry.Output, Inputs: entry.Files}
		if err := e.codec.Combine(ctx, entry.Files, entry.Output); err != nil {
			result.Error = errors.NewMergeError("failed to merge", dir, errors.MergeFailed, err)
			notify("  Error processing %s: %v", entry.Name, err)
			log.LogWithError(result.Error).Error("Merge failed")
		} else {
			notify("  Successfully created: %s", outName)
			logger.With(log.F("output", entry.Output), log.F("inputs", len(entry.Files))).Info("Created merged document")
		}
		results = append(results, result)
	}

	e.record(ctx, b, results)
	return results, nil
}

func (e *Engine) record(ctx context.Context, b *batch, results []types.MergeResult) {
	if e.recorder == nil {
		return
	}
	produced := false
	for _, r := range results {
		if !r.Skipped && r.Error == nil {
			produced = true
			break
		}
	}
	if !produced {
		return
	}
	// History is best effort; the batch already succeeded.
	if _, err := e.recorder.Record(context.WithoutCancel(ctx), b.root, b.req.Mode, results); err != nil {
		log.LogError(err, "Failed to record merge history")
	}
}

// Stats counts the files pattern matches in each subdirectory of root.
func (e *Engine) Stats(root, pattern string) (*types.Stats, error) {
	b, err := e.prepare(Request{Root: root, Pattern: pattern, Mode: types.ModePattern})
	if err != nil {
		return nil, err
	}

	stats := &types.Stats{TotalSubdirs: len(b.subdirs)}
	for _, dir := range b.subdirs {
		ds := types.DirStats{
			Name:  filepath.Base(dir),
			Path:  dir,
			Files: selector.ListMatching(dir, pattern),
		}
		for _, f := range ds.Files {
			if info, err := os.Stat(f); err == nil {
				ds.Bytes += info.Size()
			}
		}
		if ds.FileCount() > 0 {
			stats.SubdirsWithPDFs++
			stats.TotalFiles += ds.FileCount()
			stats.TotalBytes += ds.Bytes
		}
		stats.Subdirs = append(stats.Subdirs, ds)
	}
	return stats, nil
}
