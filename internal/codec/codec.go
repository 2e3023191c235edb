// Package codec concatenates PDF documents with pdfcpu.
package codec

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdfmerge/internal/errors"
	"pdfmerge/internal/log"
	"pdfmerge/internal/storage"
)

func init() {
	// Keep pdfcpu from creating its own config directory under the user's home.
	model.ConfigPath = "disable"
}

// PDFCPU combines documents page by page, in input order.
type PDFCPU struct {
	conf *model.Configuration
}

// New returns a combiner using relaxed validation, which accepts the
// slightly malformed files common in scanned and exported documents.
func New() *PDFCPU {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPU{conf: conf}
}

// Combine writes the pages of inputs, in order, to output. Every input is
// checked up front; the first unreadable or non-PDF input aborts the call
// before output is touched. The result is written to a temporary file and
// renamed into place, replacing any existing output.
func (c *PDFCPU) Combine(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return errors.ErrNoInputFiles
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, in := range inputs {
		if err := c.check(in); err != nil {
			return err
		}
	}

	dir := filepath.Dir(output)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(output)+".partial-*")
	if err != nil {
		return errors.NewFileError("cannot create output", output, errors.FileOperationFailed, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if len(inputs) == 1 {
		// A lone validated document is copied as is.
		if err := copyFile(inputs[0], tmpPath); err != nil {
			return err
		}
	} else if err := api.MergeCreateFile(inputs, tmpPath, false, c.conf); err != nil {
		return errors.Wrapf(err, "merge %d files", len(inputs))
	}
	if err := os.Chmod(tmpPath, outputMode(output)); err != nil {
		return errors.NewFileError("cannot set output permissions", output, errors.FileOperationFailed, err)
	}
	if err := os.Rename(tmpPath, output); err != nil {
		return errors.NewFileError("cannot write output", output, errors.FileOperationFailed, err)
	}

	log.LogWithFields(log.F("output", output), log.F("inputs", len(inputs))).Debug("Combined documents")
	return nil
}

// check fails fast on inputs that are missing, not PDFs, or do not parse.
func (c *PDFCPU) check(path string) error {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileError("input file not found", path, errors.FileNotFound, err)
		}
		return errors.NewFileError("cannot read input file", path, errors.FileAccessDenied, err)
	}
	if !mime.Is("application/pdf") {
		return errors.NewFileError(fmt.Sprintf("input is %s, not a PDF document", mime.String()), path, errors.InvalidPath, nil)
	}
	if err := api.ValidateFile(path, c.conf); err != nil {
		return errors.NewFileError("invalid PDF document", path, errors.InvalidPath, err)
	}
	return nil
}

// PageCount returns the number of pages in the document at path.
func (c *PDFCPU) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, errors.NewFileError("cannot count pages", path, errors.InvalidPath, err)
	}
	return n, nil
}

// outputMode keeps the permissions of an output being replaced; new outputs
// get the usual document mode rather than the temp file's owner-only one.
func outputMode(output string) os.FileMode {
	if info, err := os.Stat(output); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return storage.FilePerm
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.NewFileError("cannot open input file", src, errors.FileAccessDenied, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.NewFileError("cannot open output", dst, errors.FileOperationFailed, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.NewFileError("cannot copy document", dst, errors.FileOperationFailed, err)
	}
	return out.Close()
}
