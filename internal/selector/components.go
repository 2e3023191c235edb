package selector

import (
	"os"
	"path/filepath"
	"strings"

	"pdfmerge/internal/log"
)

const pdfExt = ".pdf"

// Resolution is the outcome of matching required stems against a directory.
type Resolution struct {
	// Complete is true when every stem matched a file.
	Complete bool
	// Files holds the matched paths in stem order.
	Files []string
	// Missing lists stems without a match, in stem order.
	Missing []string
	// Matches maps each matched stem to its file.
	Matches map[string]string
}

// Stem returns name without a trailing ".pdf" (any case).
func Stem(name string) string {
	base := filepath.Base(name)
	if HasPDFExt(base) {
		return base[:len(base)-len(pdfExt)]
	}
	return base
}

// HasPDFExt reports whether name ends in ".pdf", ignoring case.
func HasPDFExt(name string) bool {
	return len(name) >= len(pdfExt) && strings.EqualFold(name[len(name)-len(pdfExt):], pdfExt)
}

// Resolve matches each stem, case-insensitively, against the PDF files
// directly inside dir. Stems are matched independently; when several files
// differ only in case the first in listing order wins. Files come back in
// the order of stems regardless of how they are named on disk. An unreadable
// directory reports every stem as missing.
func Resolve(dir string, stems []string) Resolution {
	candidates := listPDFs(dir)

	res := Resolution{Matches: make(map[string]string, len(stems))}
	for _, stem := range stems {
		path, ok := findStem(candidates, stem)
		if !ok {
			res.Missing = append(res.Missing, stem)
			continue
		}
		res.Matches[stem] = path
		res.Files = append(res.Files, path)
	}
	res.Complete = len(res.Missing) == 0
	return res
}

func findStem(candidates []string, stem string) (string, bool) {
	for _, path := range candidates {
		if strings.EqualFold(Stem(path), stem) {
			return path, true
		}
	}
	return "", false
}

// listPDFs returns the non-directory entries of dir ending in ".pdf", in
// the order os.ReadDir yields them.
func listPDFs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.LogWithFields(log.F("dir", dir), log.F("error", err.Error())).Debug("Cannot list directory, treating as empty")
		return nil
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !HasPDFExt(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files
}
