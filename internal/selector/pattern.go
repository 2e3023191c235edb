// Package selector decides which files in one subdirectory take part in a
// merge, either by glob pattern or by a stored list of required stems.
package selector

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"pdfmerge/internal/log"
	"pdfmerge/internal/natsort"
)

// ListMatching returns the regular files directly inside dir whose names match
// the shell-style pattern, in natural order of their full paths. Symlinks and
// directories never match. Names beginning with a dot only match patterns that
// also begin with one. An unreadable directory or a malformed pattern yields
// an empty result, and so does a pattern containing a path separator.
func ListMatching(dir, pattern string) []string {
	g, err := Compile(pattern)
	if err != nil {
		log.LogWithFields(log.F("pattern", pattern), log.F("error", err.Error())).Warn("Invalid file pattern")
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.LogWithFields(log.F("dir", dir), log.F("error", err.Error())).Debug("Cannot list directory")
		return nil
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if hiddenExcluded(name, pattern) || !g.Match(name) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	natsort.Sort(files)
	return files
}

// Compile builds a matcher for a shell glob: "*", "?", "[...]" and "[!...]".
// Braces and backslashes are literal and an unclosed "[" matches itself.
// Wildcards never cross a path separator.
func Compile(pattern string) (glob.Glob, error) {
	return glob.Compile(shellPattern(pattern), filepath.Separator)
}

// shellPattern rewrites pattern into gobwas syntax, escaping what gobwas
// treats as syntax but a shell glob does not.
func shellPattern(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '{', '}', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '[':
			end := classEnd(pattern, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			b.WriteByte('[')
			j := i + 1
			if pattern[j] == '!' {
				b.WriteByte('!')
				j++
			}
			for ; j < end; j++ {
				if pattern[j] == ']' || pattern[j] == '\\' {
					b.WriteByte('\\')
				}
				b.WriteByte(pattern[j])
			}
			b.WriteByte(']')
			i = end
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// classEnd returns the index of the "]" closing the class opened at i, or -1.
// A "]" directly after "[" or "[!" belongs to the class.
func classEnd(pattern string, i int) int {
	j := i + 1
	if j < len(pattern) && pattern[j] == '!' {
		j++
	}
	if j < len(pattern) && pattern[j] == ']' {
		j++
	}
	for ; j < len(pattern); j++ {
		if pattern[j] == ']' {
			return j
		}
	}
	return -1
}

func hiddenExcluded(name, pattern string) bool {
	return strings.HasPrefix(name, ".") && !strings.HasPrefix(pattern, ".")
}
