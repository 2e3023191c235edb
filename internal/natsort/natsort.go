// Package natsort orders strings so that embedded numbers compare by value:
// "file2.pdf" sorts before "file10.pdf".
package natsort

import (
	"sort"
	"strings"
)

// chunk is one maximal run of digits or non-digits.
type chunk struct {
	text    string
	numeric bool
}

func split(s string) []chunk {
	var chunks []chunk
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || isDigit(s[i]) != isDigit(s[start]) {
			chunks = append(chunks, chunk{text: s[start:i], numeric: isDigit(s[start])})
			start = i
		}
	}
	return chunks
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// compareNumeric compares two digit runs as unbounded integers.
func compareNumeric(a, b string) int {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	return strings.Compare(ta, tb)
}

func compareChunk(a, b chunk) int {
	switch {
	case a.numeric && b.numeric:
		return compareNumeric(a.text, b.text)
	case a.numeric:
		return -1
	case b.numeric:
		return 1
	default:
		return strings.Compare(strings.ToLower(a.text), strings.ToLower(b.text))
	}
}

// Compare returns -1, 0 or 1. Digit runs compare numerically, other runs
// case-insensitively; a run sequence that is a prefix of another sorts first.
// Strings equal under those rules fall back to a byte comparison so the
// order stays total.
func Compare(a, b string) int {
	ca, cb := split(a), split(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		if c := compareChunk(ca[i], cb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(ca) < len(cb):
		return -1
	case len(ca) > len(cb):
		return 1
	}
	return strings.Compare(a, b)
}

// Less reports whether a sorts before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort sorts s in natural order.
func Sort(s []string) {
	sort.SliceStable(s, func(i, j int) bool { return Less(s[i], s[j]) })
}
