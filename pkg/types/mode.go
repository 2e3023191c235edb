package types

import (
	"fmt"
	"strings"
)

// SelectionMode decides how files are picked in each subdirectory.
type SelectionMode int

const (
	// ModePattern selects files by glob and natural order.
	ModePattern SelectionMode = iota
	// ModePerDirectory uses the merge order stored under the subdirectory's
	// name, falling back to ModePattern for subdirectories without one.
	ModePerDirectory
	// ModeWholeRoot applies the merge order stored for the root to every
	// subdirectory. The order is mandatory.
	ModeWholeRoot
)

var modeNames = map[SelectionMode]string{
	ModePattern:      "pattern",
	ModePerDirectory: "per-directory",
	ModeWholeRoot:    "whole-root",
}

// modeAliases accepts the names earlier releases used on the command line.
var modeAliases = map[string]SelectionMode{
	"pattern":       ModePattern,
	"glob":          ModePattern,
	"per-directory": ModePerDirectory,
	"component":     ModePerDirectory,
	"components":    ModePerDirectory,
	"whole-root":    ModeWholeRoot,
	"merge-config":  ModeWholeRoot,
	"root":          ModeWholeRoot,
}

func (m SelectionMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// UsesConfig reports whether the mode reads stored merge orders.
func (m SelectionMode) UsesConfig() bool {
	return m == ModePerDirectory || m == ModeWholeRoot
}

// ParseMode maps a mode name or alias to a SelectionMode.
func ParseMode(s string) (SelectionMode, error) {
	if m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return ModePattern, fmt.Errorf("unknown selection mode %q (want pattern, per-directory or whole-root)", s)
}

// ModeNames lists the canonical mode names.
func ModeNames() []string {
	return []string{"pattern", "per-directory", "whole-root"}
}
