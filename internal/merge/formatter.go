package merge

import (
	"path/filepath"
	"strings"
	"time"
)

// Clock supplies the wall-clock time used in output names.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the local time.
var SystemClock Clock = ClockFunc(time.Now)

// Formatter expands output name templates.
//
// Placeholders are replaced literally:
//
//	{directory}  base name of the subdirectory
//	{date}       2006-01-02
//	{time}       150405
//	{datetime}   2006-01-02_150405
//
// A ".pdf" suffix is appended unless the result already ends in one,
// compared case-insensitively.
type Formatter struct {
	Clock Clock
}

// Format returns the output file name for subdir.
func (f Formatter) Format(template, subdir string) string {
	clock := f.Clock
	if clock == nil {
		clock = SystemClock
	}
	now := clock.Now()

	date := now.Format("2006-01-02")
	clockTime := now.Format("150405")

	// Applied one after another, so a directory literally named "{date}"
	// is itself expanded.
	name := template
	for _, r := range [][2]string{
		{"{directory}", filepath.Base(subdir)},
		{"{date}", date},
		{"{time}", clockTime},
		{"{datetime}", date + "_" + clockTime},
	} {
		name = strings.ReplaceAll(name, r[0], r[1])
	}

	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
