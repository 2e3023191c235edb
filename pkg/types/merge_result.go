package types

// Status is the eligibility of one subdirectory in a merge batch.
type Status string

const (
	// StatusReady means files were selected and a merge would run.
	StatusReady Status = "ready"
	// StatusMissing means a merge order could not be satisfied.
	StatusMissing Status = "missing"
	// StatusNoFiles means nothing was selected.
	StatusNoFiles Status = "no_files"
)

// PreviewEntry describes what a merge would do in one subdirectory.
type PreviewEntry struct {
	Dir     string   `json:"dir"`
	Name    string   `json:"name"`
	Files   []string `json:"files"`
	Output  string   `json:"output"`
	Status  Status   `json:"status"`
	Missing []string `json:"missing,omitempty"`
	// Stems is the merge order used, empty in pattern selection.
	Stems []string      `json:"stems,omitempty"`
	Mode  SelectionMode `json:"mode"`
}

// Ready reports whether the entry would produce an output.
func (p PreviewEntry) Ready() bool {
	return p.Status == StatusReady
}

// MergeResult holds the outcome of merging one subdirectory.
type MergeResult struct {
	Dir     string   `json:"dir"`
	Output  string   `json:"output"`
	Inputs  []string `json:"inputs"`
	Skipped bool     `json:"skipped"`
	Error   error    `json:"error,omitempty"`
}

// DirStats summarises pattern matches in one subdirectory.
type DirStats struct {
	Name  string   `json:"name"`
	Path  string   `json:"path"`
	Files []string `json:"files"`
	Bytes int64    `json:"bytes"`
}

// FileCount returns the number of matching files.
func (d DirStats) FileCount() int {
	return len(d.Files)
}

// Stats summarises pattern matches under a root.
type Stats struct {
	TotalSubdirs    int        `json:"total_subdirs"`
	SubdirsWithPDFs int        `json:"subdirs_with_pdfs"`
	TotalFiles      int        `json:"total_files"`
	TotalBytes      int64      `json:"total_bytes"`
	Subdirs         []DirStats `json:"subdirs"`
}
