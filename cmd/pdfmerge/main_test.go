package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"pdfmerge/internal/codec"
	"pdfmerge/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig creates a config file whose stores and history live in a
// temporary directory.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`merge:
  output: "{directory}_merged.pdf"
store:
  root_configs: %q
  components: %q
history:
  enabled: true
  path: %q
`, filepath.Join(dir, "roots.json"), filepath.Join(dir, "components.json"), filepath.Join(dir, "history.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		arg       string
		wantKey   string
		wantStems []string
		wantErr   bool
	}{
		{"Reports:beginning,middle,end", "Reports", []string{"beginning", "middle", "end"}, false},
		{" Reports : a , b ", "Reports", []string{"a", "b"}, false},
		{"Reports:a,,b,", "Reports", []string{"a", "b"}, false},
		{"Reports:intro.pdf,Body.PDF", "Reports", []string{"intro", "Body"}, false},
		{"/srv/scans:a", "/srv/scans", []string{"a"}, false},
		{"Reports", "", nil, true},
		{":a,b", "", nil, true},
		{"Reports: , ", "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			key, stems, err := parseAssignment(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantStems, stems)
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errNothingMerged))
	assert.Equal(t, 1, exitCode(fmt.Errorf("wrapped: %w", errNothingMerged)))
	assert.Equal(t, 130, exitCode(context.Canceled))
	assert.Equal(t, 1, exitCode(fmt.Errorf("boom")))
}

func TestConfigCommandsByName(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "config", "set", "--by-name", "Reports:beginning,middle,end", "Notes:a")
	require.NoError(t, err)
	assert.Contains(t, out, "Set components for 'Reports': beginning, middle, end")

	out, err = run(t, cfg, "config", "get", "--by-name", "Reports")
	require.NoError(t, err)
	assert.Equal(t, "beginning, middle, end\n", out)

	out, err = run(t, cfg, "config", "list", "--by-name")
	require.NoError(t, err)
	assert.Contains(t, out, "Notes: a")
	assert.Contains(t, out, "Reports: beginning, middle, end")

	// The root table is separate.
	_, err = run(t, cfg, "config", "get", "Reports")
	assert.Error(t, err)

	out, err = run(t, cfg, "config", "delete", "--by-name", "Reports", "Missing")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed merge order for 'Reports'")
	assert.Contains(t, out, "No merge order saved for 'Missing'")

	_, err = run(t, cfg, "config", "get", "--by-name", "Reports")
	assert.Error(t, err)
}

func TestConfigSetRootTwoArgForm(t *testing.T) {
	cfg := writeConfig(t)
	root := t.TempDir()

	_, err := run(t, cfg, "config", "set", root, "intro,body")
	require.NoError(t, err)

	out, err := run(t, cfg, "config", "get", root+string(filepath.Separator))
	require.NoError(t, err)
	assert.Equal(t, "intro, body\n", out)
}

func TestConfigSetRejectsBadFormat(t *testing.T) {
	_, err := run(t, writeConfig(t), "config", "set", "--by-name", "Reports")
	assert.Error(t, err)
}

func newTree(t *testing.T) string {
	return testutils.CreateTree(t, filepath.Join(t.TempDir(), "main"), map[string][]string{
		"p1": {"intro.pdf", "body.pdf", "conclusion.pdf"},
		"p2": {"intro.pdf", "body.pdf"},
	})
}

func TestMergeWholeRoot(t *testing.T) {
	cfg := writeConfig(t)
	root := newTree(t)

	_, err := run(t, cfg, "merge", root, "--mode", "whole-root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required but not set")

	_, err = run(t, cfg, "config", "set", root+":intro,body,conclusion")
	require.NoError(t, err)

	out, err := run(t, cfg, "preview", root, "--mode", "whole-root")
	require.NoError(t, err)
	assert.Contains(t, out, "p1: READY (3 files in order: intro, body, conclusion) -> p1_merged.pdf")
	assert.Contains(t, out, "p2: MISSING COMPONENTS - conclusion")
	assert.Contains(t, out, "Total files to merge: 3")
	assert.Contains(t, out, "Ready to merge: 1, Missing components: 1")

	out, err = run(t, cfg, "merge", root, "--mode", "whole-root", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "Skipping p2: missing components: conclusion")
	assert.Contains(t, out, "Successfully merged 1 directories")

	output := filepath.Join(root, "p1", "p1_merged.pdf")
	n, err := codec.New().PageCount(output)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoFileExists(t, filepath.Join(root, "p2", "p2_merged.pdf"))

	out, err = run(t, cfg, "history")
	require.NoError(t, err)
	assert.Contains(t, out, output)
}

func TestMergePatternAndNothingMerged(t *testing.T) {
	cfg := writeConfig(t)
	root := newTree(t)

	out, err := run(t, cfg, "merge", root, "--pattern", "intro*.pdf")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(root, "p2", "p2_merged.pdf"))

	out, err = run(t, cfg, "merge", root, "--pattern", "nothing*.pdf")
	assert.ErrorIs(t, err, errNothingMerged)
	assert.Contains(t, out, "No PDFs were merged.")
}

func TestMergeRejectsBadFlags(t *testing.T) {
	cfg := writeConfig(t)
	root := newTree(t)

	_, err := run(t, cfg, "merge", root, "--mode", "sideways")
	assert.Error(t, err)

	_, err = run(t, cfg, "merge", root, "--output", "sub/out.pdf")
	assert.Error(t, err)

	_, err = run(t, cfg, "merge", root, "--pattern", "scans/*.pdf")
	assert.ErrorContains(t, err, "inside each subdirectory")

	_, err = run(t, cfg, "merge", filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestStatsCommand(t *testing.T) {
	cfg := writeConfig(t)
	root := newTree(t)

	out, err := run(t, cfg, "stats", root, "-v", "--pages")
	require.NoError(t, err)
	assert.Contains(t, out, "Total subdirectories: 2")
	assert.Contains(t, out, "Subdirectories with matching files: 2")
	assert.Contains(t, out, "Total matching files: 5")
	assert.Contains(t, out, "- intro.pdf (1 page)")
}

func TestValidateCommand(t *testing.T) {
	cfg := writeConfig(t)
	root := newTree(t)

	out, err := run(t, cfg, "validate", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Directory is valid")

	_, err = run(t, cfg, "validate", filepath.Join(root, "p1", "intro.pdf"))
	assert.Error(t, err)
}
