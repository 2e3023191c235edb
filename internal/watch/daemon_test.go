package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pdfmerge/internal/merge"
	"pdfmerge/internal/watch"
	"pdfmerge/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMerger writes "<dir>/merged.pdf" in every subdirectory holding a
// non-output file, like a pattern batch would.
type fakeMerger struct {
	mu    sync.Mutex
	calls int
}

func (m *fakeMerger) ValidateDirectory(path string) error {
	_, err := os.Stat(path)
	return err
}

func (m *fakeMerger) Preview(context.Context, merge.Request) ([]types.PreviewEntry, error) {
	return nil, nil
}

func (m *fakeMerger) Stats(string, string) (*types.Stats, error) { return &types.Stats{}, nil }

func (m *fakeMerger) Merge(_ context.Context, req merge.Request) ([]string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	entries, err := os.ReadDir(req.Root)
	if err != nil {
		return nil, err
	}
	var outputs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		out := filepath.Join(req.Root, e.Name(), "merged.pdf")
		if err := os.WriteFile(out, []byte("merged"), 0644); err != nil {
			return outputs, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func (m *fakeMerger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func startDaemon(t *testing.T, root string, m merge.Merger) *watch.Daemon {
	t.Helper()
	d, err := watch.NewDaemon(m, merge.Request{Root: root, Pattern: "*.pdf", Template: "merged.pdf"}, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(d.Stop)
	return d
}

func TestDaemonMergesAfterChangesSettle(t *testing.T) {
	root := t.TempDir()
	p1 := filepath.Join(root, "p1")
	require.NoError(t, os.Mkdir(p1, 0755))

	m := &fakeMerger{}
	d := startDaemon(t, root, m)

	batches := make(chan []string, 4)
	d.SetCallback(func(outputs []string, err error) {
		assert.NoError(t, err)
		batches <- outputs
	})

	// A burst of writes collapses into one batch.
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(p1, name), []byte("x"), 0644))
	}

	select {
	case outputs := <-batches:
		assert.Equal(t, []string{filepath.Join(p1, "merged.pdf")}, outputs)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch ran")
	}

	// The batch's own output must not trigger another one.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, m.count())

	status := d.Status()
	assert.True(t, status.Running)
	assert.Equal(t, 1, status.Batches)
	assert.Equal(t, 1, status.OutputsWritten)
	assert.NoError(t, status.LastError)
	assert.Contains(t, status.WatchDirectories, p1)
}

func TestDaemonWatchesNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	m := &fakeMerger{}
	d := startDaemon(t, root, m)

	p2 := filepath.Join(root, "p2")
	require.NoError(t, os.Mkdir(p2, 0755))
	require.Eventually(t, func() bool {
		for _, dir := range d.Status().WatchDirectories {
			if dir == p2 {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool { return m.count() >= 1 }, 5*time.Second, 20*time.Millisecond)
	before := m.count()

	require.NoError(t, os.WriteFile(filepath.Join(p2, "a.pdf"), []byte("x"), 0644))
	require.Eventually(t, func() bool { return m.count() > before }, 5*time.Second, 20*time.Millisecond)
}

func TestDaemonIgnoresFilesInRoot(t *testing.T) {
	root := t.TempDir()
	m := &fakeMerger{}
	startDaemon(t, root, m)

	require.NoError(t, os.WriteFile(filepath.Join(root, "loose.pdf"), []byte("x"), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, m.count())
}

func TestDaemonStop(t *testing.T) {
	root := t.TempDir()
	d, err := watch.NewDaemon(&fakeMerger{}, merge.Request{Root: root}, 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))
	assert.Error(t, d.Start(context.Background()))

	d.Stop()
	d.Wait()
	assert.False(t, d.Status().Running)
}

func TestNewDaemonRejectsMissingRoot(t *testing.T) {
	_, err := watch.NewDaemon(&fakeMerger{}, merge.Request{Root: filepath.Join(t.TempDir(), "missing")}, time.Second)
	assert.Error(t, err)
}
