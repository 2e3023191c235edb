// Package watch re-runs merge batches when the PDFs under a root change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"pdfmerge/internal/log"
	"pdfmerge/internal/merge"
	"pdfmerge/internal/storage"
)

// DaemonStatus represents the current status of the daemon
type DaemonStatus struct {
	Running          bool      // Whether the daemon is currently active
	WatchDirectories []string  // Directories being watched
	LastActivity     time.Time // Time of last relevant file event
	Batches          int       // Merge batches run
	OutputsWritten   int       // Total outputs produced across batches
	LastError        error     // Error of the most recent batch, if any
}

// BatchFunc is called after every watch-triggered batch.
type BatchFunc func(outputs []string, err error)

// Daemon watches a root and its immediate subdirectories, and runs a merge
// batch once changes have been quiet for the debounce interval.
type Daemon struct {
	merger   merge.Merger
	req      merge.Request
	debounce time.Duration
	watcher  *Watcher

	// Outputs from the latest batch; events on them are not changes.
	written map[string]bool

	batches      int
	outputs      int
	lastActivity time.Time
	lastErr      error

	callback BatchFunc

	mutex   sync.RWMutex
	running bool
	done    chan struct{}
	cancel  context.CancelFunc
}

// NewDaemon creates a daemon that runs req through m.
func NewDaemon(m merge.Merger, req merge.Request, debounce time.Duration) (*Daemon, error) {
	if err := m.ValidateDirectory(req.Root); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(req.Root)
	if err != nil {
		return nil, err
	}
	req.Root = root

	watcher, err := New()
	if err != nil {
		return nil, err
	}

	return &Daemon{
		merger:   m,
		req:      req,
		debounce: debounce,
		watcher:  watcher,
		written:  map[string]bool{},
	}, nil
}

// SetCallback sets a function to be called after each batch
func (d *Daemon) SetCallback(cb BatchFunc) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = cb
}

// Start watches the root and every current subdirectory, then processes
// events until ctx is done or Stop is called.
func (d *Daemon) Start(ctx context.Context) error {
	d.mutex.Lock()
	if d.running {
		d.mutex.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.mutex.Unlock()

	if err := d.watcher.AddDirectory(d.req.Root); err != nil {
		return fmt.Errorf("error adding watch directory %s: %w", d.req.Root, err)
	}
	subdirs, err := storage.ListSubdirs(d.req.Root)
	if err != nil {
		return err
	}
	for _, dir := range subdirs {
		if err := d.watcher.AddDirectory(dir); err != nil {
			log.LogWithFields(log.F("directory", dir), log.F("error", err)).Warn("Cannot watch subdirectory")
		}
	}

	if err := d.watcher.Start(); err != nil {
		return fmt.Errorf("error starting watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	d.mutex.Lock()
	d.running = true
	d.done = make(chan struct{})
	d.cancel = cancel
	d.mutex.Unlock()

	go d.processEvents(ctx)

	log.LogWithFields(log.F("root", d.req.Root), log.F("debounce", d.debounce.String())).Info("Watching for changes")
	return nil
}

// Stop halts the daemon and waits for a running batch to finish.
func (d *Daemon) Stop() {
	d.mutex.Lock()
	if !d.running {
		d.mutex.Unlock()
		return
	}
	d.running = false
	cancel, done := d.cancel, d.done
	d.mutex.Unlock()

	cancel()
	d.watcher.Stop()
	<-done
}

// Wait blocks until the daemon stops.
func (d *Daemon) Wait() {
	d.mutex.RLock()
	done := d.done
	d.mutex.RUnlock()
	if done != nil {
		<-done
	}
}

// Status returns the current status of the daemon
func (d *Daemon) Status() DaemonStatus {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return DaemonStatus{
		Running:          d.running,
		WatchDirectories: d.watcher.GetDirectories(),
		LastActivity:     d.lastActivity,
		Batches:          d.batches,
		OutputsWritten:   d.outputs,
		LastError:        d.lastErr,
	}
}

// processEvents handles file modification events from the watcher
func (d *Daemon) processEvents(ctx context.Context) {
	defer close(d.done)

	// Since Go 1.23 Stop and Reset discard an undelivered tick, so the
	// timer needs no draining even with a zero debounce.
	timer := time.NewTimer(d.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case ev, ok := <-d.watcher.FileChannel():
			if !ok {
				return
			}
			if !d.relevant(ev) {
				continue
			}
			d.mutex.Lock()
			d.lastActivity = ev.Timestamp
			d.mutex.Unlock()

			timer.Reset(d.debounce)

		case <-timer.C:
			d.runBatch(ctx)
		}
	}
}

// relevant reports whether ev should (re)start the debounce timer. New
// subdirectories are watched as they appear.
func (d *Daemon) relevant(ev FileModification) bool {
	parent := filepath.Dir(ev.Path)

	if parent == d.req.Root {
		if ev.IsDir() {
			if err := d.watcher.AddDirectory(ev.Path); err != nil {
				log.LogWithFields(log.F("directory", ev.Path), log.F("error", err)).Warn("Cannot watch subdirectory")
			}
			return true
		}
		if ev.Info == nil {
			// A removed or renamed subdirectory.
			d.watcher.RemoveDirectory(ev.Path)
			return true
		}
		// Files directly in the root never take part in a merge.
		return false
	}

	if ev.IsDir() {
		return false
	}

	d.mutex.RLock()
	ours := d.written[ev.Path]
	d.mutex.RUnlock()
	if ours {
		log.LogWithFields(log.F("file", ev.Path)).Debug("Ignoring event on merge output")
		return false
	}
	return true
}

func (d *Daemon) runBatch(ctx context.Context) {
	log.LogWithFields(log.F("root", d.req.Root)).Info("Changes settled, running merge batch")
	outputs, err := d.merger.Merge(ctx, d.req)
	if err != nil {
		log.LogError(err, "Watch-triggered merge failed")
	}

	d.mutex.Lock()
	d.written = make(map[string]bool, len(outputs))
	for _, out := range outputs {
		d.written[out] = true
	}
	d.batches++
	d.outputs += len(outputs)
	d.lastErr = err
	cb := d.callback
	d.mutex.Unlock()

	if cb != nil {
		cb(outputs, err)
	}
}
