package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pdfmerge/internal/log"

	"github.com/fsnotify/fsnotify"
)

// FileModification represents a file event detected by the watcher
type FileModification struct {
	Path      string
	Info      os.FileInfo // nil for removals and renames away
	Timestamp time.Time
	Op        fsnotify.Op
}

// IsDir reports whether the event concerns a directory that still exists.
func (m FileModification) IsDir() bool {
	return m.Info != nil && m.Info.IsDir()
}

// Watcher monitors directories for file changes using fsnotify
type Watcher struct {
	// Directories being watched
	directories []string

	// Channel to receive file modifications
	fileModChan chan FileModification

	// Channel to signal stop
	stopChan chan struct{}

	// Closed when the event loop has returned
	doneChan chan struct{}

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Lock for running state and the directories list
	mutex sync.RWMutex

	// Whether the watcher is running
	running bool
}

// New creates a new directory watcher using fsnotify
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		directories: []string{},
		fileModChan: make(chan FileModification, 64),
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
		fsWatcher:   fsWatcher,
	}, nil
}

// AddDirectory adds a directory to watch using fsnotify
func (w *Watcher) AddDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	w.mutex.Lock()
	found := false
	for _, existingDir := range w.directories {
		if existingDir == dir {
			found = true
			break
		}
	}
	if !found {
		w.directories = append(w.directories, dir)
	}
	w.mutex.Unlock()
	log.LogWithFields(log.F("directory", dir)).Debug("Watching directory")
	return nil
}

// RemoveDirectory stops watching dir. Unknown directories are ignored.
func (w *Watcher) RemoveDirectory(dir string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	for i, existingDir := range w.directories {
		if existingDir == dir {
			w.directories = append(w.directories[:i], w.directories[i+1:]...)
			// fsnotify drops watches on deleted directories by itself.
			_ = w.fsWatcher.Remove(dir)
			return
		}
	}
}

// FileChannel returns the channel that delivers file modification events
func (w *Watcher) FileChannel() <-chan FileModification {
	return w.fileModChan
}

// Start begins the file watching process using fsnotify
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mutex.Unlock()

	go w.loop()
	log.Debug("Watcher started.")
	return nil
}

func (w *Watcher) loop() {
	defer close(w.doneChan)
	defer close(w.fileModChan)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			// Hidden names cover the codec's partial outputs and editor swap files.
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
				!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
				continue
			}

			mod := FileModification{Path: event.Name, Timestamp: time.Now(), Op: event.Op}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				info, err := os.Stat(event.Name)
				if err != nil {
					if !os.IsNotExist(err) {
						log.LogWithFields(log.F("file", event.Name), log.F("error", err)).Error("Error stating file")
					}
					continue
				}
				mod.Info = info
			}

			select {
			case w.fileModChan <- mod:
			case <-w.stopChan:
				return
			default:
				log.LogWithFields(log.F("file", event.Name)).Warn("Event channel is full, dropped event")
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

// Stop halts the file watching process and closes FileChannel.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if !w.running {
		w.mutex.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	w.mutex.Unlock()

	<-w.doneChan
	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	log.Debug("Watcher stopped.")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// GetDirectories returns the list of directories being watched
func (w *Watcher) GetDirectories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirsCopy := make([]string, len(w.directories))
	copy(dirsCopy, w.directories)
	return dirsCopy
}
