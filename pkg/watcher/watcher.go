package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Filter decides whether a changed file is of interest
type Filter func(path string) bool

// FileWatcher watches directories for written files and triggers
// debounced callbacks per file
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	dirs     map[string]watchedDir
	debounce time.Duration
	timers   map[string]*time.Timer
	done     chan struct{}

	closeOnce sync.Once

	// OnError receives errors reported by the underlying watcher
	OnError func(error)
}

type watchedDir struct {
	filter   Filter
	callback func(string)
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		dirs:     make(map[string]watchedDir),
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// WatchDir watches the files directly inside dir. callback is called
// with the absolute path of every created or written file accepted by
// filter; a nil filter accepts everything.
func (fw *FileWatcher) WatchDir(dir string, filter Filter, callback func(string)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", dir, err)
	}

	if err := fw.watcher.Add(absDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", absDir, err)
	}

	fw.dirs[absDir] = watchedDir{filter: filter, callback: callback}
	return nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					fw.handleFileChange(event.Name)
				}

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				if fw.OnError != nil {
					fw.OnError(err)
				}

			case <-fw.done:
				return
			}
		}
	}()
}

// handleFileChange handles a file change event with debouncing
func (fw *FileWatcher) handleFileChange(filePath string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return
	}

	dir, exists := fw.dirs[filepath.Dir(absPath)]
	if !exists {
		return
	}
	if dir.filter != nil && !dir.filter(absPath) {
		return
	}

	if timer, exists := fw.timers[absPath]; exists {
		timer.Stop()
	}

	fw.timers[absPath] = time.AfterFunc(fw.debounce, func() {
		fw.mu.Lock()
		delete(fw.timers, absPath)
		fw.mu.Unlock()
		dir.callback(absPath)
	})
}

// Close stops the watcher and cancels pending callbacks
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	for _, timer := range fw.timers {
		timer.Stop()
	}
	fw.timers = make(map[string]*time.Timer)
	fw.mu.Unlock()

	var err error
	fw.closeOnce.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
	})
	return err
}

// RemoveAll stops watching all directories
func (fw *FileWatcher) RemoveAll() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for dir := range fw.dirs {
		if err := fw.watcher.Remove(dir); err != nil {
			return err
		}
	}

	for _, timer := range fw.timers {
		timer.Stop()
	}
	fw.dirs = make(map[string]watchedDir)
	fw.timers = make(map[string]*time.Timer)
	return nil
}
