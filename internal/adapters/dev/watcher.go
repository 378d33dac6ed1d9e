// Package dev implements the dev supervisor: the file watcher, the
// reload broadcaster, and the rebuild coordination connecting them.
package dev

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

var ignoredDirs = map[string]bool{
	"dist":          true,
	"node_modules":  true,
	".venv":         true,
	"venv":          true,
	"__pycache__":   true,
	".pytest_cache": true,
	"build":         true,
	"target":        true,
}

// FileWatcher monitors an input root for .md changes, debounced, skipping
// hidden and vendor directories.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	events   chan usecases.FileChangeEvent
	done     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	stopped  bool
}

// NewFileWatcher creates a watcher with the given debounce window. A
// non-positive debounce falls back to a 300ms default.
func NewFileWatcher(debounce time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &FileWatcher{
		watcher:  w,
		debounce: debounce,
		events:   make(chan usecases.FileChangeEvent, 10),
		done:     make(chan struct{}),
	}, nil
}

// Watch starts monitoring rootPath for changes. The returned channel is
// closed when Stop is called.
func (fw *FileWatcher) Watch(ctx context.Context, rootPath string) (<-chan usecases.FileChangeEvent, error) {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil, fmt.Errorf("watcher already stopped")
	}
	fw.mu.Unlock()

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("invalid root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory")
	}

	if err := fw.addRecursive(rootPath); err != nil {
		return nil, fmt.Errorf("add watch paths: %w", err)
	}

	fw.wg.Add(1)
	go func() {
		defer fw.wg.Done()
		fw.processEvents(ctx, rootPath)
	}()

	return fw.events, nil
}

// Stop halts watching and closes the event channel.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.stopped = true
	fw.mu.Unlock()

	close(fw.done)
	err := fw.watcher.Close()
	fw.wg.Wait()
	close(fw.events)

	if err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

func (fw *FileWatcher) addRecursive(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if fw.shouldIgnoreDir(path, rootPath) {
			return filepath.SkipDir
		}
		_ = fw.watcher.Add(path)
		return nil
	})
}

// shouldIgnoreDir matches the Source Walker's hidden-entry rule plus a
// fixed set of vendor/build directories that are never book content.
func (fw *FileWatcher) shouldIgnoreDir(path, rootPath string) bool {
	rel, err := filepath.Rel(rootPath, path)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)

	for _, part := range strings.Split(rel, "/") {
		if part == "" || part == "." {
			continue
		}
		if strings.HasPrefix(part, ".") || ignoredDirs[part] {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) shouldProcessFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".md"
}

func (fw *FileWatcher) processEvents(ctx context.Context, rootPath string) {
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	pending := make(map[string]usecases.FileChangeEvent)
	var mu sync.Mutex

	for {
		select {
		case <-fw.done:
			return

		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !fw.shouldIgnoreDir(event.Name, rootPath) {
						_ = fw.watcher.Add(event.Name)
					}
				}
			}

			if !fw.shouldProcessFile(event.Name) {
				continue
			}

			relPath, err := filepath.Rel(rootPath, event.Name)
			if err != nil {
				continue
			}
			relPath = filepath.ToSlash(relPath)

			mu.Lock()
			pending[relPath] = usecases.FileChangeEvent{Path: relPath, Op: mapOperation(event.Op)}
			mu.Unlock()

			debounceTimer.Reset(fw.debounce)

		case <-debounceTimer.C:
			mu.Lock()
			for _, evt := range pending {
				select {
				case fw.events <- evt:
				case <-fw.done:
					mu.Unlock()
					return
				case <-ctx.Done():
					mu.Unlock()
					return
				}
			}
			pending = make(map[string]usecases.FileChangeEvent)
			mu.Unlock()

		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func mapOperation(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		return "create"
	case op&fsnotify.Write == fsnotify.Write:
		return "write"
	case op&fsnotify.Remove == fsnotify.Remove:
		return "remove"
	case op&fsnotify.Rename == fsnotify.Rename:
		return "rename"
	case op&fsnotify.Chmod == fsnotify.Chmod:
		return "chmod"
	default:
		return "write"
	}
}
