package dev

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Change is one detected file modification.
type Change struct {
	Path string
	CSS  bool
}

// Watcher polls directories for modified files. Polling keeps the
// dependency surface flat; the interval is coarse enough to stay cheap
// on dev-sized trees.
type Watcher struct {
	paths    []string
	interval time.Duration
	onChange func(Change)

	mu         sync.Mutex
	running    bool
	timestamps map[string]time.Time
}

// NewWatcher watches the given directories.
func NewWatcher(paths []string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Watcher{
		paths:      paths,
		interval:   interval,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the change callback. Must be called before Start.
func (w *Watcher) OnChange(fn func(Change)) {
	w.onChange = fn
}

// Start polls until ctx is done. The first scan only records baselines.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.scan(false)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			w.scan(true)
		}
	}
}

func (w *Watcher) scan(notify bool) {
	for _, root := range w.paths {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}

			w.mu.Lock()
			prev, seen := w.timestamps[path]
			w.timestamps[path] = info.ModTime()
			w.mu.Unlock()

			if notify && (!seen || info.ModTime().After(prev)) && w.onChange != nil {
				w.onChange(Change{
					Path: path,
					CSS:  strings.EqualFold(filepath.Ext(path), ".css"),
				})
			}
			return nil
		})
	}
}

func skipDir(name string) bool {
	switch name {
	case ".git", "node_modules", "dist", "tmp":
		return true
	}
	return false
}
