//go:build !linux && !darwin

package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Watcher polls a single source file's mtime and invokes onChange
// (debounced) whenever it changes. Used on platforms with no inotify/
// kqueue binding in golang.org/x/sys (mirrors the teacher's own Windows
// fallback, which is itself a polling loop rather than a
// ReadDirectoryChangesW binding).
type Watcher struct {
	path     string
	onChange func(string)
	lastMod  time.Time
	stop     chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

func New(path string, onChange func(string)) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{path: absPath, onChange: onChange, stop: make(chan struct{})}
	if info, err := os.Stat(absPath); err == nil {
		w.lastMod = info.ModTime()
	}
	return w, nil
}

func (w *Watcher) Run() error {
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.stop:
			return nil
		}
	}
}

func (w *Watcher) check() {
	info, err := os.Stat(w.path)
	if err != nil {
		return
	}
	if !w.lastMod.IsZero() && info.ModTime().After(w.lastMod) {
		w.debounced()
	}
	w.lastMod = info.ModTime()
}

func (w *Watcher) debounced() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(200*time.Millisecond, func() {
		w.onChange(w.path)
	})
}

func (w *Watcher) Close() error {
	close(w.stop)
	return nil
}
