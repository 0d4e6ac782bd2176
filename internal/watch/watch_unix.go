//go:build linux

// Package watch implements the compiler's --watch mode: recompile
// whenever the source file changes (SPEC_FULL.md §6.4, §8 domain stack).
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Watcher watches a single source file and invokes onChange (debounced)
// whenever it is modified.
type Watcher struct {
	fd       int
	wd       int
	path     string
	onChange func(string)

	mu    sync.Mutex
	timer *time.Timer
}

func New(path string, onChange func(string)) (*Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify_init: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	wd, err := unix.InotifyAddWatch(fd, absPath, unix.IN_MODIFY|unix.IN_CLOSE_WRITE)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("watch %s: %w", absPath, err)
	}

	return &Watcher{fd: fd, wd: wd, path: absPath, onChange: onChange}, nil
}

// Run blocks, invoking onChange on every debounced modification. It
// returns only on a read error other than EAGAIN/EWOULDBLOCK.
func (w *Watcher) Run() error {
	buf := make([]byte, unix.SizeofInotifyEvent*4)
	for {
		n, err := unix.Read(w.fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return err
		}

		offset := 0
		for offset < n {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			offset += unix.SizeofInotifyEvent + int(event.Len)
			if int(event.Wd) == w.wd && event.Mask&(unix.IN_MODIFY|unix.IN_CLOSE_WRITE) != 0 {
				w.debounced()
			}
		}
	}
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
	return unix.Close(w.fd)
}
