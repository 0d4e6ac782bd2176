//go:build darwin

package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Watcher watches a single source file via kqueue and invokes onChange
// (debounced) whenever it is modified.
type Watcher struct {
	kq       int
	fd       int
	path     string
	onChange func(string)

	mu    sync.Mutex
	timer *time.Timer
}

func New(path string, onChange func(string)) (*Watcher, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("kqueue: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		unix.Close(kq)
		return nil, err
	}

	fd, err := unix.Open(absPath, unix.O_RDONLY, 0)
	if err != nil {
		unix.Close(kq)
		return nil, fmt.Errorf("open %s: %w", absPath, err)
	}

	event := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_VNODE,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
		Fflags: unix.NOTE_WRITE | unix.NOTE_ATTRIB,
	}
	if _, err := unix.Kevent(kq, []unix.Kevent_t{event}, nil, nil); err != nil {
		unix.Close(fd)
		unix.Close(kq)
		return nil, fmt.Errorf("kevent %s: %w", absPath, err)
	}

	return &Watcher{kq: kq, fd: fd, path: absPath, onChange: onChange}, nil
}

// Run blocks, invoking onChange on every debounced modification.
func (w *Watcher) Run() error {
	events := make([]unix.Kevent_t, 4)
	for {
		n, err := unix.Kevent(w.kq, nil, events, nil)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		for i := 0; i < n; i++ {
			if int(events[i].Ident) == w.fd {
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
	unix.Close(w.fd)
	return unix.Close(w.kq)
}
