package ibus

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// AddressWatcher sharpens the session's staleness oracle: instead of
// waiting for an mtime poll to notice the daemon restarted, it watches
// the address file's directory and flags the session stale as soon as
// the file is rewritten. It never reconnects on its own; recovery stays
// pull-based through EnsureConnected.
type AddressWatcher struct {
	fw   *fsnotify.Watcher
	path string

	done chan struct{}
	wg   sync.WaitGroup
}

// WatchAddressFile starts watching the session's resolved address file.
// The session must have resolved a path first (a connect attempt, even a
// failed one past resolution, is enough).
func WatchAddressFile(s *Session) (*AddressWatcher, error) {
	path := s.AddressFile()
	if path == "" {
		return nil, errors.New("ibus: no address file resolved yet")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: the daemon replaces the file on restart, and
	// a watch on the old inode would go quiet.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &AddressWatcher{
		fw:   fw,
		path: path,
		done: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop(s)
	return w, nil
}

func (w *AddressWatcher) loop(s *Session) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				s.MarkStale()
			}
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			// Watch errors degrade us back to mtime polling, which
			// EnsureConnected does anyway.
		}
	}
}

// Close stops the watcher. Idempotent.
func (w *AddressWatcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fw.Close()
	w.wg.Wait()
	return err
}
