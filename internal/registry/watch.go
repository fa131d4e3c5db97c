package registry

import (
	"github.com/fsnotify/fsnotify"
)

// Watcher observes a built-in module directory and signals the path of
// every file created or written there (whether or not it is a loaded
// module; removals are not reported), so the host can hand it to Reload.
type Watcher struct {
	w        *fsnotify.Watcher
	Changed  chan string
	stopOnce chan struct{}
}

// Watch starts watching dir for create/write events on module files. The
// caller reads Watcher.Changed for changed paths and calls Close when done.
func Watch(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{w: fw, Changed: make(chan string, 16), stopOnce: make(chan struct{})}
	go w.pump()
	return w, nil
}

func (w *Watcher) pump() {
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				close(w.Changed)
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				select {
				case w.Changed <- ev.Name:
				default:
					// Drop the event rather than block the watcher goroutine;
					// a later event for the same path will retrigger reload.
				}
			}
		case <-w.stopOnce:
			return
		}
	}
}

// Close stops the watch and releases the underlying OS watch handle.
func (w *Watcher) Close() error {
	close(w.stopOnce)
	return w.w.Close()
}

// Reload releases the registry's current reference to the module at path
// (if loaded) and loads it again, picking up on-disk changes fsnotify
// reported. When other references keep the module loaded, the release does
// not unload it and LoadModule returns the same Module with its refcount
// restored, so the file is not re-read. Built-ins the old module
// registered are left stale in the callback list — spec.md's LIFO registration discipline assumes the
// reloaded module's init path re-registers them.
func (r *Registry) Reload(path string) (*Module, error) {
	r.mu.Lock()
	old, had := r.modules[path]
	r.mu.Unlock()

	if had {
		if err := r.ReleaseModule(old); err != nil {
			return nil, err
		}
	}
	return r.LoadModule(path)
}
