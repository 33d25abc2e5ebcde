package config

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long the file must go without events before it is
// reloaded. Editors often write a file in several steps.
const debounce = 100 * time.Millisecond

// Watcher reloads a configuration file whenever it changes. Valid
// configurations are sent on Updates, load and watch failures on Errors.
// Both channels are closed by Close.
type Watcher struct {
	Updates chan Config
	Errors  chan error

	path    string
	watcher *fsnotify.Watcher
	log     *slog.Logger
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching the configuration file at path. The parent
// directory is watched so files replaced by rename are picked up.
// A nil logger discards log output.
func Watch(path string, logger *slog.Logger) (*Watcher, error) {
	path = filepath.Clean(path)
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	w := &Watcher{
		Updates: make(chan Config, 1),
		Errors:  make(chan error, 1),
		path:    path,
		watcher: fw,
		log:     logger,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Updates)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	// Reload once the file has been quiet for debounce so the last
	// write of a burst is always the one loaded.
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		case <-timer.C:
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(w.Errors, err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload failed", "path", w.path, "err", err)
		w.send(w.Errors, err)
		return
	}
	w.log.Info("config reloaded", "path", w.path)
	w.sendConfig(cfg)
}

// sendConfig replaces a pending unread configuration with cfg.
func (w *Watcher) sendConfig(cfg Config) {
	for {
		select {
		case w.Updates <- cfg:
			return
		case <-w.closeCh:
			return
		default:
		}
		select {
		case <-w.Updates:
		default:
		}
	}
}

func (w *Watcher) send(ch chan error, err error) {
	select {
	case ch <- err:
	case <-w.closeCh:
	default:
		// Drop: a previous error is still pending.
	}
}
