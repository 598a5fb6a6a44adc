package launch

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a launch file whenever it changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors replacing the file via rename are picked up.
type Watcher struct {
	path     string
	onChange func(Set)
	logger   zerolog.Logger

	watcher *fsnotify.Watcher

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewWatcher starts watching path. onChange receives each successfully
// reloaded set; parse failures are logged and the previous set stays in use.
func NewWatcher(path string, onChange func(Set), logger zerolog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		logger:   logger,
		watcher:  fsw,
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Str("path", w.path).Msg("launch watcher error")
		}
	}
}

func (w *Watcher) reload() {
	set, err := Load(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("launch file reload failed")
		return
	}
	w.logger.Debug().Str("path", w.path).Int("configurations", len(set.Configurations)).Msg("launch file reloaded")
	if w.onChange != nil {
		w.onChange(set)
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
