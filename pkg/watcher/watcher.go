// Package watcher notifies a GlobalClock's configuration loader when
// the backing scenario file changes, debounced the way the teacher's
// pkg/watcher package debounces rapid file events before invoking a
// handler.
package watcher

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/butter-bot-machines/desim/pkg/logging"
	"github.com/butter-bot-machines/desim/pkg/timing"
)

// Watcher watches a single file for changes and calls a debounced
// handler when it settles.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *debouncer
	logger    logging.Logger
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// New creates a Watcher on path that invokes onChange (debounced by
// debounceDelay/maxDelay, in seconds) whenever the file is written or
// created. clock backs the debounce timer; pass nil for the real
// system clock.
func New(path string, clock timing.Clock, debounceDelay, maxDelay float64, onChange func(), logger logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, err
	}
	if logger == nil {
		logger = noopLogger{}
	}

	w := &Watcher{
		fsw:       fsw,
		debouncer: newDebouncer(clock, secondsToDuration(debounceDelay), secondsToDuration(maxDelay)),
		logger:    logger.WithGroup("watcher"),
		done:      make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run(path, onChange)
	return w, nil
}

func (w *Watcher) run(path string, onChange func()) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("file event", "path", ev.Name, "op", ev.Op.String())
			w.debouncer.debounce(path, onChange)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// Stop stops watching and releases the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()
		w.debouncer.stop()
		w.wg.Wait()
	})
}
