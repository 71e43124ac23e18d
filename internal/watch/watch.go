// Package watch re-runs validation whenever infrastructure-as-code files
// change under the watched roots. It never fixes or releases; it is a
// feedback loop for editing, not an unattended remediation daemon.
package watch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/discover"
)

// Watcher debounces filesystem events on IaC files and invokes a callback
// once the burst settles.
type Watcher struct {
	roots    []string
	walker   *discover.Walker
	log      *zap.Logger
	debounce time.Duration
	onChange func() // invoked after each settled burst of relevant events
}

// New creates a Watcher over the given roots. onChange runs on the watch
// goroutine; it must return before the next burst can fire.
func New(roots []string, walker *discover.Walker, log *zap.Logger, onChange func()) *Watcher {
	return &Watcher{
		roots:    roots,
		walker:   walker,
		log:      log,
		debounce: 500 * time.Millisecond,
		onChange: onChange,
	}
}

// Run watches until ctx is cancelled. It returns the fsnotify setup error
// if the watcher cannot start.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dirs := w.walker.Dirs(w.roots)
	if len(dirs) == 0 {
		return fmt.Errorf("nothing to watch under %v", w.roots)
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			w.log.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	w.log.Info("watching for changes", zap.Int("dirs", len(dirs)))

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			// New directories need a watch of their own.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = fw.Add(event.Name)
					continue
				}
			}
			if _, relevant := discover.Classify(event.Name); !relevant {
				continue
			}
			w.log.Debug("change detected",
				zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				// An expired-but-unread timer would fire immediately after
				// Reset; drain it so the window genuinely restarts.
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-timerC:
			timer = nil
			timerC = nil
			w.onChange()
		}
	}
}
