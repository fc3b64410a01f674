package snomed

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/alexanderbrown/snomed-squasher/errors"
	"github.com/alexanderbrown/snomed-squasher/logger"
)

// Watcher rebuilds and republishes a Store's snapshot when new release
// directories appear under the definitions path. Rebuilds happen off to the
// side; a failed build is logged and the previously published snapshot stays
// active.
type Watcher struct {
	store           *Store
	definitionsPath string
	opts            []Option
	debounce        time.Duration
	logger          *zap.SugaredLogger

	fs     *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

const defaultDebounce = 2 * time.Second

// NewWatcher creates a watcher over a definitions directory. Load options
// are reused for every rebuild.
func NewWatcher(store *Store, definitionsPath string, opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filesystem watcher")
	}
	if err := fs.Add(definitionsPath); err != nil {
		fs.Close()
		return nil, errors.Wrapf(err, "cannot watch %s", definitionsPath)
	}

	return &Watcher{
		store:           store,
		definitionsPath: definitionsPath,
		opts:            opts,
		debounce:        defaultDebounce,
		logger:          logger.Named("snomed.watcher"),
		fs:              fs,
	}, nil
}

// Start begins watching. Stop releases the watcher.
func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Infow("Watching definitions path", "file", w.definitionsPath)
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.fs.Close()
	w.wg.Wait()
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	// New release directories arrive as many create/write events while the
	// snapshot files are copied in; a debounce timer coalesces them into a
	// single rebuild once the copy has settled.
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			w.logger.Debugw("Definitions change detected",
				"file", filepath.Base(event.Name), "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("Filesystem watcher error", "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			w.rebuild()
		}
	}
}

func (w *Watcher) rebuild() {
	started := time.Now()
	snapshot, err := w.store.Reload(w.definitionsPath, w.opts...)
	if err != nil {
		w.logger.Errorw("Snapshot rebuild failed, keeping previous snapshot",
			"error", err)
		return
	}
	w.logger.Infow("Snapshot rebuilt",
		"duration_ms", time.Since(started).Milliseconds(),
		"release", lastString(snapshot.Releases()),
	)
}

func lastString(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[len(list)-1]
}
