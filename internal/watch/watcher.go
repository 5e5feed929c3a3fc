package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 500 * time.Millisecond

// SettingsWatcher watches the database file (and its WAL/SHM siblings) and
// calls onChange once per burst of writes.
type SettingsWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	names    map[string]struct{}
	debounce time.Duration
	onChange func(context.Context)
	log      *zap.Logger
	pending  time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	events   int
}

func NewSettingsWatcher(dbPath string, debounce time.Duration, onChange func(context.Context), log *zap.Logger) (*SettingsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		abs = dbPath
	}
	base := filepath.Base(abs)
	return &SettingsWatcher{
		watcher:  w,
		dir:      filepath.Dir(abs),
		names:    map[string]struct{}{base: {}, base + "-wal": {}, base + "-shm": {}, base + "-journal": {}},
		debounce: debounce,
		onChange: onChange,
		log:      log.Named("watch"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start is non-blocking; events are handled on a background goroutine.
func (sw *SettingsWatcher) Start(ctx context.Context) error {
	sw.mu.Lock()
	if sw.running {
		sw.mu.Unlock()
		return nil
	}
	sw.running = true
	sw.mu.Unlock()

	if err := sw.watcher.Add(sw.dir); err != nil {
		sw.mu.Lock()
		sw.running = false
		sw.mu.Unlock()
		_ = sw.watcher.Close()
		return err
	}
	sw.log.Debug("watching settings", zap.String("dir", sw.dir))
	go sw.run(ctx)
	return nil
}

func (sw *SettingsWatcher) Stop() {
	sw.mu.Lock()
	if !sw.running {
		sw.mu.Unlock()
		return
	}
	sw.running = false
	sw.mu.Unlock()

	close(sw.stopCh)
	<-sw.doneCh
	if err := sw.watcher.Close(); err != nil {
		sw.log.Warn("close watcher", zap.Error(err))
	}
}

// Events reports how many relevant filesystem events were seen.
func (sw *SettingsWatcher) Events() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.events
}

func (sw *SettingsWatcher) run(ctx context.Context) {
	defer close(sw.doneCh)

	tick := time.NewTicker(sw.debounce / 5)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopCh:
			return
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handle(ev)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warn("watch error", zap.Error(err))
		case <-tick.C:
			sw.flush(ctx)
		}
	}
}

func (sw *SettingsWatcher) handle(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return
	}
	if _, ok := sw.names[filepath.Base(ev.Name)]; !ok {
		return
	}
	sw.mu.Lock()
	sw.events++
	sw.pending = time.Now()
	sw.mu.Unlock()
}

func (sw *SettingsWatcher) flush(ctx context.Context) {
	sw.mu.Lock()
	if sw.pending.IsZero() || time.Since(sw.pending) < sw.debounce {
		sw.mu.Unlock()
		return
	}
	sw.pending = time.Time{}
	sw.mu.Unlock()

	if sw.onChange != nil {
		sw.onChange(ctx)
	}
}
