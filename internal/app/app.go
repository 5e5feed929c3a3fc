package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/api"
	"github.com/sandeepkv93/visionary/internal/catalog"
	"github.com/sandeepkv93/visionary/internal/checkins"
	"github.com/sandeepkv93/visionary/internal/config"
	"github.com/sandeepkv93/visionary/internal/notify"
	"github.com/sandeepkv93/visionary/internal/results"
	"github.com/sandeepkv93/visionary/internal/scheduler"
	"github.com/sandeepkv93/visionary/internal/settings"
	"github.com/sandeepkv93/visionary/internal/storage"
	"github.com/sandeepkv93/visionary/internal/update"
	"github.com/sandeepkv93/visionary/internal/watch"
)

// App owns every long-lived component. New only wires; the Run* methods start
// the scheduler and watcher and block until the context ends.
type App struct {
	cfg  config.Config
	log  *zap.Logger
	repo *storage.SQLiteRepository

	Store       *settings.Store
	Permissions *notify.StoredPermissions
	Deliverer   *notify.Deliverer
	Scheduler   *scheduler.Scheduler
	Catalog     *catalog.Catalog
	Results     *results.Service
	Checkins    *checkins.Service
	API         *api.API

	foreground *notify.Relay
	watcher    *watch.SettingsWatcher

	mu       sync.RWMutex
	listener func(scheduler.Snapshot)
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	repo, err := storage.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	cat, err := catalog.Load()
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	a := &App{cfg: cfg, log: log, repo: repo, Catalog: cat, foreground: notify.NewRelay()}
	zone := settings.ZoneDetector(cfg.Timezone)
	a.Store = settings.NewStore(repo, log, settings.WithZoneDetector(zone))

	desktop := notify.NewDesktopChannel(cfg.DesktopNotifications)
	a.Permissions = notify.NewStoredPermissions(repo, cfg.NotificationsBlocked, log, desktop, a.foreground)
	a.Deliverer = notify.NewDeliverer(a.Permissions, desktop, a.foreground, log)
	a.Scheduler = scheduler.New(a.Store, a.Deliverer, scheduler.Config{
		Interval:    cfg.PollInterval,
		Logger:      log,
		Permissions: a.Permissions,
		OnChange:    a.publish,
	})
	a.Results = results.NewService(repo, log)
	a.Checkins = checkins.NewService(repo, log, checkins.WithZone(zone))
	a.API = api.NewAPI(cat, a.Store, a.Results, log)
	return a, nil
}

// Subscribe replaces the snapshot listener. fn runs on scheduler goroutines
// and must not block.
func (a *App) Subscribe(fn func(scheduler.Snapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listener = fn
}

func (a *App) publish(snap scheduler.Snapshot) {
	a.mu.RLock()
	fn := a.listener
	a.mu.RUnlock()
	if fn != nil {
		fn(snap)
	}
}

// Start launches the scheduler and, when configured, the settings watcher.
func (a *App) Start(ctx context.Context) {
	a.Scheduler.Start(ctx)
	if a.cfg.WatchSettings && a.watcher == nil {
		a.watcher = a.startWatcher(ctx)
	}
	a.log.Info("visionary started",
		zap.String("db", a.repo.Path()),
		zap.Duration("poll", a.cfg.PollInterval),
		zap.Bool("watch", a.watcher != nil),
	)
}

func (a *App) startWatcher(ctx context.Context) *watch.SettingsWatcher {
	w, err := watch.NewSettingsWatcher(a.repo.Path(), watch.DefaultDebounce, a.Scheduler.ExternalChange, a.log)
	if err != nil {
		a.log.Warn("settings watcher unavailable", zap.Error(err))
		return nil
	}
	if err := w.Start(ctx); err != nil {
		a.log.Warn("settings watcher failed to start", zap.Error(err))
		return nil
	}
	return w
}

// RunTUI runs the terminal UI. Reminders reach the UI as banners; snapshots
// keep the active panel current.
func (a *App) RunTUI(ctx context.Context, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := update.NewModel(update.Options{
		Context:     ctx,
		Reminders:   a.Scheduler,
		Permissions: a.Permissions,
		Catalog:     a.Catalog,
		Checkins:    a.Checkins,
		Results:     a.Results,
		Logger:      a.log,
	})
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(m, opts...)

	// Send blocks until the program loop runs and Deliver holds the
	// scheduler lock, so messages are queued and forwarded in order.
	inbox := make(chan tea.Msg, tuiInboxSize)
	go forward(ctx, p, inbox)
	enqueue := func(msg tea.Msg) {
		select {
		case inbox <- msg:
		default:
			a.log.Warn("tui inbox full, dropping message", zap.String("type", fmt.Sprintf("%T", msg)))
		}
	}
	a.Subscribe(func(snap scheduler.Snapshot) { enqueue(update.SnapshotMsg{Snapshot: snap}) })
	a.foreground.Attach(notify.NewFuncChannel("tui", func(n notify.Notification) {
		enqueue(update.ReminderMsg{Title: n.Title, Body: n.Body})
	}))
	defer func() {
		a.Subscribe(nil)
		a.foreground.Detach()
	}()

	// Started after the channels are attached so launch catch-up reaches the UI.
	a.Start(ctx)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

const tuiInboxSize = 64

func forward(ctx context.Context, p *tea.Program, inbox <-chan tea.Msg) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-inbox:
			p.Send(msg)
		}
	}
}

// RunDaemon keeps the scheduler running headless until ctx ends. Foreground
// notifications become lines on out.
func (a *App) RunDaemon(ctx context.Context, out io.Writer) error {
	if out == nil {
		out = os.Stderr
	}
	a.foreground.Attach(StreamChannel(out))
	a.Start(ctx)
	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return nil
}

// RunServe runs the HTTP API next to the headless scheduler.
func (a *App) RunServe(ctx context.Context, addr string, out io.Writer) error {
	if addr == "" {
		addr = a.cfg.HTTPAddr
	}
	if out == nil {
		out = os.Stderr
	}
	a.foreground.Attach(StreamChannel(out))
	a.Start(ctx)
	return a.API.Serve(ctx, addr)
}

// StreamChannel prints each notification as one line on w.
func StreamChannel(w io.Writer) *notify.FuncChannel {
	var mu sync.Mutex
	return notify.NewFuncChannel("stream", func(n notify.Notification) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "%s: %s\n", n.Title, n.Body)
	})
}

// Close stops background work and closes the database. Safe to call once
// after any Run* method returns.
func (a *App) Close() error {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.Scheduler.Stop()
	if err := a.repo.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
