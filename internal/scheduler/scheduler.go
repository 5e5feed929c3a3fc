package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/notify"
)

const (
	DefaultInterval = 30 * time.Second

	DefaultReminderBody = "Time to rest your eyes. Consistent sleep supports healthy vision."
)

type State int

const (
	StateIdle State = iota
	StateArmed
	StateDormant
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateDormant:
		return "dormant"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RuleStore loads and persists the active rule.
type RuleStore interface {
	Load(ctx context.Context) model.SleepReminder
	Save(ctx context.Context, rule model.SleepReminder) (model.SleepReminder, error)
	Zone() string
}

type Notifier interface {
	Deliver(ctx context.Context, title, body string)
}

type Config struct {
	Interval    time.Duration
	Now         func() time.Time
	Logger      *zap.Logger
	Permissions notify.Permissions
	// OnChange receives a snapshot after every reconcile, in reconcile order.
	// It runs on the caller's goroutine after the state lock is released but
	// while emits are serialized, so it must not block or call back into the
	// Scheduler.
	OnChange func(Snapshot)
}

type Snapshot struct {
	State      State
	Active     model.SleepReminder
	Next       time.Time
	HasNext    bool
	LastMissed time.Time
	Watermark  time.Time
}

// Scheduler reconciles the persisted reminder rule against the clock. All
// entry points serialize on one mutex; the loop goroutine owns the poll
// ticker.
type Scheduler struct {
	mu sync.Mutex
	// emitMu is taken before mu is released so snapshots reach onChange in
	// the order they were taken.
	emitMu   sync.Mutex
	store    RuleStore
	notifier Notifier
	perms    notify.Permissions
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger
	onChange func(Snapshot)

	state      State
	active     model.SleepReminder
	watermark  time.Time
	lastMissed time.Time
	visible    bool
	lastPoll   time.Time

	alarm   *Alarm
	rearm   chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

func New(store RuleStore, notifier Notifier, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Scheduler{
		store:    store,
		notifier: notifier,
		perms:    cfg.Permissions,
		interval: cfg.Interval,
		now:      cfg.Now,
		log:      cfg.Logger.Named("scheduler"),
		onChange: cfg.OnChange,
		state:    StateIdle,
		visible:  true,
		alarm:    NewAlarm(),
		rearm:    make(chan struct{}, 1),
	}
}

// Start reconciles once and launches the poll loop. Calling it again while
// running is a no-op; a stopped scheduler cannot be restarted.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running || s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.alarm.Start()
	s.rescheduleLocked(ctx)
	stopCh, doneCh := s.stopCh, s.doneCh
	s.unlockAndEmit()

	go s.loop(ctx, stopCh, doneCh)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.state = StateStopped
	running := s.running
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	if running {
		close(stopCh)
		<-doneCh
	}
	s.alarm.Stop()
	s.log.Debug("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	alarmC := s.alarm.C()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-s.rearm:
			ticker.Reset(s.interval)
		case <-ticker.C:
			s.poll(ctx)
		case at, ok := <-alarmC:
			if !ok {
				alarmC = nil
				continue
			}
			s.log.Debug("wake alarm fired", zap.Time("at", at))
			s.Tick(ctx)
		}
	}
}

// poll is one ticker beat. A beat arriving long after the previous one means
// the process was suspended, which is handled like regaining visibility.
func (s *Scheduler) poll(ctx context.Context) {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	now := s.now()
	gap := now.Sub(s.lastPoll)
	suspended := !s.lastPoll.IsZero() && gap > 2*s.interval
	s.lastPoll = now
	if suspended {
		s.log.Info("clock jump detected, catching up", zap.Duration("gap", gap))
		s.rescheduleLocked(ctx)
	} else {
		s.tickLocked(ctx)
	}
	s.unlockAndEmit()
}

// Reschedule disarms, reloads the rule and catches up on every occurrence
// since the watermark before arming again.
func (s *Scheduler) Reschedule(ctx context.Context) {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.rescheduleLocked(ctx)
	s.unlockAndEmit()
}

// Tick delivers the occurrences between the watermark and now and advances
// the watermark.
func (s *Scheduler) Tick(ctx context.Context) {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.tickLocked(ctx)
	s.unlockAndEmit()
}

// SetVisible records UI visibility; a hidden to visible transition forces a
// reschedule.
func (s *Scheduler) SetVisible(ctx context.Context, visible bool) {
	s.mu.Lock()
	was := s.visible
	s.visible = visible
	if s.state == StateStopped || !visible || was {
		s.mu.Unlock()
		return
	}
	s.log.Debug("visibility regained")
	s.rescheduleLocked(ctx)
	s.unlockAndEmit()
}

// ExternalChange reacts to another process rewriting the settings. Writes
// that only move the watermark are ignored.
func (s *Scheduler) ExternalChange(ctx context.Context) {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	rule := s.store.Load(ctx)
	if rule.SameSchedule(s.active) && s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	s.log.Info("settings changed externally", zap.String("preview", model.FormatPreview(rule)))
	s.rescheduleLocked(ctx)
	s.unlockAndEmit()
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Scheduler) rescheduleLocked(ctx context.Context) {
	s.alarm.Disarm()
	s.signalRearm()

	rule := s.guardZoneLocked(ctx, s.store.Load(ctx))
	s.active = rule
	now := s.now()
	from := s.lowerBoundLocked(rule, now)

	if !rule.Enabled {
		s.state = StateDormant
		s.watermark = maxTime(from, now)
		s.log.Debug("reminder disabled, dormant")
		return
	}

	missed := model.OccurrencesBetween(rule, from, now)
	for _, occ := range missed {
		s.lastMissed = occ
		s.deliver(ctx, fmt.Sprintf("You had a bedtime reminder at %s.", model.FormatInstant(rule, occ)))
	}
	if len(missed) > 0 {
		s.log.Info("caught up missed reminders", zap.Int("count", len(missed)), zap.Time("last", s.lastMissed))
	}

	s.advanceLocked(ctx, rule, maxTime(from, now))
	s.state = StateArmed
	s.armAlarmLocked(now)
}

func (s *Scheduler) tickLocked(ctx context.Context) {
	rule := s.guardZoneLocked(ctx, s.store.Load(ctx))
	s.active = rule
	if !rule.Enabled {
		s.state = StateDormant
		return
	}
	now := s.now()
	from := s.lowerBoundLocked(rule, now)
	due := model.OccurrencesBetween(rule, from, now)
	for range due {
		s.deliver(ctx, DefaultReminderBody)
	}
	if len(due) > 0 {
		s.log.Info("reminder due", zap.Int("count", len(due)))
	}
	s.advanceLocked(ctx, rule, maxTime(from, now))
	s.state = StateArmed
	s.armAlarmLocked(now)
}

// lowerBoundLocked is the start of the next reconcile window: the later of
// the persisted and in-memory watermarks.
func (s *Scheduler) lowerBoundLocked(rule model.SleepReminder, now time.Time) time.Time {
	from := maxTime(rule.Watermark(), s.watermark)
	if from.IsZero() {
		return now
	}
	return from
}

func (s *Scheduler) advanceLocked(ctx context.Context, rule model.SleepReminder, mark time.Time) {
	s.watermark = mark
	saved, err := s.store.Save(ctx, rule.WithWatermark(mark))
	if err != nil {
		s.log.Warn("persist watermark failed", zap.Error(err))
		s.active = rule.WithWatermark(mark)
		return
	}
	s.active = saved
}

func (s *Scheduler) guardZoneLocked(ctx context.Context, rule model.SleepReminder) model.SleepReminder {
	zone := s.store.Zone()
	if zone == "" || zone == rule.TZ {
		return rule
	}
	s.log.Info("time zone changed", zap.String("from", rule.TZ), zap.String("to", zone))
	saved, err := s.store.Save(ctx, rule)
	if err != nil {
		s.log.Warn("persist time zone failed", zap.Error(err))
		rule.TZ = zone
		return rule
	}
	return saved
}

func (s *Scheduler) armAlarmLocked(now time.Time) {
	next, ok := model.NextOccurrence(s.active, now)
	if !ok {
		return
	}
	if err := s.alarm.Arm(next); err != nil && !errors.Is(err, ErrAlarmStopped) {
		s.log.Warn("arm wake alarm failed", zap.Error(err))
	}
}

func (s *Scheduler) deliver(ctx context.Context, body string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Deliver(ctx, notify.ReminderTitle, body)
}

func (s *Scheduler) signalRearm() {
	select {
	case s.rearm <- struct{}{}:
	default:
	}
}

func (s *Scheduler) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:      s.state,
		Active:     s.active.Clone(),
		LastMissed: s.lastMissed,
		Watermark:  s.watermark,
	}
	if s.state == StateArmed {
		snap.Next, snap.HasNext = model.NextOccurrence(s.active, s.now())
	}
	return snap
}

// unlockAndEmit releases mu and hands the current snapshot to onChange. The
// caller must hold mu.
func (s *Scheduler) unlockAndEmit() {
	snap := s.snapshotLocked()
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.mu.Unlock()
	if s.onChange != nil {
		s.onChange(snap)
	}
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
