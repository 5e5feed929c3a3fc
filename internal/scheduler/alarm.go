package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrAlarmStopped       = errors.New("scheduler: alarm stopped")
)

// Alarm is a single re-armable wake-up. Arming replaces any pending instant;
// when it comes due the instant is sent on C, or dropped if nobody is
// reading.
type Alarm struct {
	mu      sync.Mutex
	at      time.Time
	out     chan time.Time
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewAlarm() *Alarm {
	return &Alarm{
		out:    make(chan time.Time, 1),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (a *Alarm) C() <-chan time.Time {
	return a.out
}

func (a *Alarm) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started || a.stopped {
		return
	}
	a.started = true
	go a.loop()
}

func (a *Alarm) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	close(a.stopCh)
	started := a.started
	a.mu.Unlock()
	if started {
		<-a.doneCh
	}
}

func (a *Alarm) Arm(at time.Time) error {
	if at.IsZero() {
		return ErrInvalidTriggerTime
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return ErrAlarmStopped
	}
	a.at = at
	a.signalWakeup()
	return nil
}

func (a *Alarm) Disarm() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.at = time.Time{}
	a.signalWakeup()
}

// Next reports the pending instant, if any.
func (a *Alarm) Next() (time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.at, !a.at.IsZero()
}

func (a *Alarm) Dropped() uint64 {
	return atomic.LoadUint64(&a.dropped)
}

func (a *Alarm) loop() {
	defer close(a.doneCh)
	defer close(a.out)

	var timer *time.Timer
	for {
		next, armed := a.Next()
		if !armed {
			select {
			case <-a.wakeup:
				continue
			case <-a.stopCh:
				stopTimer(timer)
				return
			}
		}

		wait := time.Until(next)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			at, due := a.popDue(time.Now())
			if !due {
				continue
			}
			select {
			case a.out <- at:
			default:
				atomic.AddUint64(&a.dropped, 1)
			}
		case <-a.wakeup:
			continue
		case <-a.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (a *Alarm) signalWakeup() {
	select {
	case a.wakeup <- struct{}{}:
	default:
	}
}

func (a *Alarm) popDue(now time.Time) (time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.at.IsZero() || a.at.After(now) {
		return time.Time{}, false
	}
	at := a.at
	a.at = time.Time{}
	return at, true
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
