package scheduler

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/notify"
	"github.com/sandeepkv93/visionary/internal/settings"
)

type SaveCode string

const (
	SavePermissionDenied SaveCode = "permission-denied"
	SaveNoDays           SaveCode = "no-days"
	SaveInvalid          SaveCode = "invalid"
	SaveUnknown          SaveCode = "unknown"
)

// SaveResult is the outcome of Save. Draft is what the editor should show
// afterwards; on success it is the persisted rule.
type SaveResult struct {
	OK    bool
	Code  SaveCode
	Draft model.SleepReminder
	Err   error
}

func (r SaveResult) Message() string {
	if r.OK {
		return "Bedtime reminder saved."
	}
	switch r.Code {
	case SavePermissionDenied:
		return "Notifications are blocked. Run `visionary permission grant` to allow them."
	case SaveNoDays:
		return "Please pick at least one day or enable \"Every day\"."
	default:
		return "Could not save. Please try again."
	}
}

// Save persists draft as the active rule and reschedules against it. Enabling
// requires notification permission; an explicit day set must not be empty.
func (s *Scheduler) Save(ctx context.Context, draft model.SleepReminder) SaveResult {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return SaveResult{Code: SaveUnknown, Draft: draft, Err: errors.New("scheduler: stopped")}
	}
	res := s.saveLocked(ctx, draft.Clone())
	if !res.OK {
		s.mu.Unlock()
		return res
	}
	s.unlockAndEmit()
	return res
}

func (s *Scheduler) saveLocked(ctx context.Context, draft model.SleepReminder) SaveResult {
	if draft.Enabled && s.perms != nil {
		if perm := s.perms.Request(ctx); perm != notify.PermissionGranted {
			draft.Enabled = false
			s.log.Info("save refused, notifications not permitted", zap.String("permission", string(perm)))
			return SaveResult{Code: SavePermissionDenied, Draft: draft}
		}
	}
	if !draft.HasDays() {
		return SaveResult{Code: SaveNoDays, Draft: draft}
	}

	now := s.now()
	current := s.store.Load(ctx)
	mark := maxTime(current.Watermark(), s.watermark)
	if mark.IsZero() {
		mark = now
	}

	saved, err := s.store.Save(ctx, draft.WithWatermark(mark))
	if err != nil {
		var verr *settings.ValidationError
		if errors.As(err, &verr) {
			return SaveResult{Code: SaveInvalid, Draft: draft, Err: err}
		}
		s.log.Warn("save reminder failed", zap.Error(err))
		return SaveResult{Code: SaveUnknown, Draft: draft, Err: err}
	}
	s.log.Info("reminder saved", zap.String("preview", model.FormatPreview(saved)))

	s.rescheduleLocked(ctx)
	return SaveResult{OK: true, Draft: s.active.Clone()}
}
