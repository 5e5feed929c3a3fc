package notify

import (
	"context"

	"go.uber.org/zap"
)

// Deliverer sends best-effort notifications: background channel first, then
// the foreground one. Failures are logged and dropped, never retried.
type Deliverer struct {
	perms      Permissions
	background Channel
	foreground Channel
	log        *zap.Logger
}

func NewDeliverer(perms Permissions, background, foreground Channel, log *zap.Logger) *Deliverer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Deliverer{perms: perms, background: background, foreground: foreground, log: log.Named("notify")}
}

func (d *Deliverer) Deliver(ctx context.Context, title, body string) {
	if d.perms == nil || d.perms.State(ctx) != PermissionGranted {
		d.log.Debug("notification skipped, permission not granted", zap.String("title", title))
		return
	}
	n := Notification{Title: title, Body: body, Tag: ReminderTag}
	for _, ch := range []Channel{d.background, d.foreground} {
		if ch == nil || !ch.Available() {
			continue
		}
		if err := ch.Send(ctx, n); err != nil {
			d.log.Warn("notification channel failed", zap.String("channel", ch.Name()), zap.Error(err))
			continue
		}
		d.log.Info("notification delivered", zap.String("channel", ch.Name()), zap.String("body", body))
		return
	}
	d.log.Debug("notification skipped, no channel available", zap.String("title", title))
}
