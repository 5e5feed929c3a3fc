package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

const (
	ReminderTitle = "Bedtime Reminder"
	ReminderTag   = "visionary-bedtime-reminder"
)

type Notification struct {
	Title string
	Body  string
	Tag   string
}

type Channel interface {
	Name() string
	Available() bool
	Send(ctx context.Context, n Notification) error
}

var ErrUnsupportedPlatform = errors.New("notify: no desktop notifier for this platform")

// Runner executes an external command; tests swap it out.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// DesktopChannel posts OS notifications through notify-send or osascript, so
// they show up while the terminal is not focused.
type DesktopChannel struct {
	enabled  bool
	goos     string
	run      Runner
	lookPath func(string) (string, error)
}

func NewDesktopChannel(enabled bool) *DesktopChannel {
	return &DesktopChannel{enabled: enabled, goos: runtime.GOOS, run: execRunner, lookPath: exec.LookPath}
}

func (d *DesktopChannel) Name() string { return "desktop" }

func (d *DesktopChannel) Available() bool {
	if !d.enabled {
		return false
	}
	bin := d.binary()
	if bin == "" {
		return false
	}
	_, err := d.lookPath(bin)
	return err == nil
}

func (d *DesktopChannel) Send(ctx context.Context, n Notification) error {
	switch d.goos {
	case "linux":
		args := []string{"--app-name=visionary"}
		if n.Tag != "" {
			args = append(args, "--hint=string:x-canonical-private-synchronous:"+n.Tag)
		}
		return d.run(ctx, "notify-send", append(args, n.Title, n.Body)...)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return d.run(ctx, "osascript", "-e", script)
	default:
		return ErrUnsupportedPlatform
	}
}

func (d *DesktopChannel) binary() string {
	switch d.goos {
	case "linux":
		return "notify-send"
	case "darwin":
		return "osascript"
	default:
		return ""
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// FuncChannel adapts a plain function, e.g. a TUI banner or a stderr line.
type FuncChannel struct {
	name string
	fn   func(Notification)
}

func NewFuncChannel(name string, fn func(Notification)) *FuncChannel {
	return &FuncChannel{name: name, fn: fn}
}

func (f *FuncChannel) Name() string { return f.name }

func (f *FuncChannel) Available() bool { return f != nil && f.fn != nil }

func (f *FuncChannel) Send(_ context.Context, n Notification) error {
	if !f.Available() {
		return errors.New("notify: foreground channel not attached")
	}
	f.fn(n)
	return nil
}

// Relay is a foreground channel whose sink is attached later, e.g. once the
// TUI is running. It is unavailable while detached.
type Relay struct {
	mu   sync.RWMutex
	sink Channel
}

func NewRelay() *Relay { return &Relay{} }

func (r *Relay) Attach(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sink = ch
}

func (r *Relay) Detach() { r.Attach(nil) }

func (r *Relay) current() Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sink
}

func (r *Relay) Name() string {
	if sink := r.current(); sink != nil {
		return sink.Name()
	}
	return "foreground"
}

func (r *Relay) Available() bool {
	sink := r.current()
	return sink != nil && sink.Available()
}

func (r *Relay) Send(ctx context.Context, n Notification) error {
	sink := r.current()
	if sink == nil {
		return errors.New("notify: foreground channel not attached")
	}
	return sink.Send(ctx, n)
}
