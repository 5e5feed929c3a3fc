package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/visionary/internal/config"
	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/notify"
	"github.com/sandeepkv93/visionary/internal/scheduler"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "visionary.db")
	cfg.LogFile = ""
	cfg.PollInterval = time.Hour
	cfg.Timezone = "UTC"
	cfg.DesktopNotifications = false
	cfg.WatchSettings = false
	return cfg
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewWiresDefaults(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	rule := a.Store.Load(ctx)
	assert.False(t, rule.Enabled)
	assert.Equal(t, model.DefaultHour, rule.Hour)
	assert.Equal(t, "UTC", rule.TZ)
	assert.Equal(t, notify.PermissionDefault, a.Permissions.State(ctx))
	assert.Equal(t, scheduler.StateIdle, a.Scheduler.Snapshot().State)
	assert.NotEmpty(t, a.Catalog.All())

	sum, err := a.Checkins.Summary(ctx, time.Now())
	require.NoError(t, err)
	assert.False(t, sum.CheckedToday)
	assert.Len(t, sum.Last7, 7)
}

func TestCheckinsShareTheDatabase(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	_, err := a.Checkins.Add(ctx, 4, "")
	require.NoError(t, err)
	_, err = a.Checkins.Add(ctx, 2, "screens all day")
	require.NoError(t, err)

	n, err := a.Checkins.Streak(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	series, err := a.Checkins.Last7(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, series[len(series)-1].Mood)
}

func TestRunDaemonCatchesUpOnStart(t *testing.T) {
	a := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, a.Permissions.Set(ctx, notify.PermissionGranted))
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	rule := model.SleepReminder{
		Enabled:  true,
		Hour:     past.Hour(),
		Minute:   past.Minute(),
		Days:     model.AllDays(),
		EveryDay: true,
		TZ:       "UTC",
	}.WithWatermark(now.Add(-23 * time.Hour))
	_, err := a.Store.Save(ctx, rule)
	require.NoError(t, err)

	started := make(chan scheduler.Snapshot, 1)
	a.Subscribe(func(snap scheduler.Snapshot) {
		select {
		case started <- snap:
		default:
		}
	})

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- a.RunDaemon(ctx, out) }()

	var snap scheduler.Snapshot
	select {
	case snap = <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not start")
	}
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, scheduler.StateArmed, snap.State)
	assert.True(t, snap.HasNext)
	assert.False(t, snap.LastMissed.IsZero())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], notify.ReminderTitle+": You had a bedtime reminder at"), lines[0])
}

func TestRunDaemonSkipsDeliveryWithoutPermission(t *testing.T) {
	a := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	rule := model.SleepReminder{
		Enabled:  true,
		Hour:     past.Hour(),
		Minute:   past.Minute(),
		Days:     model.AllDays(),
		EveryDay: true,
		TZ:       "UTC",
	}.WithWatermark(now.Add(-23 * time.Hour))
	_, err := a.Store.Save(ctx, rule)
	require.NoError(t, err)

	started := make(chan struct{}, 1)
	a.Subscribe(func(scheduler.Snapshot) {
		select {
		case started <- struct{}{}:
		default:
		}
	})

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- a.RunDaemon(ctx, out) }()
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not start")
	}
	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, out.String())
}

func TestStreamChannelWritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	ch := StreamChannel(&buf)
	require.True(t, ch.Available())
	require.NoError(t, ch.Send(context.Background(), notify.Notification{Title: "Bedtime Reminder", Body: "Sleep."}))
	assert.Equal(t, "Bedtime Reminder: Sleep.\n", buf.String())
}

func TestAPIServesStoredReminder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	a.API.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reminder", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"enabled":false`)
}
