package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/catalog"
	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/notify"
	"github.com/sandeepkv93/visionary/internal/results"
	"github.com/sandeepkv93/visionary/internal/scheduler"
)

type View string

const (
	ViewSleep     View = "Sleep"
	ViewExercises View = "Exercises"
	ViewDashboard View = "Dashboard"
	ViewAcuity    View = "Acuity"
)

// viewOrder is the tab cycle.
var viewOrder = []View{ViewSleep, ViewExercises, ViewDashboard, ViewAcuity}

// BlockedMessage is shown while the notification permission is denied.
const BlockedMessage = "Notifications are blocked. Run `visionary permission grant` to allow them."

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Sleep     string
	Exercises string
	Dashboard string
	Acuity    string
	Help      string
	Quit      string
}

// ReminderService is the part of the scheduler the TUI drives.
type ReminderService interface {
	Snapshot() scheduler.Snapshot
	Save(ctx context.Context, draft model.SleepReminder) scheduler.SaveResult
	SetVisible(ctx context.Context, visible bool)
}

type PermissionReader interface {
	State(ctx context.Context) notify.Permission
}

type Options struct {
	Context     context.Context
	Reminders   ReminderService
	Permissions PermissionReader
	Catalog     *catalog.Catalog
	Checkins    CheckinService
	Results     ResultRecorder
	Now         func() time.Time
	// Rotate picks each tumbling-E orientation; random when nil.
	Rotate func() results.Rotation
	Logger *zap.Logger
}

type Model struct {
	CurrentView   View
	Draft         model.SleepReminder
	Active        scheduler.Snapshot
	DayCursor     int
	Permission    notify.Permission
	Saving        bool
	Exercises     ExercisesState
	Session       SessionState
	Dashboard     DashboardState
	Acuity        AcuityState
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	ctx          context.Context
	reminders    ReminderService
	perms        PermissionReader
	catalog      *catalog.Catalog
	checkins     CheckinService
	results      ResultRecorder
	rotate       func() results.Rotation
	now          func() time.Time
	log          *zap.Logger
	dismissedAt  time.Time
	width        int
	detailCache  map[string]string
	detailFor    string
	exerciseList list.Model
	upcoming     table.Model
	commandInput textinput.Model
	sessionBar   progress.Model
	saveSpinner  spinner.Model
	helpModel    help.Model
	detailView   viewport.Model
}

type ExercisesState struct {
	Category string
	Items    []catalog.Exercise
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	At    time.Time
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// SnapshotMsg carries scheduler state after a reconcile.
type SnapshotMsg struct {
	Snapshot scheduler.Snapshot
}

// ReminderMsg is a notification delivered through the in-app channel.
type ReminderMsg struct {
	Title string
	Body  string
}

type SaveResultMsg struct {
	Result scheduler.SaveResult
}

type SessionTickMsg struct {
	Gen int
}

func NewModel(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.MustLoad()
	}
	if opts.Rotate == nil {
		opts.Rotate = results.RandomRotation
	}
	m := Model{
		CurrentView: ViewSleep,
		Permission:  notify.PermissionDefault,
		Exercises:   ExercisesState{Category: "All"},
		Keys: GlobalKeyMap{
			Sleep:     "1",
			Exercises: "2",
			Dashboard: "3",
			Acuity:    "4",
			Help:      "?",
			Quit:      "q",
		},
		ctx:         opts.Context,
		reminders:   opts.Reminders,
		perms:       opts.Permissions,
		catalog:     opts.Catalog,
		checkins:    opts.Checkins,
		results:     opts.Results,
		rotate:      opts.Rotate,
		now:         opts.Now,
		log:         opts.Logger.Named("tui"),
		detailCache: make(map[string]string),
		Dashboard:   DashboardState{MoodCursor: defaultMoodCursor},
	}
	m.Acuity = newAcuityState(AcuityNear, model.EyeBoth, m.rotate)
	if m.reminders != nil {
		m.Active = m.reminders.Snapshot()
		m.Draft = m.Active.Active.Clone()
	} else {
		m.Draft = model.DefaultSleepReminder("UTC", m.now())
		m.Active.Active = m.Draft.Clone()
	}
	m.refreshPermission()
	m.initBubbleComponents()
	m.refreshExercises()
	m.syncBubbleData()
	return m
}

func (m *Model) refreshPermission() {
	if m.perms == nil {
		return
	}
	m.Permission = m.perms.State(m.ctx)
}

// Dirty reports whether the draft differs from the active rule.
func (m Model) Dirty() bool {
	return !m.Draft.SameSchedule(m.Active.Active)
}
