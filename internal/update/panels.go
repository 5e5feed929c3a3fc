package update

import (
	"slices"
	"strings"

	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/notify"
	"github.com/sandeepkv93/visionary/internal/views"
)

const maxNotifications = 20

func (m Model) renderCommandPalette() string {
	if !m.Palette.Active {
		return ""
	}
	return views.RenderCommandPalette(true, m.commandInput.View())
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Title, n.Body+" ("+n.At.Format("15:04")+")")
}

func (m Model) renderSleepView() string {
	chips := make([]views.DayChip, 0, len(model.MondayFirst))
	selected := model.EffectiveDays(m.Draft)
	for i, d := range model.MondayFirst {
		chips = append(chips, views.DayChip{
			Label:    model.DayLabel(d),
			Selected: slices.Contains(selected, d),
			Cursor:   i == m.DayCursor,
		})
	}
	return views.RenderSleepPanel(views.SleepPanelData{
		Enabled:  m.Draft.Enabled,
		EveryDay: m.Draft.EveryDay,
		Time:     model.FormatTime(m.Draft.Hour, m.Draft.Minute, model.Location(m.Draft)),
		Days:     chips,
		Summary:  model.Summary(m.Draft),
		Dirty:    m.Dirty(),
		Saving:   m.Saving,
		Spinner:  m.saveSpinner.View(),
	})
}

func (m Model) renderActiveView() string {
	upcoming := ""
	if m.Active.HasNext {
		upcoming = m.upcoming.View()
	}
	return views.RenderActivePanel(views.ActivePanelData{
		Preview:      model.FormatPreview(m.Active.Active),
		State:        m.Active.State.String(),
		Next:         m.nextLabel(),
		UpcomingView: upcoming,
		Permission:   string(m.Permission),
	})
}

func (m Model) renderExercisesView() string {
	return views.RenderExercisesPanel(views.ExercisePanelData{
		Filter:   m.Exercises.Category,
		ListView: m.exerciseList.View(),
	})
}

func (m Model) renderExerciseDetail() string {
	out := views.RenderExerciseDetail(m.detailView.View())
	if m.Session.Active() {
		out += "\n\n" + views.RenderSessionPanel(views.SessionPanelData{
			Title:        m.Session.Title,
			Mode:         string(m.Session.Mode),
			Label:        m.Session.Label(),
			ProgressView: m.sessionBar.ViewAs(m.Session.Progress()),
			Running:      m.Session.Running,
			Done:         m.Session.Done,
			HasOptions:   len(m.Session.Options) > 0,
		})
	}
	return out
}

func (m Model) banners() []views.BannerData {
	out := make([]views.BannerData, 0, 2)
	if m.Permission == notify.PermissionDenied {
		out = append(out, views.BannerData{Level: "warn", Text: BlockedMessage})
	}
	if text := m.missedBanner(); text != "" {
		out = append(out, views.BannerData{Level: "info", Text: text})
	}
	return out
}

func (m *Model) notify(title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		At:    m.now(),
	})
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
}
