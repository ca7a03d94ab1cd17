package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"focustui/internal/session"
	"focustui/internal/stats"
	"focustui/internal/timer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	heatNone = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	heatLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("22"))
	heatMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("28"))
	heatHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
)

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// formatMinutes renders aggregate minutes as "3h 20m" / "45m".
func formatMinutes(mins float64) string {
	total := int(mins)
	h := total / 60
	m := total % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

func tagStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (m *Model) View() string {
	if m.showSettings {
		return m.settingsView()
	}
	if m.showTagManager {
		return m.tagManagerView()
	}
	if m.showTagMenu {
		return m.tagMenuView()
	}

	var body string
	switch m.screen {
	case ScreenFocus:
		body = m.focusView()
	case ScreenOverview:
		body = m.overviewView()
	case ScreenDay:
		body = m.dayView()
	case ScreenWeek:
		body = m.weekView()
	case ScreenYear:
		body = m.yearView()
	}

	var sb strings.Builder
	sb.WriteString(m.tabBar())
	sb.WriteString("\n\n")
	sb.WriteString(body)
	if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(statusStyle.Render(m.status))
	}
	return sb.String()
}

func (m *Model) tabBar() string {
	names := []string{"1 Focus", "2 Overview", "3 Day", "4 Week", "5 Year"}
	parts := make([]string, len(names))
	for i, name := range names {
		if Screen(i) == m.screen {
			parts[i] = tabActiveStyle.Render(name)
		} else {
			parts[i] = tabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) focusView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(60).Render("Focus"))
	sb.WriteString("\n\n")

	var display string
	if m.countdown.Mode() == session.ModeStopwatch {
		display = formatDuration(m.countdown.Elapsed())
	} else {
		display = formatDuration(m.countdown.Remaining())
	}
	if m.countdown.State() == timer.Running {
		display = timerRunningStyle.Render(display)
	} else {
		display = timerDisplayStyle.Render(display)
	}
	sb.WriteString("        " + display)
	sb.WriteString("\n\n")

	status := "Paused"
	switch m.countdown.State() {
	case timer.Running:
		status = "Focusing"
	case timer.Idle:
		if m.countdown.Elapsed() == 0 {
			status = "Ready"
		}
	case timer.Expired:
		status = "Done"
	}
	sb.WriteString(fmt.Sprintf("Status: %s\n", status))

	if tag := m.countdown.Tag(); tag != nil {
		sb.WriteString(fmt.Sprintf("Tag:    %s\n", tagStyle(tag.Color).Render("● "+tag.Name)))
	} else {
		sb.WriteString(inactiveStyle.Render("Tag:    none (press t)") + "\n")
	}
	sb.WriteString(fmt.Sprintf("Mode:   %s (%d min)\n", m.cfg.Mode, m.cfg.FocusDuration))

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Start/Pause: Enter | Stop & Save: s | Tag: t | Manage Tags: m | Settings: o | Quit: q"))
	return boxStyle.Width(62).Render(sb.String())
}

func (m *Model) overviewView() string {
	ov := m.overview
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(60).Render("Overview"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Today:    %s across %d sessions\n",
		statStyle.Render(formatMinutes(ov.Today.Minutes)), ov.Today.Sessions))
	sb.WriteString(fmt.Sprintf("Lifetime: %s across %d sessions on %d days\n",
		statStyle.Render(formatMinutes(ov.Lifetime.Minutes)), ov.Lifetime.Sessions, ov.Lifetime.ActiveDays))
	sb.WriteString(fmt.Sprintf("Streak:   %s current / %s best\n",
		statStyle.Render(fmt.Sprintf("%d days", ov.Streak.Current)),
		statStyle.Render(fmt.Sprintf("%d days", ov.Streak.Best))))
	sb.WriteString("\n")
	sb.WriteString(m.monthCalendar())

	return boxStyle.Width(62).Render(sb.String())
}

// monthCalendar renders the current month as a heatmap, bucketed the
// same way as the web heatmap: none, under 30, under 60, 60 and up.
func (m *Model) monthCalendar() string {
	now := time.Now()
	loc := now.Location()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	var sb strings.Builder
	sb.WriteString(first.Format("January 2006"))
	sb.WriteString("\n Mo Tu We Th Fr Sa Su\n")

	col := weekdayIndexOf(first.Weekday())
	sb.WriteString(strings.Repeat("   ", col))
	for day := 1; day <= daysInMonth; day++ {
		d := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, loc)
		mins := m.overview.Daily[stats.DayKey(d)]
		cell := fmt.Sprintf("%3d", day)
		switch {
		case mins >= 60:
			cell = heatHigh.Render(cell)
		case mins >= 30:
			cell = heatMid.Render(cell)
		case mins > 0:
			cell = heatLow.Render(cell)
		default:
			cell = heatNone.Render(cell)
		}
		sb.WriteString(cell)
		col++
		if col == 7 {
			sb.WriteString("\n")
			col = 0
		}
	}
	return sb.String()
}

func weekdayIndexOf(d time.Weekday) int {
	if d == time.Sunday {
		return 6
	}
	return int(d) - 1
}

func (m *Model) dayView() string {
	ds := m.day
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(60).Render(m.dayCursor.Format("Mon, Jan 2 2006")))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Focused: %s across %d sessions\n\n",
		statStyle.Render(formatMinutes(ds.TotalMinutes)), ds.Sessions))

	if len(ds.Timeline) == 0 {
		sb.WriteString(inactiveStyle.Render("No sessions this day.") + "\n")
	} else {
		sb.WriteString("Timeline\n")
		for _, e := range ds.Timeline {
			sb.WriteString(fmt.Sprintf("  %s  %s %s\n",
				e.Label, tagStyle(e.Color).Render("●"), formatMinutes(e.Minutes)))
		}
	}

	sb.WriteString(m.tagDistributionView(ds.Tags, ds.TotalMinutes))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Prev/Next day: ←/→"))
	return boxStyle.Width(62).Render(sb.String())
}

func (m *Model) weekView() string {
	ws := m.week
	var sb strings.Builder

	end := ws.Start.AddDate(0, 0, 6)
	sb.WriteString(titleStyle.Width(60).Render(fmt.Sprintf("Week of %s - %s",
		ws.Start.Format("Jan 2"), end.Format("Jan 2"))))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Focused: %s across %d sessions",
		statStyle.Render(formatMinutes(ws.TotalMinutes)), ws.Sessions))
	diff := ws.TotalMinutes - ws.PrevMinutes
	switch {
	case diff > 0:
		sb.WriteString(fmt.Sprintf("  (+%s vs last week)\n\n", formatMinutes(diff)))
	case diff < 0:
		sb.WriteString(fmt.Sprintf("  (-%s vs last week)\n\n", formatMinutes(-diff)))
	default:
		sb.WriteString("  (even with last week)\n\n")
	}

	maxMins := 0.0
	for _, d := range ws.Days {
		if d.Minutes > maxMins {
			maxMins = d.Minutes
		}
	}
	for _, d := range ws.Days {
		bar := ""
		if maxMins > 0 {
			bar = strings.Repeat("█", int(d.Minutes/maxMins*30))
		}
		sb.WriteString(fmt.Sprintf("  %s %-30s %s\n",
			d.Date.Format("Mon"), timerRunningStyle.Render(bar), formatMinutes(d.Minutes)))
	}

	sb.WriteString(m.tagDistributionView(ws.Tags, ws.TotalMinutes))
	return boxStyle.Width(62).Render(sb.String())
}

func (m *Model) yearView() string {
	ys := m.year
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(60).Render(fmt.Sprintf("Year %d", m.yearCursor)))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Focused:     %s across %d sessions\n",
		statStyle.Render(formatMinutes(ys.TotalMinutes)), ys.Sessions))
	sb.WriteString(fmt.Sprintf("Active days: %d\n", ys.ActiveDays))
	sb.WriteString(fmt.Sprintf("Avg session: %s\n", formatMinutes(ys.AvgSessionMinutes)))
	sb.WriteString(fmt.Sprintf("Best day:    %s\n", formatMinutes(ys.BestDayMinutes)))
	sb.WriteString(fmt.Sprintf("Best month:  %s\n", formatMinutes(ys.BestMonthMinutes)))
	sb.WriteString(fmt.Sprintf("Best streak: %d days\n\n", ys.BestStreak))

	maxMonth := ys.BestMonthMinutes
	for i, mins := range ys.Months {
		bar := ""
		if maxMonth > 0 {
			bar = strings.Repeat("█", int(mins/maxMonth*30))
		}
		sb.WriteString(fmt.Sprintf("  %s %-30s %s\n",
			time.Month(i+1).String()[:3], timerRunningStyle.Render(bar), formatMinutes(mins)))
	}

	sb.WriteString(m.tagDistributionView(ys.Tags, ys.TotalMinutes))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Prev/Next year: ←/→"))
	return boxStyle.Width(62).Render(sb.String())
}

func (m *Model) tagDistributionView(shares []stats.TagShare, total float64) string {
	if len(shares) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\nTags\n")
	for _, share := range shares {
		pct := 0.0
		if total > 0 {
			pct = share.Minutes / total * 100
		}
		sb.WriteString(fmt.Sprintf("  %s %-14s %6s  %4.0f%%\n",
			tagStyle(share.Color).Render("●"), share.Name, formatMinutes(share.Minutes), pct))
	}
	return sb.String()
}

func (m *Model) tagMenuView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(40).Render("Select Tag"))
	sb.WriteString("\n\n")

	if len(m.tags) == 0 {
		sb.WriteString(inactiveStyle.Render("No tags yet. Press m on the focus screen to create one."))
	}
	for i, t := range m.tags {
		line := fmt.Sprintf("%s %s", tagStyle(t.Color).Render("●"), t.Name)
		if i == m.tagCursor {
			line = tabActiveStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Select: Enter | Cancel: Esc"))
	return lipgloss.Place(80, 24, lipgloss.Center, lipgloss.Center,
		boxStyle.Width(42).Render(sb.String()))
}

func (m *Model) tagManagerView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(40).Render("Manage Tags"))
	sb.WriteString("\n\n")

	for i, t := range m.tags {
		line := fmt.Sprintf("%s %s", tagStyle(t.Color).Render("●"), t.Name)
		if i == m.managerCursor {
			line = tabActiveStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if len(m.tags) > 0 {
		sb.WriteString("\n")
	}

	color := TagColorPresets[m.tagColorIndex]
	sb.WriteString(fmt.Sprintf("New tag: %s %s\n",
		tagStyle(color).Render("●"),
		inputStyle.Render(m.tagNameInput+"█")))

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Add: Enter | Color: Tab | Delete: Ctrl+D | Close: Esc"))
	return lipgloss.Place(80, 24, lipgloss.Center, lipgloss.Center,
		boxStyle.Width(42).Render(sb.String()))
}

func (m *Model) settingsView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(40).Render("Focus Settings"))
	sb.WriteString("\n\n")

	rows := []struct {
		label string
		value string
	}{
		{"Timer type", string(m.cfg.Mode)},
		{"Focus duration", fmt.Sprintf("%d min", m.cfg.FocusDuration)},
		{"Break duration", fmt.Sprintf("%d min", m.cfg.BreakDuration)},
		{"Iterations", fmt.Sprintf("%d", m.cfg.Iterations)},
		{"Long break", onOff(m.cfg.LongBreakEnabled)},
	}
	for i, row := range rows {
		marker := "  "
		style := inactiveStyle
		if i == m.settingsFocus {
			marker = "→ "
			style = inputStyle
		}
		sb.WriteString(style.Render(fmt.Sprintf("%s%-16s %s", marker, row.label, row.value)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Change: ←/→ | Next: Tab | Save & Close: Esc"))
	return lipgloss.Place(80, 24, lipgloss.Center, lipgloss.Center,
		boxStyle.Width(44).Render(sb.String()))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
