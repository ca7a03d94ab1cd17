package internal

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"focustui/internal/session"
	"focustui/internal/settings"
	"focustui/internal/stats"
	"focustui/internal/timer"
)

// MsgTick is pumped in once per second from main.
type MsgTick struct{}

// MsgSessions carries a full snapshot of the session history, pushed by
// the store subscription whenever a record is appended.
type MsgSessions struct {
	Records []session.Record
}

type Screen int

const (
	ScreenFocus Screen = iota
	ScreenOverview
	ScreenDay
	ScreenWeek
	ScreenYear
)

// TagColorPresets is the palette offered when creating a tag.
var TagColorPresets = []string{
	"#8B5CF6", "#10B981", "#3B82F6", "#F59E0B",
	"#EF4444", "#EC4899", "#06B6D4", "#6366F1",
}

type Model struct {
	store     *session.Store
	local     *settings.Store
	cfg       settings.Settings
	countdown *timer.Countdown

	screen Screen

	// Latest snapshot and the views recomputed from it. Aggregation is
	// a full recompute on every change; nothing incremental is kept.
	sessions []session.Record
	overview stats.OverviewStats
	day      stats.DayStats
	week     stats.WeekStats
	year     stats.YearStats

	dayCursor  time.Time
	yearCursor int
	lastDayKey string

	tags        []session.Tag
	selectedTag *session.Tag
	tagCursor   int
	showTagMenu bool

	showSettings  bool
	settingsFocus int

	showTagManager bool
	managerCursor  int
	tagNameInput   string
	tagColorIndex  int

	status string
}

func NewModel(store *session.Store, local *settings.Store) (*Model, error) {
	cfg := local.Load()
	cd := timer.New(cfg.Mode, time.Duration(cfg.FocusDuration)*time.Minute)

	now := time.Now()
	m := &Model{
		store:      store,
		local:      local,
		cfg:        cfg,
		countdown:  cd,
		dayCursor:  now,
		yearCursor: now.Year(),
	}

	// Pick up a countdown that was running when the program last exited.
	if cfg.Mode == session.ModeTimer {
		if ts, ok := local.LoadTimerState(); ok {
			cd.Restore(time.Duration(ts.TimeLeftSeconds)*time.Second, ts.Active, ts.LastUpdated, now)
			if cd.State() == timer.Expired {
				m.finishSession(true)
			}
		}
	}

	tags, err := store.Tags(context.Background())
	if err != nil {
		return nil, err
	}
	m.tags = tags

	// Initial snapshot; the live subscription takes over once the
	// program is running.
	records, err := store.All(context.Background())
	if err != nil {
		return nil, err
	}
	m.sessions = records
	m.recompute()

	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// recompute rebuilds every derived view from the current snapshot.
func (m *Model) recompute() {
	now := time.Now()
	m.lastDayKey = stats.DayKey(now)
	m.overview = stats.Overview(m.sessions, now)
	m.day = stats.Day(m.sessions, m.dayCursor)
	m.week = stats.Week(m.sessions, now)
	m.year = stats.Year(m.sessions, m.yearCursor, now.Location())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		return m.handleTick()
	case MsgSessions:
		m.sessions = msg.Records
		m.recompute()
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m, nil
	}
	return m, nil
}

func (m *Model) handleTick() (tea.Model, tea.Cmd) {
	if m.countdown.Tick() {
		m.finishSession(true)
		m.status = "focus session complete"
	} else if m.countdown.State() == timer.Running && m.countdown.Mode() == session.ModeTimer {
		m.saveTimerState(true)
	}

	// Streaks and "today" roll over at midnight.
	if stats.DayKey(time.Now()) != m.lastDayKey {
		m.recompute()
	}
	return m, nil
}

// finishSession converts the countdown run into a record and appends
// it. Persistence failures are logged and swallowed; the UI stays
// usable with its current snapshot.
func (m *Model) finishSession(completed bool) {
	in, ok := m.countdown.Finish(completed)
	if err := m.local.ClearTimerState(); err != nil {
		log.Printf("clear timer state: %v", err)
	}
	if !ok {
		m.status = "session too short, not saved"
		return
	}
	if _, err := m.store.Append(context.Background(), in); err != nil {
		log.Printf("save session: %v", err)
		m.status = "could not save session"
	}
}

func (m *Model) saveTimerState(active bool) {
	if m.countdown.Mode() != session.ModeTimer {
		return
	}
	ts := settings.TimerState{
		TimeLeftSeconds: int(m.countdown.Remaining().Seconds()),
		Active:          active,
		LastUpdated:     time.Now(),
	}
	if err := m.local.SaveTimerState(ts); err != nil {
		log.Printf("save timer state: %v", err)
	}
}

// Close persists in-flight state on shutdown.
func (m *Model) Close() error {
	if m.countdown.State() == timer.Running && m.countdown.Mode() == session.ModeTimer {
		m.saveTimerState(true)
	}
	return m.store.Close()
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showSettings {
		return m.handleSettingsInput(msg)
	}
	if m.showTagManager {
		return m.handleTagManagerInput(msg)
	}
	if m.showTagMenu {
		return m.handleTagMenuInput(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "1":
		m.screen = ScreenFocus
	case "2":
		m.screen = ScreenOverview
		m.recompute()
	case "3":
		m.screen = ScreenDay
		m.recompute()
	case "4":
		m.screen = ScreenWeek
		m.recompute()
	case "5":
		m.screen = ScreenYear
		m.recompute()
	case "tab":
		m.screen = (m.screen + 1) % 5
		m.recompute()
	}

	switch m.screen {
	case ScreenFocus:
		return m.handleFocusInput(msg)
	case ScreenDay:
		return m.handleDayInput(msg)
	case ScreenYear:
		return m.handleYearInput(msg)
	}
	return m, nil
}

func (m *Model) handleFocusInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		switch m.countdown.State() {
		case timer.Running:
			m.countdown.Pause()
			m.saveTimerState(false)
		default:
			if err := m.countdown.Start(); err != nil {
				// Recoverable guidance, not a failure.
				m.status = err.Error()
				m.showTagMenu = true
				return m, nil
			}
			m.status = ""
			m.saveTimerState(true)
		}
	case "s":
		if m.countdown.Elapsed() > 0 {
			m.status = "session saved"
			m.finishSession(false)
		}
	case "t":
		m.showTagMenu = true
		m.tagCursor = 0
	case "m":
		m.showTagManager = true
		m.managerCursor = 0
		m.tagNameInput = ""
		m.tagColorIndex = 0
	case "o":
		m.showSettings = true
		m.settingsFocus = 0
	}
	return m, nil
}

func (m *Model) handleDayInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.dayCursor = m.dayCursor.AddDate(0, 0, -1)
		m.recompute()
	case "right", "l":
		m.dayCursor = m.dayCursor.AddDate(0, 0, 1)
		m.recompute()
	}
	return m, nil
}

func (m *Model) handleYearInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.yearCursor--
		m.recompute()
	case "right", "l":
		m.yearCursor++
		m.recompute()
	}
	return m, nil
}

func (m *Model) handleTagMenuInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "t":
		m.showTagMenu = false
	case "up", "k":
		if m.tagCursor > 0 {
			m.tagCursor--
		}
	case "down", "j":
		if m.tagCursor < len(m.tags)-1 {
			m.tagCursor++
		}
	case "enter":
		if m.tagCursor >= 0 && m.tagCursor < len(m.tags) {
			t := m.tags[m.tagCursor]
			m.selectedTag = &t
			m.countdown.SetTag(&session.TagRef{Name: t.Name, Color: t.Color})
			m.status = ""
		}
		m.showTagMenu = false
	}
	return m, nil
}

func (m *Model) handleTagManagerInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.showTagManager = false
	case "enter":
		if m.tagNameInput == "" {
			break
		}
		color := TagColorPresets[m.tagColorIndex]
		t, err := m.store.AddTag(context.Background(), m.tagNameInput, color)
		if err != nil {
			log.Printf("add tag: %v", err)
			m.status = "could not save tag"
			break
		}
		m.tags = append(m.tags, t)
		m.tagNameInput = ""
	case "tab":
		m.tagColorIndex = (m.tagColorIndex + 1) % len(TagColorPresets)
	case "up":
		if m.managerCursor > 0 {
			m.managerCursor--
		}
	case "down":
		if m.managerCursor < len(m.tags)-1 {
			m.managerCursor++
		}
	case "ctrl+d":
		if m.managerCursor >= 0 && m.managerCursor < len(m.tags) {
			t := m.tags[m.managerCursor]
			if err := m.store.DeleteTag(context.Background(), t.ID); err != nil {
				log.Printf("delete tag: %v", err)
				break
			}
			m.tags = append(m.tags[:m.managerCursor], m.tags[m.managerCursor+1:]...)
			if m.managerCursor >= len(m.tags) && m.managerCursor > 0 {
				m.managerCursor--
			}
			if m.selectedTag != nil && m.selectedTag.ID == t.ID {
				m.selectedTag = nil
				m.countdown.SetTag(nil)
			}
		}
	case "backspace":
		if len(m.tagNameInput) > 0 {
			m.tagNameInput = m.tagNameInput[:len(m.tagNameInput)-1]
		}
	default:
		runes := []rune(msg.String())
		if len(runes) == 1 {
			m.tagNameInput += string(runes[0])
		}
	}
	return m, nil
}

const settingsFieldCount = 5

func (m *Model) handleSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "o":
		m.applySettings()
		m.showSettings = false
	case "up", "k":
		if m.settingsFocus > 0 {
			m.settingsFocus--
		}
	case "down", "j", "tab":
		m.settingsFocus = (m.settingsFocus + 1) % settingsFieldCount
	case "left", "h":
		m.adjustSetting(-1)
	case "right", "l", "enter", " ":
		m.adjustSetting(1)
	}
	return m, nil
}

func (m *Model) adjustSetting(dir int) {
	switch m.settingsFocus {
	case 0:
		if m.cfg.Mode == session.ModeTimer {
			m.cfg.Mode = session.ModeStopwatch
		} else {
			m.cfg.Mode = session.ModeTimer
		}
	case 1:
		m.cfg.FocusDuration += dir * 5
		if m.cfg.FocusDuration < 5 {
			m.cfg.FocusDuration = 5
		}
	case 2:
		m.cfg.BreakDuration += dir
		if m.cfg.BreakDuration < 1 {
			m.cfg.BreakDuration = 1
		}
	case 3:
		m.cfg.Iterations += dir
		if m.cfg.Iterations < 1 {
			m.cfg.Iterations = 1
		}
	case 4:
		m.cfg.LongBreakEnabled = !m.cfg.LongBreakEnabled
	}
}

func (m *Model) applySettings() {
	if err := m.local.Save(m.cfg); err != nil {
		log.Printf("save settings: %v", err)
		m.status = "could not save settings"
	}
	// Only an unstarted idle countdown picks up the new configuration.
	m.countdown.Configure(m.cfg.Mode, time.Duration(m.cfg.FocusDuration)*time.Minute)
}
