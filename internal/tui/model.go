package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tui/components/habitlist"
	"github.com/julianstephens/habitual/internal/tui/components/progressview"
	"github.com/julianstephens/habitual/internal/validation"
)

type SessionState int

const (
	StateHome SessionState = iota
	StateHabits
	StateProgress
	StateAddHabit
	StateConfirmDelete
)

// number of tab states at the start of SessionState
const tabCount = 3

var tabTitles = []string{"Home", "Habits", "Progress"}

// PersistErrorMsg reports a failed background save
type PersistErrorMsg struct {
	Err error
}

type HabitFormModel struct {
	Name      string
	Frequency models.Frequency
}

type Model struct {
	store        *habits.Store
	user         models.User
	state        SessionState
	keys         KeyMap
	help         help.Model
	habitList    habitlist.Model
	progressView progressview.Model
	form         *huh.Form
	habitForm    *HabitFormModel
	quitting     bool
	width        int
	height       int

	habitToDeleteID   string
	habitToDeleteName string
	statusMessage     string
	persistError      string
}

// NewModel builds the TUI for user over a loaded store.
func NewModel(store *habits.Store, user models.User) Model {
	m := Model{
		store:        store,
		user:         user,
		state:        StateHome,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		habitList:    habitlist.New(0, 0),
		progressView: progressview.New(),
	}
	m.refresh()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateHabits {
		hk := m.habitList.Keys()
		keys = append(keys, hk.Add, hk.Toggle, hk.Delete, hk.Filter)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right}

	var actions []key.Binding
	if m.state == StateHabits {
		hk := m.habitList.Keys()
		actions = []key.Binding{hk.Add, hk.Toggle, hk.Delete, hk.Filter}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.habitList.Init()
}

// refresh recomputes every view from the store
func (m *Model) refresh() {
	email := m.user.Email
	m.habitList.SetHabits(
		m.store.GetHabitsByFilter(m.habitList.Filter(), email),
		func(id string) bool { return m.store.IsHabitCompletedToday(id, email) },
	)
	m.progressView.SetData(
		m.store.GetTodaysProgress(email),
		m.store.GetWeeklyProgress(email),
		m.store.GetWeeklySummary(email),
		m.store.GetStats(email),
	)
	if m.store.LastPersistError() == nil {
		m.persistError = ""
	}
}

func (m *Model) resize() {
	// tabs, status line and help
	listHeight := m.height - 6
	if listHeight < 0 {
		listHeight = 0
	}
	m.habitList.SetSize(m.width-4, listHeight)
	m.progressView.SetWidth(m.width)
}

func newHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					_, err := validation.ValidateHabitName(s)
					return err
				}),
			huh.NewSelect[models.Frequency]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", models.FrequencyDaily),
					huh.NewOption("Weekly", models.FrequencyWeekly),
				).
				Value(&fm.Frequency),
		),
	).WithTheme(huh.ThemeDracula())
}
