package habitlist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/models"
)

type AddHabitMsg struct{}

type ToggleHabitMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID   string
	Name string
}

// FilterChangedMsg asks the parent to reload the list for the new filter
type FilterChangedMsg struct {
	Filter models.Filter
}

type Item struct {
	Habit     models.Habit
	Completed bool
}

func (i Item) Title() string {
	if i.Completed {
		return "✓ " + i.Habit.Name
	}
	return "○ " + i.Habit.Name
}

func (i Item) Description() string {
	status := "not completed today"
	if i.Completed {
		status = "completed today"
	}
	return string(i.Habit.Frequency) + " | " + status
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
	Filter key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle filter"),
		),
	}
}

type Model struct {
	list   list.Model
	keys   KeyMap
	filter models.Filter
}

func New(width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete, keys.Filter}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete, keys.Filter}
	}

	return Model{
		list:   l,
		keys:   keys,
		filter: models.FilterAll,
	}
}

// SetHabits replaces the list contents. completed reports whether a habit
// is done today.
func (m *Model) SetHabits(habits []models.Habit, completed func(habitID string) bool) {
	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = Item{Habit: h, Completed: completed(h.ID)}
	}
	m.list.SetItems(items)
}

func (m Model) Filter() models.Filter {
	return m.filter
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Items() []Item {
	out := make([]Item, 0, len(m.list.Items()))
	for _, it := range m.list.Items() {
		if i, ok := it.(Item); ok {
			out = append(out, i)
		}
	}
	return out
}

func (m *Model) nextFilter() models.Filter {
	for i, f := range models.Filters {
		if f == m.filter {
			m.filter = models.Filters[(i+1)%len(models.Filters)]
			return m.filter
		}
	}
	m.filter = models.FilterAll
	return m.filter
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ToggleHabitMsg{ID: i.Habit.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{ID: i.Habit.ID, Name: i.Habit.Name} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Filter):
			filter := m.nextFilter()
			return m, func() tea.Msg { return FilterChangedMsg{Filter: filter} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		switch m.filter {
		case models.FilterToday:
			return "\n  Nothing pending today."
		case models.FilterCompleted:
			return "\n  Nothing completed yet today."
		default:
			return "\n  No habits yet.\n  Press 'a' to add one."
		}
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
