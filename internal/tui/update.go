package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tui/components/habitlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case PersistErrorMsg:
		if msg.Err != nil {
			m.persistError = fmt.Sprintf("⚠ Changes not saved: %v", msg.Err)
		}
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if handled, cmd := m.handleHabitMessages(msg); handled {
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.Right):
			m.state = (m.state + 1) % tabCount
			m.statusMessage = ""
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab), key.Matches(msg, m.keys.Left):
			m.state = (m.state - 1 + tabCount) % tabCount
			m.statusMessage = ""
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.state == StateHabits {
		m.habitList, cmd = m.habitList.Update(msg)
	}
	return m, cmd
}

// handleHabitMessages applies the actions requested by the habit list
func (m *Model) handleHabitMessages(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{Frequency: models.FrequencyDaily}
		m.form = newHabitForm(m.habitForm)
		m.state = StateAddHabit
		return true, m.form.Init()

	case habitlist.ToggleHabitMsg:
		if err := m.store.ToggleHabitCompletion(msg.ID, m.store.Today(), m.user.Email); err != nil {
			m.statusMessage = err.Error()
		}
		m.refresh()
		return true, nil

	case habitlist.DeleteHabitMsg:
		m.habitToDeleteID = msg.ID
		m.habitToDeleteName = msg.Name
		m.state = StateConfirmDelete
		return true, nil

	case habitlist.FilterChangedMsg:
		m.statusMessage = "Showing: " + msg.Filter.Label()
		m.refresh()
		return true, nil
	}
	return false, nil
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateHabits
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		habit, err := m.store.AddHabit(m.habitForm.Name, m.habitForm.Frequency, m.user.Email)
		if err != nil {
			m.statusMessage = err.Error()
		} else {
			m.statusMessage = "Added " + habit.Name
		}
		m.refresh()
		m.state = StateHabits
	case huh.StateAborted:
		m.state = StateHabits
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if err := m.store.RemoveHabit(m.habitToDeleteID, m.user.Email); err != nil {
			m.statusMessage = err.Error()
		} else {
			m.statusMessage = "Deleted " + m.habitToDeleteName
		}
		m.refresh()
		m.habitToDeleteID, m.habitToDeleteName = "", ""
		m.state = StateHabits
	case key.Matches(keyMsg, m.keys.Cancel):
		m.habitToDeleteID, m.habitToDeleteName = "", ""
		m.state = StateHabits
	}
	return m, nil
}
