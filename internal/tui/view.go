package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateHome:
		content = m.viewHome()
	case StateHabits:
		content = m.viewHabits()
	case StateProgress:
		content = docStyle.Render(m.progressView.View())
	case StateAddHabit:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	tabs = append(tabs, mutedStyle.Render("  "+m.user.Name))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHome() string {
	email := m.user.Email
	pending := m.store.PendingToday(email)
	completed := m.store.CompletedToday(email)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render("Hello, "+m.user.Name))
	fmt.Fprintf(&b, "%s\n\n", mutedStyle.Render(m.store.Today()))
	b.WriteString(m.progressView.TodayView())
	b.WriteString("\n\n")

	if len(pending)+len(completed) == 0 {
		b.WriteString(mutedStyle.Render("No daily habits yet. Switch to Habits and press 'a' to add one."))
		return docStyle.Render(b.String())
	}

	writeSection(&b, fmt.Sprintf("Pending (%d)", len(pending)), pending, "○ ", lipgloss.NewStyle())
	writeSection(&b, fmt.Sprintf("Completed (%d)", len(completed)), completed, "✓ ", successStyle)
	return docStyle.Render(b.String())
}

func writeSection(b *strings.Builder, title string, list []models.Habit, marker string, style lipgloss.Style) {
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if len(list) == 0 {
		b.WriteString(mutedStyle.Render("  none"))
		b.WriteString("\n")
	}
	for _, h := range list {
		b.WriteString("  " + style.Render(marker+h.Name) + "\n")
	}
	b.WriteString("\n")
}

func (m Model) viewHabits() string {
	header := mutedStyle.Render("Filter: " + m.habitList.Filter().Label())
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, m.habitList.View()))
}

func (m Model) viewStatus() string {
	var parts []string
	if m.persistError != "" {
		parts = append(parts, dangerStyle.Render(m.persistError))
	}
	if m.statusMessage != "" {
		parts = append(parts, mutedStyle.Render(m.statusMessage))
	}
	return strings.Join(parts, "  ")
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q and all of its history?", m.habitToDeleteName)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
