package progressview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/models"
)

const (
	defaultBarWidth = 40
	minBarWidth     = 10
	maxBarWidth     = 60
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	messageStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("86"))
)

// Model renders today's progress, the 7-day trend and summary statistics.
type Model struct {
	bar     progress.Model
	today   int
	week    []models.DayProgress
	summary models.WeeklySummary
	stats   models.Stats
}

func New() Model {
	return Model{
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth)),
	}
}

func (m *Model) SetData(today int, week []models.DayProgress, summary models.WeeklySummary, stats models.Stats) {
	m.today = today
	m.week = week
	m.summary = summary
	m.stats = stats
}

func (m *Model) SetWidth(width int) {
	w := width - 24
	if w < minBarWidth {
		w = minBarWidth
	}
	if w > maxBarWidth {
		w = maxBarWidth
	}
	m.bar.Width = w
}

// TodayView is the progress bar and message for today
func (m Model) TodayView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.bar.ViewAs(float64(m.today)/100),
		messageStyle.Render(habits.MotivationalMessage(m.today)),
	)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Today"))
	b.WriteString("\n")
	b.WriteString(m.TodayView())
	b.WriteString("\n\n")

	b.WriteString(headingStyle.Render("Last 7 days"))
	b.WriteString("\n")
	for _, day := range m.week {
		label := labelStyle.Render(fmt.Sprintf("%s %s", day.Day, day.Date[len(day.Date)-5:]))
		fmt.Fprintf(&b, "%s  %s  %d/%d\n", label, m.bar.ViewAs(day.Percent()/100), day.Completed, day.Total)
	}
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Summary"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d%%   %s %d   %s %d\n",
		labelStyle.Render("Weekly average:"), m.summary.AverageRate,
		labelStyle.Render("Perfect days:"), m.summary.PerfectDays,
		labelStyle.Render("Completions this week:"), m.summary.TotalCompleted)
	fmt.Fprintf(&b, "%s %d (%d daily, %d weekly)   %s %d\n",
		labelStyle.Render("Habits:"), m.stats.TotalHabits, m.stats.DailyHabits, m.stats.WeeklyHabits,
		labelStyle.Render("All-time completions:"), m.stats.TotalCompletions)

	return b.String()
}
