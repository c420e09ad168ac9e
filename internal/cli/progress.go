package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/julianstephens/habitual/internal/habits"
)

const progressBarWidth = 30

type ProgressCmd struct {
	Week  bool `short:"w" help:"Show the 7-day trend."`
	Stats bool `short:"s" help:"Show lifetime statistics."`
	JSON  bool `help:"Output as JSON."`
}

type progressReport struct {
	Date     string `json:"date"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Week     any    `json:"week,omitempty"`
	Summary  any    `json:"summary,omitempty"`
	Stats    any    `json:"stats,omitempty"`
}

func (c *ProgressCmd) Run(ctx *Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if err := ctx.LoadHabits(); err != nil {
		return err
	}

	today := ctx.Habits.GetTodaysProgress(user.Email)

	if c.JSON {
		report := progressReport{
			Date:     ctx.Habits.Today(),
			Progress: today,
			Message:  habits.MotivationalMessage(today),
		}
		if c.Week {
			report.Week = ctx.Habits.GetWeeklyProgress(user.Email)
			report.Summary = ctx.Habits.GetWeeklySummary(user.Email)
		}
		if c.Stats {
			report.Stats = ctx.Habits.GetStats(user.Email)
		}
		return printJSON(report)
	}

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressBarWidth))

	fmt.Printf("Today (%s)\n", ctx.Habits.Today())
	fmt.Printf("  %s\n", bar.ViewAs(float64(today)/100))
	fmt.Printf("  %s\n", habits.MotivationalMessage(today))

	if c.Week {
		fmt.Println("\nLast 7 days")
		for _, day := range ctx.Habits.GetWeeklyProgress(user.Email) {
			fmt.Printf("  %s %s  %s  %d/%d\n", day.Day, day.Date[5:], bar.ViewAs(day.Percent()/100), day.Completed, day.Total)
		}
		summary := ctx.Habits.GetWeeklySummary(user.Email)
		fmt.Printf("\n  Average: %d%%   Perfect days: %d   Completions: %d\n", summary.AverageRate, summary.PerfectDays, summary.TotalCompleted)
	}

	if c.Stats {
		stats := ctx.Habits.GetStats(user.Email)
		fmt.Println("\nStatistics")
		fmt.Printf("  Habits:            %d (%d daily, %d weekly)\n", stats.TotalHabits, stats.DailyHabits, stats.WeeklyHabits)
		fmt.Printf("  Total completions: %d\n", stats.TotalCompletions)
		fmt.Printf("  Today:             %d done, %d pending\n", stats.CompletedToday, stats.PendingToday)
	}

	return nil
}
