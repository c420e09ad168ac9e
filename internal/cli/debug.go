package cli

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

type DebugCmd struct {
	DBPath    *DebugDBPathCmd    `cmd:"" help:"Show storage path."`
	DumpHabit *DebugDumpHabitCmd `cmd:"" help:"Dump habit data as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	// Output in machine-readable format
	return printJSON(map[string]string{
		"backend": ctx.Config.Backend,
		"path":    ctx.Storage.GetConfigPath(),
	})
}

type DebugDumpHabitCmd struct {
	ID   string `arg:"" help:"ID of the habit to dump."`
	Days int    `help:"Number of recent days of completion history to include." default:"7"`
}

type habitDump struct {
	models.Habit
	CompletedToday bool     `json:"completedToday"`
	RecentDays     []string `json:"recentCompletions"`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if err := ctx.LoadHabits(); err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	habit, ok := ctx.Habits.GetHabit(cmd.ID, user.Email)
	if !ok {
		return fmt.Errorf("habit not found: %s", cmd.ID)
	}

	dump := habitDump{
		Habit:          habit,
		CompletedToday: ctx.Habits.IsHabitCompletedToday(habit.ID, user.Email),
		RecentDays:     []string{},
	}
	if cmd.Days > 0 {
		loc := ctx.Habits.Location()
		today, err := utils.ParseDay(ctx.Habits.Today(), loc)
		if err != nil {
			return err
		}
		for _, day := range utils.LastNDays(today, loc, cmd.Days) {
			date := utils.DayString(day, loc)
			if ctx.Habits.IsHabitCompletedOn(habit.ID, date, user.Email) {
				dump.RecentDays = append(dump.RecentDays, date)
			}
		}
	}

	return printJSON(dump)
}
