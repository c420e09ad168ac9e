package cli

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Remove HabitRemoveCmd `cmd:"" help:"Remove a habit and its history."`
	Toggle HabitToggleCmd `cmd:"" help:"Mark or unmark a habit as done for a day."`
	Today  HabitTodayCmd  `cmd:"" help:"Show today's habit status."`
}

type HabitAddCmd struct {
	Name   string `arg:"" help:"Habit name."`
	Weekly bool   `short:"w" help:"Track weekly instead of daily."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if err := ctx.LoadHabits(); err != nil {
		return err
	}
	freq := models.FrequencyDaily
	if c.Weekly {
		freq = models.FrequencyWeekly
	}

	habit, err := ctx.Habits.AddHabit(c.Name, freq, user.Email)
	if err != nil {
		return err
	}

	if err := ctx.SaveHabits(); err != nil {
		return err
	}

	fmt.Printf("Added %s habit: %s (id %s)\n", habit.Frequency, habit.Name, habit.ID)
	return nil
}

type HabitListCmd struct {
	Filter string `short:"f" help:"Filter: all, today (pending) or completed." default:"all" enum:"all,today,completed"`
	IDs    bool   `help:"Show habit ids."`
	JSON   bool   `help:"Output as JSON."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if err := ctx.LoadHabits(); err != nil {
		return err
	}
	filter, err := models.ParseFilter(c.Filter)
	if err != nil {
		return err
	}
	list := ctx.Habits.GetHabitsByFilter(filter, user.Email)

	if c.JSON {
		if list == nil {
			list = []models.Habit{}
		}
		return printJSON(list)
	}

	if len(list) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, habit := range list {
		status := "[ ]"
		if ctx.Habits.IsHabitCompletedToday(habit.ID, user.Email) {
			status = "[x]"
		}
		line := fmt.Sprintf("%s %-30s %s", status, habit.Name, habit.Frequency)
		if c.IDs {
			line += "  " + habit.ID
		}
		fmt.Println(line)
	}
	return nil
}

type HabitRemoveCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitRemoveCmd) Run(ctx *Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if err := ctx.LoadHabits(); err != nil {
		return err
	}
	habit, err := ctx.resolveHabit(c.Habit, user.Email)
	if err != nil {
		return err
	}
	if err := ctx.Habits.RemoveHabit(habit.ID, user.Email); err != nil {
		return err
	}
	if err := ctx.SaveHabits(); err != nil {
		return err
	}

	fmt.Printf("Removed habit: %s\n", habit.Name)
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitToggleCmd) Run(ctx *Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if err := ctx.LoadHabits(); err != nil {
		return err
	}
	habit, err := ctx.resolveHabit(c.Habit, user.Email)
	if err != nil {
		return err
	}

	day := c.Date
	if day == "" {
		day = ctx.Habits.Today()
	} else if !utils.ValidateDay(day) {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", day)
	}

	if err := ctx.Habits.ToggleHabitCompletion(habit.ID, day, user.Email); err != nil {
		return err
	}
	if err := ctx.SaveHabits(); err != nil {
		return err
	}

	if ctx.Habits.IsHabitCompletedOn(habit.ID, day, user.Email) {
		fmt.Printf("Marked habit %q for %s\n", habit.Name, day)
	} else {
		fmt.Printf("Unmarked habit %q for %s\n", habit.Name, day)
	}
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if err := ctx.LoadHabits(); err != nil {
		return err
	}
	all := ctx.Habits.GetUserHabits(user.Email)
	if len(all) == 0 {
		fmt.Println("No habits yet. Add one with 'habitual habit add <name>'.")
		return nil
	}

	completed := ctx.Habits.CompletedToday(user.Email)
	pending := ctx.Habits.PendingToday(user.Email)

	fmt.Printf("Habits for %s:\n\n", ctx.Habits.Today())
	for _, habit := range pending {
		fmt.Printf("[ ] %s\n", habit.Name)
	}
	for _, habit := range completed {
		fmt.Printf("[x] %s\n", habit.Name)
	}

	progress := ctx.Habits.GetTodaysProgress(user.Email)
	fmt.Printf("\nCompleted: %d/%d (%d%%)\n", len(completed), len(completed)+len(pending), progress)
	fmt.Println(habits.MotivationalMessage(progress))
	return nil
}
