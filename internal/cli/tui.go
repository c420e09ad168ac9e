package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if err := ctx.LoadHabits(); err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(ctx.Habits, user), tea.WithAltScreen())
	ctx.OnPersistError(func(err error) {
		p.Send(tui.PersistErrorMsg{Err: err})
	})
	defer ctx.OnPersistError(nil)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	return ctx.SaveHabits()
}
