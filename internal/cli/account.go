package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/validation"
)

type RegisterCmd struct {
	Name     string `arg:"" help:"Display name."`
	Email    string `arg:"" help:"Email address (your account key)."`
	Password string `help:"Password (prompted when omitted)." env:"HABITUAL_PASSWORD"`
}

func (c *RegisterCmd) Run(ctx *Context) error {
	password := c.Password
	if password == "" {
		var err error
		if password, err = promptPassword("Choose a password", true); err != nil {
			return err
		}
	}

	user, err := ctx.Session.Register(c.Name, c.Email, password)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Welcome, %s! You are signed in as %s\n", user.Name, user.Email)
	return nil
}

type LoginCmd struct {
	Email    string `arg:"" help:"Email address."`
	Password string `help:"Password (prompted when omitted)." env:"HABITUAL_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *Context) error {
	password := c.Password
	if password == "" {
		var err error
		if password, err = promptPassword("Password", false); err != nil {
			return err
		}
	}

	user, err := ctx.Session.Login(c.Email, password)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Signed in as %s (%s)\n", user.Name, user.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	if err := ctx.Session.Logout(); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

type WhoamiCmd struct {
	JSON bool `help:"Output as JSON."`
}

func (c *WhoamiCmd) Run(ctx *Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if c.JSON {
		return printJSON(user)
	}
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	return nil
}

type ProfileCmd struct {
	Name            string `help:"New display name."`
	ChangePassword  bool   `help:"Change your password (prompts for current and new password)."`
	CurrentPassword string `help:"Current password, required with --new-password." env:"HABITUAL_PASSWORD"`
	NewPassword     string `help:"New password."`
}

func (c *ProfileCmd) Run(ctx *Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}

	current, newPassword := c.CurrentPassword, c.NewPassword
	if c.ChangePassword && newPassword == "" {
		if current == "" {
			if current, err = promptPassword("Current password", false); err != nil {
				return err
			}
		}
		if newPassword, err = promptPassword("New password", true); err != nil {
			return err
		}
	}
	if c.Name == "" && newPassword == "" {
		return fmt.Errorf("nothing to update (use --name or --change-password)")
	}

	name := c.Name
	if name == "" {
		name = user.Name
	}

	user, err = ctx.Session.UpdateProfile(name, current, newPassword)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Profile updated: %s <%s>\n", user.Name, user.Email)
	if newPassword != "" {
		fmt.Println("✓ Password changed")
	}
	return nil
}

func promptPassword(title string, checkStrength bool) (string, error) {
	var password string
	input := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&password)
	if checkStrength {
		input = input.Validate(validation.ValidatePassword)
	}

	if err := huh.NewForm(huh.NewGroup(input)).WithTheme(huh.ThemeDracula()).Run(); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}
