package main

import (
	"fmt"
	"os"

	// Packages
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
	term "golang.org/x/term"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type LoginCmd struct {
	Email    string `arg:"" help:"Account email"`
	Password string `help:"Account password (prompted when omitted)"`
}

type RegisterCmd struct {
	Email    string `arg:"" help:"Account email"`
	Name     string `help:"Display name"`
	Password string `help:"Account password (prompted when omitted)"`
}

type LogoutCmd struct{}

type WhoamiCmd struct{}

type SettingsCmd struct {
	Language string `help:"Default content language"`
	Grade    string `help:"Default grade level"`
	Subject  string `help:"Default subject"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *LoginCmd) Run(globals *Globals) error {
	password, err := readPassword(cmd.Password)
	if err != nil {
		return err
	}
	user, err := globals.client.Login(globals.ctx, schema.LoginRequest{
		Email:    cmd.Email,
		Password: password,
	})
	if err != nil {
		return err
	}

	globals.display.Printf("logged in as %s\n", user.Email)
	globals.display.Printf("export EDUPLAN_TOKEN=%q\n", globals.session.Get())
	return nil
}

func (cmd *RegisterCmd) Run(globals *Globals) error {
	password, err := readPassword(cmd.Password)
	if err != nil {
		return err
	}
	user, err := globals.client.Register(globals.ctx, schema.RegisterRequest{
		Email:    cmd.Email,
		Name:     cmd.Name,
		Password: password,
	})
	if err != nil {
		return err
	}

	globals.display.Printf("registered %s\n", user.Email)
	globals.display.Printf("export EDUPLAN_TOKEN=%q\n", globals.session.Get())
	return nil
}

func (cmd *LogoutCmd) Run(globals *Globals) error {
	if err := globals.client.Logout(globals.ctx); err != nil {
		return err
	}
	globals.display.Println("logged out")
	return nil
}

func (cmd *WhoamiCmd) Run(globals *Globals) error {
	user, err := globals.client.Me(globals.ctx)
	if err != nil {
		return err
	}
	globals.display.Println(user)
	return nil
}

func (cmd *SettingsCmd) Run(globals *Globals) error {
	// Without flags, show the current settings
	if cmd.Language == "" && cmd.Grade == "" && cmd.Subject == "" {
		settings, err := globals.client.GetSettings(globals.ctx)
		if err != nil {
			return err
		}
		globals.display.Println(settings)
		return nil
	}

	settings, err := globals.client.UpdateSettings(globals.ctx, schema.Settings{
		Language:   cmd.Language,
		GradeLevel: cmd.Grade,
		Subject:    cmd.Subject,
	})
	if err != nil {
		return err
	}
	globals.display.Println(settings)
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// readPassword returns the given password, or prompts for one on the
// terminal without echo.
func readPassword(password string) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
