package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hallowedlibrary/shelf/internal/views"
)

// LoginCommand logs in and saves the session locally.
type LoginCommand struct {
	base
	Identifier string
	Password   string
}

func NewLoginCommand() *LoginCommand {
	return &LoginCommand{}
}

func (cmd *LoginCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	cmd.registerFlags(fs)
	fs.StringVar(&cmd.Identifier, "u", "", "Username or email (required)")
	fs.StringVar(&cmd.Password, "p", os.Getenv("SHELF_PASSWORD"), "Password (defaults to $SHELF_PASSWORD)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s login -u <username> -p <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Identifier == "" {
		return fmt.Errorf("required flag -u not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("required flag -p not provided")
	}
	return nil
}

func (cmd *LoginCommand) Run() error {
	ctx, cancel := cmd.runContext()
	defer cancel()

	db, store, _, err := cmd.openSession(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	result := views.Login(ctx, cmd.client(), store, views.LoginForm{
		Identifier: cmd.Identifier,
		Password:   cmd.Password,
	})
	if result.Session == nil {
		return errors.New(result.Message)
	}

	name := result.User.Name
	if name == "" {
		name = result.User.Username
	}
	cmd.printf("Logged in as %s\n", name)
	return nil
}

// SignupCommand creates an account.
type SignupCommand struct {
	base
	Form views.SignupForm
}

func NewSignupCommand() *SignupCommand {
	return &SignupCommand{}
}

func (cmd *SignupCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	cmd.registerFlags(fs)
	fs.StringVar(&cmd.Form.Name, "name", "", "Display name")
	fs.StringVar(&cmd.Form.Username, "u", "", "Username (required)")
	fs.StringVar(&cmd.Form.Email, "email", "", "Email address")
	fs.StringVar(&cmd.Form.Password, "p", "", "Password (required)")
	fs.StringVar(&cmd.Form.PasswordConf, "confirm", "", "Password confirmation (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s signup -u <username> -p <password> -confirm <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Form.Username == "" {
		return fmt.Errorf("required flag -u not provided")
	}
	if cmd.Form.Password == "" {
		return fmt.Errorf("required flag -p not provided")
	}
	return nil
}

func (cmd *SignupCommand) Run() error {
	ctx, cancel := cmd.runContext()
	defer cancel()

	result := views.Signup(ctx, cmd.client(), cmd.Form)
	if !result.Created {
		return errors.New(result.Message)
	}
	cmd.printf("%s\n", result.Message)
	return nil
}

// LogoutCommand forgets the saved session.
type LogoutCommand struct {
	base
}

func NewLogoutCommand() *LogoutCommand {
	return &LogoutCommand{}
}

func (cmd *LogoutCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	cmd.registerFlags(fs)
	return fs.Parse(args)
}

func (cmd *LogoutCommand) Run() error {
	ctx, cancel := cmd.runContext()
	defer cancel()

	db, store, _, err := cmd.openSession(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := views.Logout(ctx, store); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	cmd.printf("Logged out\n")
	return nil
}

// ProfileCommand prints the signed-in user's profile.
type ProfileCommand struct {
	base
}

func NewProfileCommand() *ProfileCommand {
	return &ProfileCommand{}
}

func (cmd *ProfileCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	cmd.registerFlags(fs)
	return fs.Parse(args)
}

func (cmd *ProfileCommand) Run() error {
	ctx, cancel := cmd.runContext()
	defer cancel()

	db, _, sess, err := cmd.openSession(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	profile := views.Profile(ctx, cmd.client(), sess)
	switch {
	case profile.LoginRequired:
		return errors.New(views.MsgNoUser)
	case profile.Error != "":
		return errors.New(profile.Error)
	}

	u := profile.User
	cmd.printf("Name:     %s\n", u.Name)
	cmd.printf("Username: %s\n", u.Username)
	if u.Email != "" {
		cmd.printf("Email:    %s\n", u.Email)
	}
	cmd.printf("Avatar:   %s\n", profile.Avatar)
	return nil
}
