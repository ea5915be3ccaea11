package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"book-manager/catalog"
)

const (
	defaultServer = "http://localhost:5000"
	serverEnv     = "BOOK_MANAGER_SERVER"
	dataDirEnv    = "BOOK_MANAGER_DATA_DIR"
)

// app holds the wiring shared by every command: resolved configuration, the
// session store and the API client.
type app struct {
	server  string
	dataDir string
	verbose bool

	logger  *slog.Logger
	session *catalog.SessionStore
	client  *catalog.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "book-manager",
		Short:         "Manage your BookManager library from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.server, "server", "",
		fmt.Sprintf("server base URL (default %s, env %s)", defaultServer, serverEnv))
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "",
		fmt.Sprintf("directory for the session database (env %s)", dataDirEnv))
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newBooksCmd(a),
		newProfileCmd(a),
	)
	return root
}

func (a *app) init() error {
	if a.server == "" {
		a.server = os.Getenv(serverEnv)
	}
	if a.server == "" {
		a.server = defaultServer
	}
	a.server = strings.TrimRight(a.server, "/")

	if a.dataDir == "" {
		a.dataDir = os.Getenv(dataDirEnv)
	}
	if a.dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		a.dataDir = filepath.Join(home, ".book-manager")
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	session, err := catalog.OpenSessionStore(filepath.Join(a.dataDir, "session.db"))
	if err != nil {
		return err
	}
	a.session = session
	a.client = catalog.NewClient(a.server, session, a.logger)
	return nil
}

func (a *app) close() {
	if a.session != nil {
		a.session.Close()
	}
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := bufio.NewScanner(os.Stdin)
			form := catalog.LoginForm()
			err := promptForm(sc, form, []fieldPrompt{
				{name: "email", label: "Email"},
				{name: "password", label: "Password", secret: true},
			})
			if err != nil {
				return err
			}

			var user catalog.User
			err = form.Submit(func(values map[string]string) error {
				u, err := a.client.Login(cmd.Context(), catalog.Credentials{
					Email:    values["email"],
					Password: values["password"],
				})
				user = u
				return err
			})
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Printf("Login successful! Welcome, %s.\n", user.Name)
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := bufio.NewScanner(os.Stdin)
			form := catalog.RegisterForm()
			err := promptForm(sc, form, []fieldPrompt{
				{name: "name", label: "Full name"},
				{name: "email", label: "Email"},
			})
			if err != nil {
				return err
			}
			if err := promptRegisterPassword(form); err != nil {
				return err
			}
			err = promptForm(sc, form, []fieldPrompt{
				{name: "confirmPassword", label: "Confirm password", secret: true},
				{name: "agreeToTerms", label: "Agree to the Terms of Service and Privacy Policy?", checkbox: true},
			})
			if err != nil {
				return err
			}

			err = form.Submit(func(values map[string]string) error {
				_, err := a.client.Register(cmd.Context(), catalog.Registration{
					Name:            values["name"],
					Email:           values["email"],
					Password:        values["password"],
					ConfirmPassword: values["confirmPassword"],
				})
				return err
			})
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			// Registration does not log the user in.
			fmt.Println("Registration successful! You can now log in with 'book-manager login'.")
			return nil
		},
	}
}

// promptRegisterPassword reads the password with the live strength meter the
// register screen shows, re-prompting until the field's rules pass.
func promptRegisterPassword(form *catalog.Form) error {
	for {
		value, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		strength := catalog.CheckPasswordStrength(value)
		fmt.Printf("Password strength: %d/5", strength.Score)
		if missing := missingRequirements(strength); len(missing) > 0 {
			fmt.Printf(" (missing: %s)", strings.Join(missing, ", "))
		}
		fmt.Println()

		form.Set("password", value)
		if msg, bad := form.Error("password"); bad {
			fmt.Printf("  %s\n", msg)
			continue
		}
		return nil
	}
}

func missingRequirements(s catalog.PasswordStrength) []string {
	var missing []string
	if !s.Length {
		missing = append(missing, "at least 8 characters")
	}
	if !s.Uppercase {
		missing = append(missing, "uppercase letter")
	}
	if !s.Lowercase {
		missing = append(missing, "lowercase letter")
	}
	if !s.Number {
		missing = append(missing, "number")
	}
	if !s.Special {
		missing = append(missing, "special character")
	}
	return missing
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Clear(); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			fmt.Println("Logged out successfully!")
			return nil
		},
	}
}

func newBooksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "Open the interactive books dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), a)
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Show the current profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showProfile(cmd.Context(), a)
		},
	}
	profile.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Edit the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := bufio.NewScanner(os.Stdin)
			return updateProfile(cmd.Context(), sc, a)
		},
	})
	return profile
}

func showProfile(ctx context.Context, a *app) error {
	editor := catalog.NewProfileEditor(a.client)
	if err := editor.Load(ctx); err != nil {
		return describeAuthError(err)
	}
	user := editor.Current().Data
	fmt.Printf("Name:  %s\n", user.Name)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Bio:   %s\n", user.Bio)
	return nil
}

func updateProfile(ctx context.Context, sc *bufio.Scanner, a *app) error {
	editor := catalog.NewProfileEditor(a.client)
	if err := editor.Load(ctx); err != nil {
		return describeAuthError(err)
	}

	err := promptForm(sc, editor.Form(), []fieldPrompt{
		{name: "name", label: "Full name", keepCurrent: true},
		{name: "email", label: "Email", keepCurrent: true},
		{name: "bio", label: "Bio", keepCurrent: true},
		{name: "password", label: "New password (leave blank to keep current)", secret: true},
	})
	if err != nil {
		return err
	}

	if err := editor.Submit(ctx); err != nil {
		return describeAuthError(fmt.Errorf("update profile: %w", err))
	}
	fmt.Println("Profile updated successfully!")
	return nil
}

// describeAuthError rewords an authentication rejection; the client has
// already cleared the session by the time it surfaces.
func describeAuthError(err error) error {
	if catalog.IsAuthError(err) {
		return errors.New("session expired, please log in again with 'book-manager login'")
	}
	return err
}
