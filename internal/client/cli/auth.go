package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/book-club/internal/client"
	"github.com/magabrotheeeer/book-club/internal/lib/sl"
	"github.com/magabrotheeeer/book-club/internal/models"
)

func (a *App) registerCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if done, err := a.guard(client.ViewAuth); done {
				return err
			}

			var err error
			if name == "" {
				if name, err = a.prompt("Name"); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = a.prompt("Email"); err != nil {
					return err
				}
			}
			password, err := a.readPassword()
			if err != nil {
				return err
			}

			form := client.RegisterForm{Name: name, Email: email, Password: password}
			if err := form.Validate(); err != nil {
				return err
			}

			if _, err := a.api.Register(cmd.Context(), name, email, password); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Registration successful! You can now log in.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (letters only)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if done, err := a.guard(client.ViewAuth); done {
				return err
			}

			var err error
			if email == "" {
				if email, err = a.prompt("Email"); err != nil {
					return err
				}
			}
			password, err := a.readPassword()
			if err != nil {
				return err
			}
			if err := client.ValidateLogin(email, password); err != nil {
				return err
			}

			a.checkServerVersion(cmd.Context())

			user, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Login successful! Welcome, %s.\n", user.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := a.session.Logout(cmd.Context())
			if cerr := a.jar.Clear(); cerr != nil {
				a.log.Warn("failed to clear cookies", sl.Err(cerr))
			}
			if err != nil {
				fmt.Fprintf(a.errOut, "Logged out locally, but the server could not be reached: %v\n", err)
				return nil
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if done, err := a.guard(client.ViewHome); done {
				return err
			}

			var user models.PublicUser
			err := a.session.Do(cmd.Context(), func(ctx context.Context) error {
				var err error
				user, err = a.api.Me(ctx)
				return err
			})
			if err != nil {
				return a.loginRequired(err)
			}

			a.log.Debug("current user", slog.Int64("id", user.ID))
			fmt.Fprintf(a.out, "%s <%s> (%s)\n", user.Name, user.Email, user.Role)
			return nil
		},
	}
}
