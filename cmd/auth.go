package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	feedrender "github.com/bnema/gosocial-cli/internal/adapters/render/feed"
	"github.com/bnema/gosocial-cli/internal/application"
	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	errNotLoggedIn      = errors.New("not logged in: run gs login")
	errPasswordRequired = errors.New("password is required: use --password or --password-stdin")
)

type sessionView struct {
	Authenticated bool                `json:"authenticated" yaml:"authenticated"`
	UserID        domain.ID           `json:"userId,omitempty" yaml:"user_id,omitempty"`
	User          *domain.UserSummary `json:"user,omitempty" yaml:"user,omitempty"`
}

func newLoginCmd(app *app, out *output) *cobra.Command {
	var (
		email         string
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password from stdin: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errPasswordRequired
			}

			token, err := app.session.LoginWithCredentials(cmd.Context(), domain.Credentials{
				Email:    strings.TrimSpace(email),
				Password: password,
			})
			if err != nil {
				return err
			}

			user := resolveSessionUser(cmd, app, false)
			view := sessionView{Authenticated: true, UserID: application.TokenSubject(token), User: user}
			return out.write(cmd, view, func() (string, error) {
				if user == nil {
					return "Logged in.", nil
				}
				return fmt.Sprintf("Logged in as %s.", user.Username), nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	_ = cmd.MarkFlagRequired("email")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Logout(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return err
		},
	}
}

func newWhoamiCmd(app *app, out *output) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := app.session.Session()
			if !session.IsAuthenticated() {
				return errNotLoggedIn
			}

			user := resolveSessionUser(cmd, app, refresh)
			view := sessionView{Authenticated: true, UserID: application.TokenSubject(session.Token), User: user}
			return out.write(cmd, view, func() (string, error) {
				if user == nil {
					return "Logged in (user details unavailable).", nil
				}
				return feedrender.RenderUser(*user)
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Reload the user profile from the API")

	return cmd
}

// resolveSessionUser returns the cached session user, loading it from the API
// when missing or when refresh is set. Failures only cost the profile.
func resolveSessionUser(cmd *cobra.Command, app *app, refresh bool) *domain.UserSummary {
	session := app.session.Session()
	if session.User != nil && !refresh {
		return session.User
	}

	subject := application.TokenSubject(session.Token)
	if subject.IsZero() {
		return session.User
	}

	user, err := app.users.Get(cmd.Context(), subject)
	if err != nil {
		app.logger.Warn("load session user", zap.String("user_id", subject.String()), zap.Error(err))
		return session.User
	}
	if err := app.session.SetUser(cmd.Context(), &user); err != nil {
		app.logger.Warn("save session user", zap.Error(err))
	}
	return &user
}

func newRegisterCmd(app *app) *cobra.Command {
	var input domain.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.accounts.Register(cmd.Context(), input); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(),
				"Registered %s. Activate the account with the token from your email: gs activate <token>\n",
				strings.TrimSpace(input.Username))
			return err
		},
	}

	cmd.Flags().StringVar(&input.Username, "username", "", "Username")
	cmd.Flags().StringVar(&input.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&input.Password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newActivateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <token>",
		Short: "Activate an account with the emailed token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.accounts.Activate(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Account activated.")
			return err
		},
	}
}
