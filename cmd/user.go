package cmd

import (
	"context"
	"fmt"

	feedrender "github.com/bnema/gosocial-cli/internal/adapters/render/feed"
	"github.com/bnema/gosocial-cli/internal/application"
	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/spf13/cobra"
)

const selfUserID = "me"

func newUserCmd(app *app, out *output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Look up and follow users",
		Long:  "Look up and follow users. Use \"me\" as the user id for the signed-in account.",
	}

	cmd.AddCommand(
		newUserShowCmd(app, out),
		newUserPostsCmd(app, out),
		newUserFollowCmd(app, true),
		newUserFollowCmd(app, false),
		newUserListCmd(app, out, "followers", "Followers", app.usersFollowers),
		newUserListCmd(app, out, "following", "Following", app.usersFollowing),
	)

	return cmd
}

// resolveUserID maps "me" to the signed-in user's id.
func resolveUserID(app *app, raw string) (domain.ID, error) {
	if raw != selfUserID {
		return domain.ID(raw), nil
	}
	session := app.session.Session()
	if !session.IsAuthenticated() {
		return "", errNotLoggedIn
	}
	if session.User != nil && !session.User.ID.IsZero() {
		return session.User.ID, nil
	}
	if subject := application.TokenSubject(session.Token); !subject.IsZero() {
		return subject, nil
	}
	return "", fmt.Errorf("cannot resolve %q: the session token does not name a user", selfUserID)
}

func newUserShowCmd(app *app, out *output) *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show a user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveUserID(app, args[0])
			if err != nil {
				return err
			}
			user, err := app.users.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return out.write(cmd, user, func() (string, error) {
				return feedrender.RenderUser(user)
			})
		},
	}
}

func newUserPostsCmd(app *app, out *output) *cobra.Command {
	return &cobra.Command{
		Use:   "posts <user-id>",
		Short: "List posts by a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveUserID(app, args[0])
			if err != nil {
				return err
			}

			posts, err := loadWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Loading posts...", func(ctx context.Context) ([]domain.Post, error) {
				return app.users.Posts(ctx, id)
			})
			if err != nil {
				return err
			}

			return out.write(cmd, posts, func() (string, error) {
				return feedrender.RenderPosts(fmt.Sprintf("Posts by user %s", id), posts, feedrender.RenderOptions{Now: app.now()})
			})
		},
	}
}

func newUserFollowCmd(app *app, follow bool) *cobra.Command {
	use, short, done := "follow", "Follow a user", "Following user %s.\n"
	if !follow {
		use, short, done = "unfollow", "Stop following a user", "Unfollowed user %s.\n"
	}

	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.ID(args[0])
			var err error
			if follow {
				err = app.users.Follow(cmd.Context(), id)
			} else {
				err = app.users.Unfollow(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), done, id)
			return err
		},
	}
}

func newUserListCmd(app *app, out *output, use, title string, load func(context.Context, domain.ID) ([]domain.UserSummary, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: "List " + use + " of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveUserID(app, args[0])
			if err != nil {
				return err
			}
			users, err := load(cmd.Context(), id)
			if err != nil {
				return err
			}
			return out.write(cmd, users, func() (string, error) {
				return feedrender.RenderUsers(title, users)
			})
		},
	}
}

func (a *app) usersFollowers(ctx context.Context, id domain.ID) ([]domain.UserSummary, error) {
	return a.users.Followers(ctx, id)
}

func (a *app) usersFollowing(ctx context.Context, id domain.ID) ([]domain.UserSummary, error) {
	return a.users.Following(ctx, id)
}
