package cmd

import (
	"context"
	"fmt"
	"strings"

	feedrender "github.com/bnema/gosocial-cli/internal/adapters/render/feed"
	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newPostCmd(app *app, out *output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Read, publish and comment on posts",
	}

	cmd.AddCommand(
		newPostGetCmd(app, out),
		newPostCreateCmd(app, out),
		newPostEditCmd(app, out),
		newPostCommentCmd(app, out),
	)

	return cmd
}

func newPostGetCmd(app *app, out *output) *cobra.Command {
	var noComments bool

	cmd := &cobra.Command{
		Use:   "get <post-id>",
		Short: "Show a post with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.ID(args[0])

			detail, err := loadWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Loading post...", func(ctx context.Context) (domain.PostDetail, error) {
				if noComments {
					post, err := app.posts.Get(ctx, id)
					return domain.PostDetail{Post: post}, err
				}
				return app.posts.GetDetail(ctx, id)
			})
			if err != nil {
				return err
			}

			opts := feedrender.RenderOptions{Now: app.now()}
			if noComments {
				return out.write(cmd, detail.Post, func() (string, error) {
					return feedrender.RenderPosts("Post", []domain.Post{detail.Post}, opts)
				})
			}
			return out.write(cmd, detail, func() (string, error) {
				return feedrender.RenderPostDetail(detail, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&noComments, "no-comments", false, "Skip loading comments")

	return cmd
}

func newPostCreateCmd(app *app, out *output) *cobra.Command {
	var (
		input domain.CreatePostInput
		tags  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input.Tags = domain.SplitTags(tags)
			post, err := app.posts.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			return out.write(cmd, post, func() (string, error) {
				return fmt.Sprintf("Published post #%s.", post.ID), nil
			})
		},
	}

	cmd.Flags().StringVar(&input.Title, "title", "", "Post title")
	cmd.Flags().StringVar(&input.Content, "content", "", "Post body")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma separated tags")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func newPostEditCmd(app *app, out *output) *cobra.Command {
	var title, content, tags string

	cmd := &cobra.Command{
		Use:   "edit <post-id>",
		Short: "Change the title, content or tags of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input domain.UpdatePostInput
			if cmd.Flags().Changed("title") {
				input.Title = &title
			}
			if cmd.Flags().Changed("content") {
				input.Content = &content
			}
			if cmd.Flags().Changed("tags") {
				parsed := domain.SplitTags(tags)
				input.Tags = &parsed
			}

			post, err := app.posts.Update(cmd.Context(), domain.ID(args[0]), input)
			if err != nil {
				return err
			}
			return out.write(cmd, post, func() (string, error) {
				return fmt.Sprintf("Updated post #%s.", post.ID), nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New body")
	cmd.Flags().StringVar(&tags, "tags", "", "New comma separated tags (empty clears them)")

	return cmd
}

func newPostCommentCmd(app *app, out *output) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <text...>",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comment, err := app.posts.AddComment(cmd.Context(), domain.ID(args[0]), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return out.write(cmd, comment, func() (string, error) {
				return fmt.Sprintf("Commented on post #%s.", args[0]), nil
			})
		},
	}
}
