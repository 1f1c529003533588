package cmd

import (
	"context"
	"fmt"

	feedrender "github.com/bnema/gosocial-cli/internal/adapters/render/feed"
	"github.com/bnema/gosocial-cli/internal/application"
	"github.com/bnema/gosocial-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type feedFlags struct {
	page     int
	pageSize int
	search   string
	tags     string
	sort     string
}

func (f *feedFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "Posts per page (default from feed.page_size)")
	cmd.Flags().StringVar(&f.search, "search", "", "Only posts whose title or content match")
	cmd.Flags().StringVar(&f.tags, "tags", "", "Comma separated tags to filter by")
	cmd.Flags().StringVar(&f.sort, "sort", "desc", "Sort by creation time: asc or desc")
}

func (f *feedFlags) query() (domain.FeedQuery, error) {
	sort, err := domain.ParseSortOrder(f.sort)
	if err != nil {
		return domain.FeedQuery{}, err
	}
	return domain.FeedQuery{
		Page:   f.page,
		Search: f.search,
		Tags:   domain.SplitTags(f.tags),
		Sort:   sort,
	}, nil
}

func newFeedCmd(app *app, out *output) *cobra.Command {
	flags := &feedFlags{}

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the feed (list is the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFeedList(cmd, app, out, flags)
		},
	}
	flags.register(cmd)

	cmd.AddCommand(newFeedListCmd(app, out), newFeedBrowseCmd(app))

	return cmd
}

func newFeedListCmd(app *app, out *output) *cobra.Command {
	flags := &feedFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFeedList(cmd, app, out, flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func runFeedList(cmd *cobra.Command, app *app, out *output, flags *feedFlags) error {
	query, err := flags.query()
	if err != nil {
		return err
	}

	feed := app.newFeed(flags.pageSize, query.Sort)
	defer feed.Dispose()

	result, err := loadWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Loading feed...", func(ctx context.Context) (domain.FeedResult, error) {
		return feed.Load(ctx, query)
	})
	if err != nil {
		return err
	}

	return out.write(cmd, result, func() (string, error) {
		query.PageSize = feed.View().Query.PageSize
		query.Page = max(query.Page, 1)
		query.Tags = domain.CleanTags(query.Tags)
		return feedrender.RenderFeed(application.FeedView{
			Query:   query,
			State:   application.FeedSuccess,
			Items:   result.Items,
			Total:   result.Total,
			HasNext: domain.HasNext(query.Page, query.PageSize, result),
			HasPrev: domain.HasPrev(query.Page),
		}, feedrender.RenderOptions{Now: app.now()})
	})
}

func newFeedBrowseCmd(app *app) *cobra.Command {
	var sortFlag string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the feed interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sort, err := domain.ParseSortOrder(sortFlag)
			if err != nil {
				return err
			}

			feed := app.newFeed(0, sort)
			defer feed.Dispose()

			p := tea.NewProgram(
				feedrender.NewBrowser(feed, app.now),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			stop := feedrender.Forward(feed.OnChange, p.Send)
			defer stop()

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run feed browser: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", "desc", "Initial sort: asc or desc")

	return cmd
}
