package feed

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/bnema/gosocial-cli/internal/application"
	"github.com/bnema/gosocial-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
	// FadeAfter is the post age at which timestamps reach the dimmest shade.
	FadeAfter time.Duration
}

const defaultFadeAfter = 7 * 24 * time.Hour

func RenderFeed(view application.FeedView, opts RenderOptions) (string, error) {
	return paint(func(s styles) string { return renderFeed(view, opts, s) })
}

func RenderPosts(title string, posts []domain.Post, opts RenderOptions) (string, error) {
	return paint(func(s styles) string { return renderPostList(title, posts, opts, s) })
}

func RenderPostDetail(detail domain.PostDetail, opts RenderOptions) (string, error) {
	return paint(func(s styles) string { return renderPostDetail(detail, opts, s) })
}

func RenderUsers(title string, users []domain.UserSummary) (string, error) {
	return paint(func(s styles) string { return renderUsers(title, users, s) })
}

func RenderUser(user domain.UserSummary) (string, error) {
	return paint(func(s styles) string { return renderUser(user, s) })
}

type paintMsg struct{}

// frame is a one-shot program: it paints a page of output on its first
// message and quits. The non-interactive commands share the Browser's styles
// this way.
type frame struct {
	draw func(styles) string
	out  string
}

func (f frame) Init() tea.Cmd {
	return func() tea.Msg { return paintMsg{} }
}

func (f frame) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(paintMsg); !ok {
		return f, nil
	}
	f.out = f.draw(newStyles())
	return f, tea.Quit
}

func (f frame) View() string { return f.out }

func paint(draw func(styles) string) (string, error) {
	final, err := tea.NewProgram(frame{draw: draw}, tea.WithInput(nil), tea.WithOutput(io.Discard)).Run()
	if err != nil {
		return "", fmt.Errorf("paint feed output: %w", err)
	}
	painted, ok := final.(frame)
	if !ok {
		return "", fmt.Errorf("paint feed output: unexpected model %T", final)
	}
	return painted.out, nil
}

func renderFeed(view application.FeedView, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Feed"),
		s.header.Render(feedHeader(view)),
	}
	if view.Err != nil {
		lines = append(lines, s.warning.Render("error: "+view.Err.Error()))
	}
	if view.Refreshing {
		lines = append(lines, s.meta.Render("refreshing..."))
	}

	if len(view.Items) == 0 {
		lines = append(lines, s.empty.Render("No posts to show."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, post := range view.Items {
		lines = append(lines, s.section.Render(renderPost(post, opts, s)))
	}
	lines = append(lines, s.section.Render(s.header.Render(pagination(view))))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func feedHeader(view application.FeedView) string {
	parts := []string{fmt.Sprintf("page %d", view.Query.Page)}
	if view.Total != nil {
		parts = append(parts, fmt.Sprintf("%d posts", *view.Total))
	}
	parts = append(parts, "sort: "+string(view.Query.Sort))
	if view.Query.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", view.Query.Search))
	}
	if len(view.Query.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(view.Query.Tags, ", "))
	}
	return strings.Join(parts, " | ")
}

func pagination(view application.FeedView) string {
	prev, next := "  ", "  "
	if view.HasPrev {
		prev = "< "
	}
	if view.HasNext {
		next = " >"
	}
	return fmt.Sprintf("%spage %d%s", prev, view.Query.Page, next)
}

func renderPostList(title string, posts []domain.Post, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(title),
		s.header.Render(fmt.Sprintf("posts: %d", len(posts))),
	}
	if len(posts) == 0 {
		lines = append(lines, s.empty.Render("No posts to show."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}
	for _, post := range posts {
		lines = append(lines, s.section.Render(renderPost(post, opts, s)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderPost(post domain.Post, opts RenderOptions, s styles) string {
	parts := []string{
		s.postTitle.Render(postTitle(post)),
		renderMeta(post, opts, s),
	}
	if content := strings.TrimSpace(post.Content); content != "" {
		parts = append(parts, s.detail.Render(excerpt(content, 280)))
	}
	if len(post.Tags) > 0 {
		parts = append(parts, renderTags(post.Tags, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderPostDetail(detail domain.PostDetail, opts RenderOptions, s styles) string {
	post := detail.Post
	parts := []string{
		s.postTitle.Render(postTitle(post)),
		renderMeta(post, opts, s),
	}
	if len(post.Tags) > 0 {
		parts = append(parts, renderTags(post.Tags, s))
	}
	parts = append(parts, s.section.Render(s.detail.Render(post.Content)))
	if post.UpdatedAt != "" && post.UpdatedAt != post.CreatedAt {
		parts = append(parts, s.meta.Render("edited "+relativeTime(post.UpdatedAt, opts.Now)))
	}

	parts = append(parts, s.section.Render(s.header.Render(fmt.Sprintf("comments: %d", len(detail.Comments)))))
	if len(detail.Comments) == 0 {
		parts = append(parts, s.empty.Render("No comments yet."))
	}
	for _, comment := range detail.Comments {
		head := s.author.Render("user "+comment.UserID.String()) + " " + s.meta.Render(relativeTime(comment.CreatedAt, opts.Now))
		parts = append(parts, s.comment.Render(lipgloss.JoinVertical(lipgloss.Left, head, comment.Content)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderUsers(title string, users []domain.UserSummary, s styles) string {
	lines := []string{
		s.title.Render(title),
		s.header.Render(fmt.Sprintf("users: %d", len(users))),
	}
	if len(users) == 0 {
		lines = append(lines, s.empty.Render("No users to show."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}
	for _, user := range users {
		lines = append(lines, userLine(user, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderUser(user domain.UserSummary, s styles) string {
	lines := []string{userLine(user, s)}
	if user.Email != "" {
		lines = append(lines, s.detail.Render("email: "+user.Email))
	}
	if user.CreatedAt != "" {
		lines = append(lines, s.meta.Render("joined: "+user.CreatedAt))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func userLine(user domain.UserSummary, s styles) string {
	line := s.postTitle.Render(fmt.Sprintf("%s (%s)", displayName(user), user.ID))
	if !user.IsActive {
		line += " " + s.warning.Render("[inactive]")
	}
	return line
}

func displayName(user domain.UserSummary) string {
	if name := strings.TrimSpace(user.Username); name != "" {
		return name
	}
	return "unknown"
}

func postTitle(post domain.Post) string {
	title := strings.TrimSpace(post.Title)
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%s #%s", title, post.ID)
}

func renderMeta(post domain.Post, opts RenderOptions, s styles) string {
	author := s.author.Render("by user " + post.UserID.String())
	ageStyle := lipgloss.NewStyle().Foreground(ageColor(post.CreatedAt, opts))
	return lipgloss.JoinHorizontal(lipgloss.Top, author, " ", ageStyle.Render(relativeTime(post.CreatedAt, opts.Now)))
}

func renderTags(tags []string, s styles) string {
	rendered := make([]string, 0, len(tags))
	for _, tag := range tags {
		rendered = append(rendered, s.tag.Render("#"+tag))
	}
	return strings.Join(rendered, " ")
}

func excerpt(content string, limit int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999-07", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func relativeTime(raw string, now time.Time) string {
	at, ok := parseTimestamp(raw)
	if !ok {
		if raw == "" {
			return "unknown time"
		}
		return raw
	}
	if now.IsZero() {
		return at.Format("15:04 on 02 Jan 2006")
	}

	elapsed := now.Sub(at)
	if elapsed < time.Minute {
		return "just now"
	}
	if elapsed < time.Hour {
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	}
	if elapsed < 24*time.Hour {
		return plural(int(elapsed.Hours()), "hour") + " ago"
	}
	days := int(math.Floor(elapsed.Hours() / 24))
	if days < 30 {
		return plural(days, "day") + " ago"
	}
	return at.Format("02 Jan 2006")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// ageColor fades from bright white for fresh posts to grey at FadeAfter.
func ageColor(raw string, opts RenderOptions) lipgloss.Color {
	at, ok := parseTimestamp(raw)
	if !ok || opts.Now.IsZero() || at.After(opts.Now) {
		return lipgloss.Color("255")
	}

	fadeAfter := opts.FadeAfter
	if fadeAfter <= 0 {
		fadeAfter = defaultFadeAfter
	}
	remaining := fadeAfter.Seconds() - opts.Now.Sub(at).Seconds()
	return interpolateColor(remaining, 0, fadeAfter.Seconds())
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, 240 (faded) to 255 (bright white).
	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
