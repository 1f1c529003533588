package feed

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/gosocial-cli/internal/application"
	"github.com/bnema/gosocial-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var renderNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func samplePost() domain.Post {
	return domain.Post{
		ID:        "7",
		Title:     "Hello gophers",
		Content:   "First post\nwith   spacing",
		Tags:      []string{"go", "api"},
		UserID:    "3",
		CreatedAt: "2026-03-01T09:00:00Z",
		UpdatedAt: "2026-03-01T09:00:00Z",
	}
}

func TestRenderFeedShowsPostsAndPagination(t *testing.T) {
	total := 25
	output, err := RenderFeed(application.FeedView{
		Query:   domain.FeedQuery{Page: 2, PageSize: 10, Search: "go", Tags: []string{"api"}, Sort: domain.SortDesc},
		State:   application.FeedSuccess,
		Items:   []domain.Post{samplePost()},
		Total:   &total,
		HasNext: true,
		HasPrev: true,
	}, RenderOptions{Now: renderNow})
	require.NoError(t, err)

	assert.Contains(t, output, "Feed")
	assert.Contains(t, output, "page 2 | 25 posts | sort: desc | search: \"go\" | tags: api")
	assert.Contains(t, output, "Hello gophers #7")
	assert.Contains(t, output, "by user 3")
	assert.Contains(t, output, "3 hours ago")
	assert.Contains(t, output, "First post with spacing")
	assert.Contains(t, output, "#go #api")
	assert.Contains(t, output, "< page 2 >")
}

func TestRenderFeedEmptyAndError(t *testing.T) {
	output, err := RenderFeed(application.FeedView{
		Query: domain.FeedQuery{Page: 1, Sort: domain.SortAsc},
		State: application.FeedError,
		Err:   errors.New("request timed out"),
	}, RenderOptions{Now: renderNow})
	require.NoError(t, err)

	assert.Contains(t, output, "error: request timed out")
	assert.Contains(t, output, "No posts to show.")
}

func TestRenderFeedMarksRefreshing(t *testing.T) {
	output, err := RenderFeed(application.FeedView{
		Query:      domain.FeedQuery{Page: 1, Sort: domain.SortDesc},
		State:      application.FeedFetching,
		Items:      []domain.Post{samplePost()},
		Refreshing: true,
	}, RenderOptions{Now: renderNow})
	require.NoError(t, err)
	assert.Contains(t, output, "refreshing...")
	assert.Contains(t, output, "Hello gophers")
}

func TestRenderPostDetailWithComments(t *testing.T) {
	post := samplePost()
	post.UpdatedAt = "2026-03-01T11:30:00Z"

	output, err := RenderPostDetail(domain.PostDetail{
		Post: post,
		Comments: []domain.Comment{
			{ID: "1", PostID: "7", UserID: "9", Content: "Nice one", CreatedAt: "2026-02-27T12:00:00Z"},
		},
	}, RenderOptions{Now: renderNow})
	require.NoError(t, err)

	assert.Contains(t, output, "edited 30 minutes ago")
	assert.Contains(t, output, "comments: 1")
	assert.Contains(t, output, "user 9")
	assert.Contains(t, output, "2 days ago")
	assert.Contains(t, output, "Nice one")
}

func TestRenderUsers(t *testing.T) {
	output, err := RenderUsers("Followers", []domain.UserSummary{
		{ID: "1", Username: "ada", IsActive: true},
		{ID: "2", Username: "", IsActive: false},
	})
	require.NoError(t, err)

	assert.Contains(t, output, "users: 2")
	assert.Contains(t, output, "ada (1)")
	assert.Contains(t, output, "unknown (2)")
	assert.Contains(t, output, "[inactive]")

	output, err = RenderUser(domain.UserSummary{ID: "1", Username: "ada", Email: "ada@example.com", IsActive: true})
	require.NoError(t, err)
	assert.Contains(t, output, "email: ada@example.com")
}

func TestRelativeTime(t *testing.T) {
	assert.Equal(t, "just now", relativeTime("2026-03-01T11:59:30Z", renderNow))
	assert.Equal(t, "1 minute ago", relativeTime("2026-03-01T11:59:00Z", renderNow))
	assert.Equal(t, "1 hour ago", relativeTime("2026-03-01T11:00:00Z", renderNow))
	assert.Equal(t, "1 day ago", relativeTime("2026-02-28T12:00:00Z", renderNow))
	assert.Equal(t, "01 Jan 2026", relativeTime("2026-01-01T00:00:00Z", renderNow))
	assert.Equal(t, "yesterday-ish", relativeTime("yesterday-ish", renderNow))
	assert.Equal(t, "unknown time", relativeTime("", renderNow))
}

func TestAgeColorFadesWithAge(t *testing.T) {
	assert.Equal(t, lipgloss.Color("255"), ageColor("2026-03-01T12:00:00Z", RenderOptions{Now: renderNow}))
	assert.Equal(t, lipgloss.Color("240"), ageColor("2026-02-01T12:00:00Z", RenderOptions{Now: renderNow}))
	assert.Equal(t, lipgloss.Color("255"), ageColor("garbage", RenderOptions{Now: renderNow}))
}

type fakeController struct {
	view    application.FeedView
	calls   []string
	search  string
	tags    []string
	sort    domain.SortOrder
	started bool
}

func (f *fakeController) Start()                        { f.started = true }
func (f *fakeController) Refresh()                      { f.calls = append(f.calls, "refresh") }
func (f *fakeController) SetSearch(search string)       { f.search = search }
func (f *fakeController) SetTags(tags []string)         { f.tags = tags }
func (f *fakeController) SetSort(sort domain.SortOrder) { f.sort = sort }
func (f *fakeController) NextPage()                     { f.calls = append(f.calls, "next") }
func (f *fakeController) PrevPage()                     { f.calls = append(f.calls, "prev") }
func (f *fakeController) View() application.FeedView    { return f.view }

func press(t *testing.T, m tea.Model, keys ...tea.KeyMsg) tea.Model {
	t.Helper()
	for _, key := range keys {
		m, _ = m.Update(key)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowserDrivesController(t *testing.T) {
	ctrl := &fakeController{view: application.FeedView{Query: domain.FeedQuery{Page: 1, Sort: domain.SortDesc}}}
	browser := NewBrowser(ctrl, func() time.Time { return renderNow })
	browser.Init()
	assert.True(t, ctrl.started)

	var m tea.Model = browser
	m = press(t, m, runes("n"), runes("p"), runes("r"), runes("s"))
	assert.Equal(t, []string{"next", "prev", "refresh"}, ctrl.calls)
	assert.Equal(t, domain.SortAsc, ctrl.sort)

	m = press(t, m, runes("/"), runes("g"), runes("o"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "go", ctrl.search)

	m = press(t, m, runes("t"), runes("a"), runes(","), runes(" b"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, []string{"a", "b"}, ctrl.tags)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBrowserAppliesViewMessages(t *testing.T) {
	ctrl := &fakeController{view: application.FeedView{Query: domain.FeedQuery{Page: 1, Sort: domain.SortDesc}}}
	var m tea.Model = NewBrowser(ctrl, func() time.Time { return renderNow })

	m, _ = m.Update(ViewMsg(application.FeedView{
		Query: domain.FeedQuery{Page: 1, Sort: domain.SortDesc},
		State: application.FeedSuccess,
		Items: []domain.Post{samplePost()},
	}))

	view := m.View()
	assert.Contains(t, view, "Hello gophers #7")
	assert.Contains(t, view, "success")
	assert.Contains(t, view, "quit")
}

func TestForwardDeliversLatestView(t *testing.T) {
	var (
		listener func(application.FeedView)
		mu       sync.Mutex
		got      []ViewMsg
	)
	onChange := func(fn func(application.FeedView)) func() {
		listener = fn
		return func() { listener = nil }
	}

	stop := Forward(onChange, func(msg tea.Msg) {
		mu.Lock()
		got = append(got, msg.(ViewMsg))
		mu.Unlock()
	})

	listener(application.FeedView{State: application.FeedFetching})
	listener(application.FeedView{State: application.FeedSuccess})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1].State == application.FeedSuccess
	}, time.Second, 5*time.Millisecond)

	stop()
	stop()
	assert.Nil(t, listener)
}

func TestFramePaintsOnceThenQuits(t *testing.T) {
	calls := 0
	var m tea.Model = frame{draw: func(styles) string {
		calls++
		return "painted"
	}}

	m, cmd := m.Update(tea.WindowSizeMsg{Width: 80})
	assert.Nil(t, cmd)
	assert.Empty(t, m.View())

	m, cmd = m.Update(m.Init()())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "painted", m.View())
	assert.Equal(t, 1, calls)
}
