package feed

import (
	"strings"
	"sync"
	"time"

	"github.com/bnema/gosocial-cli/internal/application"
	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Controller is the part of the feed coordinator the browser drives.
type Controller interface {
	Start()
	Refresh()
	SetSearch(search string)
	SetTags(tags []string)
	SetSort(sort domain.SortOrder)
	NextPage()
	PrevPage()
	View() application.FeedView
}

// ViewMsg carries a coordinator snapshot into the bubbletea loop.
type ViewMsg application.FeedView

type focus int

const (
	focusList focus = iota
	focusSearch
	focusTags
)

type Browser struct {
	ctrl    Controller
	now     func() time.Time
	search  textinput.Model
	tags    textinput.Model
	spinner spinner.Model
	focus   focus
	view    application.FeedView
	styles  styles
}

func NewBrowser(ctrl Controller, now func() time.Time) Browser {
	if now == nil {
		now = time.Now
	}

	search := textinput.New()
	search.Prompt = "search: "
	search.Placeholder = "title or content"
	search.CharLimit = 120

	tags := textinput.New()
	tags.Prompt = "tags: "
	tags.Placeholder = "comma separated"
	tags.CharLimit = 200

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return Browser{
		ctrl:    ctrl,
		now:     now,
		search:  search,
		tags:    tags,
		spinner: s,
		view:    ctrl.View(),
		styles:  newStyles(),
	}
}

func (m Browser) Init() tea.Cmd {
	m.ctrl.Start()
	return m.spinner.Tick
}

func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ViewMsg:
		m.view = application.FeedView(msg)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.focus != focusList {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	default:
		return m, nil
	}
}

func (m Browser) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "/":
		m.focus = focusSearch
		cmd := m.search.Focus()
		return m, cmd
	case "t":
		m.focus = focusTags
		cmd := m.tags.Focus()
		return m, cmd
	case "n", "right", "l":
		m.ctrl.NextPage()
	case "p", "left", "h":
		m.ctrl.PrevPage()
	case "s":
		next := domain.SortAsc
		if m.view.Query.Sort == domain.SortAsc {
			next = domain.SortDesc
		}
		m.ctrl.SetSort(next)
	case "r":
		m.ctrl.Refresh()
	default:
		return m, nil
	}
	m.view = m.ctrl.View()
	return m, nil
}

func (m Browser) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter, tea.KeyTab:
		m.search.Blur()
		m.tags.Blur()
		m.focus = focusList
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusSearch:
		before := m.search.Value()
		m.search, cmd = m.search.Update(msg)
		if value := m.search.Value(); value != before {
			m.ctrl.SetSearch(value)
		}
	case focusTags:
		before := m.tags.Value()
		m.tags, cmd = m.tags.Update(msg)
		if value := m.tags.Value(); value != before {
			m.ctrl.SetTags(domain.SplitTags(value))
		}
	}
	m.view = m.ctrl.View()
	return m, cmd
}

func (m Browser) View() string {
	s := m.styles

	status := s.meta.Render(m.view.State.String())
	if m.view.State == application.FeedFetching || m.view.State == application.FeedDebouncing {
		status = m.spinner.View() + " " + status
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		s.prompt.Render(m.search.View()),
		s.prompt.Render(m.tags.View()),
		status,
	)
	body := renderFeed(m.view, RenderOptions{Now: m.now()}, s)
	help := s.help.Render(strings.Join([]string{
		s.key.Render("/") + " search",
		s.key.Render("t") + " tags",
		s.key.Render("s") + " sort",
		s.key.Render("n/p") + " page",
		s.key.Render("r") + " refresh",
		s.key.Render("q") + " quit",
	}, "  "))

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", help) + "\n"
}

// Forward relays coordinator snapshots to send without blocking the
// coordinator. Only the latest snapshot is kept while send is busy. The
// returned function stops forwarding.
func Forward(onChange func(func(application.FeedView)) func(), send func(tea.Msg)) func() {
	var (
		mu     sync.Mutex
		latest application.FeedView
	)
	signal := make(chan struct{}, 1)
	done := make(chan struct{})

	unsubscribe := onChange(func(view application.FeedView) {
		mu.Lock()
		latest = view
		mu.Unlock()
		select {
		case signal <- struct{}{}:
		default:
		}
	})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-signal:
				mu.Lock()
				view := latest
				mu.Unlock()
				send(ViewMsg(view))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			close(done)
		})
	}
}
