package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/bnema/gosocial-cli/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultFeedPageSize = 10
	DefaultFeedDebounce = 400 * time.Millisecond
	DefaultFeedCacheTTL = 30 * time.Second
)

var ErrFeedDisposed = errors.New("feed coordinator is disposed")

type FeedState int

const (
	FeedIdle FeedState = iota
	FeedDebouncing
	FeedFetching
	FeedSuccess
	FeedError
)

func (s FeedState) String() string {
	switch s {
	case FeedIdle:
		return "idle"
	case FeedDebouncing:
		return "debouncing"
	case FeedFetching:
		return "fetching"
	case FeedSuccess:
		return "success"
	case FeedError:
		return "error"
	default:
		return fmt.Sprintf("FeedState(%d)", int(s))
	}
}

// FeedView is a snapshot of the coordinator. Items is the last successful
// result and stays populated while a newer query is fetching.
type FeedView struct {
	Query      domain.FeedQuery
	State      FeedState
	Items      []domain.Post
	Total      *int
	HasNext    bool
	HasPrev    bool
	Refreshing bool
	Err        error

	// Pending filter input not yet applied by the debounce timer.
	PendingSearch string
	PendingTags   []string
}

type FeedOptions struct {
	PageSize int
	Debounce time.Duration
	// CacheTTL bounds how long a settled result answers identical queries.
	// Zero or less disables the result cache; in-flight dedup still applies.
	CacheTTL time.Duration
	Sort     domain.SortOrder
	Clock    ports.Clock
	Logger   *zap.Logger
}

type feedCacheEntry struct {
	result    domain.FeedResult
	fetchedAt time.Time
}

// FeedCoordinator owns one feed view: its query, debounced filter input,
// result cache and fetch lifecycle.
type FeedCoordinator struct {
	api      ports.FeedAPI
	clock    ports.Clock
	logger   *zap.Logger
	pageSize int
	debounce time.Duration
	cacheTTL time.Duration

	inflight singleflight.Group

	mu            sync.Mutex
	query         domain.FeedQuery
	pendingSearch string
	pendingTags   []string
	timer         ports.Timer
	debounceSeq   uint64
	state         FeedState
	items         []domain.Post
	total         *int
	shownPage     int
	hasResult     bool
	err           error
	generation    uint64
	// inflightGen is the generation of the fetch whose result the view is
	// waiting for, or 0. It outlives state changes made by filter input.
	inflightGen   uint64
	cache         map[string]feedCacheEntry
	listeners     map[int]func(FeedView)
	nextListener  int
	disposed      bool

	notifyMu sync.Mutex
}

func NewFeedCoordinator(api ports.FeedAPI, opts FeedOptions) *FeedCoordinator {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultFeedPageSize
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultFeedDebounce
	}
	sort := opts.Sort
	if !sort.Valid() {
		sort = domain.SortDesc
	}
	clock := opts.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FeedCoordinator{
		api:       api,
		clock:     clock,
		logger:    logger.Named("feed"),
		pageSize:  pageSize,
		debounce:  debounce,
		cacheTTL:  opts.CacheTTL,
		query:     domain.FeedQuery{Page: 1, PageSize: pageSize, Tags: []string{}, Sort: sort},
		cache:     map[string]feedCacheEntry{},
		listeners: map[int]func(FeedView){},
	}
}

// OnChange registers fn to receive a view after every state change and
// returns a function that removes it. fn must not call back into the
// coordinator synchronously.
func (c *FeedCoordinator) OnChange(fn func(FeedView)) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Start fetches the current query, answering from the cache when possible.
func (c *FeedCoordinator) Start() {
	c.mutate(func() bool {
		c.startFetchLocked(false)
		return true
	})
}

// Refresh refetches the current query, bypassing the result cache.
func (c *FeedCoordinator) Refresh() {
	c.mutate(func() bool {
		delete(c.cache, c.query.CacheKey())
		c.startFetchLocked(true)
		return true
	})
}

// SetSearch records search input and restarts the debounce timer.
func (c *FeedCoordinator) SetSearch(search string) {
	c.mutate(func() bool {
		c.pendingSearch = search
		c.restartDebounceLocked()
		return true
	})
}

// SetTags records tag input and restarts the debounce timer.
func (c *FeedCoordinator) SetTags(tags []string) {
	c.mutate(func() bool {
		c.pendingTags = slices.Clone(tags)
		c.restartDebounceLocked()
		return true
	})
}

// SetSort applies immediately and resets the page.
func (c *FeedCoordinator) SetSort(sort domain.SortOrder) {
	if !sort.Valid() {
		return
	}
	c.mutate(func() bool {
		if c.query.Sort == sort {
			return false
		}
		c.query.Sort = sort
		c.query.Page = 1
		c.startFetchLocked(false)
		return true
	})
}

// SetPage changes only the page; filters and sort are kept.
func (c *FeedCoordinator) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.mutate(func() bool {
		if c.query.Page == page {
			return false
		}
		c.query.Page = page
		c.startFetchLocked(false)
		return true
	})
}

func (c *FeedCoordinator) NextPage() {
	view := c.View()
	if view.HasNext {
		c.SetPage(view.Query.Page + 1)
	}
}

func (c *FeedCoordinator) PrevPage() {
	view := c.View()
	if view.HasPrev {
		c.SetPage(view.Query.Page - 1)
	}
}

// View returns the current snapshot.
func (c *FeedCoordinator) View() FeedView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Load fetches q through the coordinator's dedup layer without touching the
// view. Identical keys share one in-flight request, and settled results are
// reused while fresh.
func (c *FeedCoordinator) Load(ctx context.Context, q domain.FeedQuery) (domain.FeedResult, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return domain.FeedResult{}, ErrFeedDisposed
	}
	c.mu.Unlock()

	q = c.normalizeQuery(q)
	key := q.CacheKey()
	if result, ok := c.cached(key); ok {
		return result, nil
	}
	return c.fetch(ctx, q, key)
}

// Dispose stops the debounce timer. Results that complete afterwards are
// discarded and listeners are no longer called.
func (c *FeedCoordinator) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return
	}
	c.disposed = true
	c.generation++
	c.inflightGen = 0
	c.debounceSeq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	clear(c.listeners)
}

func (c *FeedCoordinator) mutate(fn func() bool) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	changed := fn()
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

func (c *FeedCoordinator) restartDebounceLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.debounceSeq++
	seq := c.debounceSeq
	c.state = FeedDebouncing
	c.timer = c.clock.AfterFunc(c.debounce, func() { c.applyFilters(seq) })
}

// applyFilters runs when the debounce timer fires. A timer superseded by a
// later keystroke is recognized by its sequence number and ignored.
func (c *FeedCoordinator) applyFilters(seq uint64) {
	c.mutate(func() bool {
		if seq != c.debounceSeq {
			return false
		}
		c.timer = nil

		search := strings.TrimSpace(c.pendingSearch)
		tags := domain.CleanTags(c.pendingTags)
		next := c.query.Clone()
		next.Search = search
		next.Tags = tags
		if next.CacheKey() == c.query.CacheKey() {
			c.state = c.restingStateLocked()
			return true
		}

		next.Page = 1
		c.query = next
		c.startFetchLocked(false)
		return true
	})
}

func (c *FeedCoordinator) startFetchLocked(force bool) {
	c.generation++
	gen := c.generation
	q := c.query.Clone()
	key := q.CacheKey()

	if !force {
		if entry, ok := c.cache[key]; ok && c.freshLocked(entry) {
			c.inflightGen = 0
			c.settleLocked(q, entry.result.Clone(), nil)
			return
		}
	}

	c.state = FeedFetching
	c.err = nil
	c.inflightGen = gen
	go c.run(gen, q, key)
}

func (c *FeedCoordinator) run(gen uint64, q domain.FeedQuery, key string) {
	result, err := c.fetch(context.Background(), q, key)

	c.mutate(func() bool {
		if gen != c.generation {
			c.logger.Debug("discarding superseded feed result", zap.String("key", key))
			return false
		}
		c.inflightGen = 0
		c.settleLocked(q, result, err)
		return true
	})
}

func (c *FeedCoordinator) settleLocked(q domain.FeedQuery, result domain.FeedResult, err error) {
	if err != nil {
		c.state = FeedError
		c.err = err
		if c.timer != nil {
			c.state = FeedDebouncing
		}
		return
	}

	c.state = FeedSuccess
	c.err = nil
	c.items = result.Items
	c.total = result.Total
	c.shownPage = q.Page
	c.hasResult = true
	if c.timer != nil {
		c.state = FeedDebouncing
	}
}

func (c *FeedCoordinator) restingStateLocked() FeedState {
	switch {
	case c.inflightGen != 0:
		return FeedFetching
	case c.err != nil:
		return FeedError
	case c.hasResult:
		return FeedSuccess
	default:
		return FeedIdle
	}
}

// fetch shares one request per key among concurrent callers. The shared
// call is detached from any single caller's cancellation.
func (c *FeedCoordinator) fetch(ctx context.Context, q domain.FeedQuery, key string) (domain.FeedResult, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(key, func() (any, error) {
		result, err := c.api.FetchFeed(shared, q)
		if err != nil {
			return domain.FeedResult{}, err
		}
		c.store(key, result)
		return result, nil
	})

	select {
	case <-ctx.Done():
		return domain.FeedResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.FeedResult{}, res.Err
		}
		if res.Shared {
			c.logger.Debug("joined in-flight feed request", zap.String("key", key))
		}
		return res.Val.(domain.FeedResult).Clone(), nil
	}
}

func (c *FeedCoordinator) cached(key string) (domain.FeedResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[key]
	if !ok || !c.freshLocked(entry) {
		return domain.FeedResult{}, false
	}
	return entry.result.Clone(), true
}

func (c *FeedCoordinator) store(key string, result domain.FeedResult) {
	if c.cacheTTL <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, entry := range c.cache {
		if !c.freshLocked(entry) {
			delete(c.cache, k)
		}
	}
	c.cache[key] = feedCacheEntry{result: result.Clone(), fetchedAt: c.clock.Now()}
}

func (c *FeedCoordinator) freshLocked(entry feedCacheEntry) bool {
	return c.cacheTTL > 0 && c.clock.Now().Sub(entry.fetchedAt) < c.cacheTTL
}

func (c *FeedCoordinator) normalizeQuery(q domain.FeedQuery) domain.FeedQuery {
	q = q.Clone()
	if q.Page < 1 {
		q.Page = 1
	}
	q.PageSize = c.pageSize
	q.Search = strings.TrimSpace(q.Search)
	q.Tags = domain.CleanTags(q.Tags)
	if !q.Sort.Valid() {
		q.Sort = domain.SortDesc
	}
	return q
}

func (c *FeedCoordinator) viewLocked() FeedView {
	view := FeedView{
		Query:         c.query.Clone(),
		State:         c.state,
		Items:         slices.Clone(c.items),
		Total:         copyTotal(c.total),
		HasPrev:       domain.HasPrev(c.query.Page),
		Refreshing:    c.inflightGen != 0 && c.hasResult,
		Err:           c.err,
		PendingSearch: c.pendingSearch,
		PendingTags:   slices.Clone(c.pendingTags),
	}
	if view.Items == nil {
		view.Items = []domain.Post{}
	}
	if c.hasResult && c.shownPage == c.query.Page {
		view.HasNext = domain.HasNext(c.query.Page, c.pageSize, domain.FeedResult{Items: c.items, Total: c.total})
	}
	return view
}

// notify delivers the latest view. Holding notifyMu while reading the view
// keeps deliveries ordered: no listener sees an older view after a newer one.
func (c *FeedCoordinator) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	view := c.viewLocked()
	listeners := make([]func(FeedView), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(view)
	}
}

func copyTotal(total *int) *int {
	if total == nil {
		return nil
	}
	n := *total
	return &n
}
