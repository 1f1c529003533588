package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasNextUsesTotalWhenPresent(t *testing.T) {
	total := 25
	result := FeedResult{Items: make([]Post, 5), Total: &total}

	assert.False(t, HasNext(3, 10, result))
	assert.True(t, HasNext(2, 10, result))
}

func TestHasNextFallsBackToFullPageHeuristic(t *testing.T) {
	assert.True(t, HasNext(1, 10, FeedResult{Items: make([]Post, 10)}))
	assert.False(t, HasNext(1, 10, FeedResult{Items: make([]Post, 9)}))
}

func TestHasPrev(t *testing.T) {
	assert.False(t, HasPrev(1))
	assert.True(t, HasPrev(2))
}

func TestFeedQueryCacheKeyIgnoresTagOrder(t *testing.T) {
	a := FeedQuery{Page: 1, PageSize: 10, Search: "go", Tags: []string{"db", "api"}, Sort: SortDesc}
	b := FeedQuery{Page: 1, PageSize: 10, Search: "go", Tags: []string{"api", "db"}, Sort: SortDesc}

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.Equal(t, []string{"db", "api"}, a.Tags, "cache key must not reorder the query tags")
}

func TestFeedQueryCacheKeyDistinguishesEveryField(t *testing.T) {
	base := FeedQuery{Page: 1, PageSize: 10, Search: "go", Tags: []string{"api"}, Sort: SortDesc}

	variants := []FeedQuery{
		{Page: 2, PageSize: 10, Search: "go", Tags: []string{"api"}, Sort: SortDesc},
		{Page: 1, PageSize: 10, Search: "rust", Tags: []string{"api"}, Sort: SortDesc},
		{Page: 1, PageSize: 10, Search: "go", Tags: []string{"web"}, Sort: SortDesc},
		{Page: 1, PageSize: 10, Search: "go", Tags: []string{"api"}, Sort: SortAsc},
	}
	for _, variant := range variants {
		assert.NotEqual(t, base.CacheKey(), variant.CacheKey())
	}
}

func TestFeedQueryCacheKeyQuotesFieldValues(t *testing.T) {
	searchWithSeparator := FeedQuery{Page: 1, Search: "go|tags=api", Tags: []string{}, Sort: SortDesc}
	tagWithSeparator := FeedQuery{Page: 1, Search: "go", Tags: []string{"api|tags="}, Sort: SortDesc}
	assert.NotEqual(t, searchWithSeparator.CacheKey(), tagWithSeparator.CacheKey())

	commaTag := FeedQuery{Page: 1, Tags: []string{"a,b"}, Sort: SortDesc}
	twoTags := FeedQuery{Page: 1, Tags: []string{"a", "b"}, Sort: SortDesc}
	assert.NotEqual(t, commaTag.CacheKey(), twoTags.CacheKey())
}

func TestFeedQueryOffset(t *testing.T) {
	assert.Equal(t, 0, FeedQuery{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 20, FeedQuery{Page: 3, PageSize: 10}.Offset())
	assert.Equal(t, 0, FeedQuery{Page: 0, PageSize: 10}.Offset())
}

func TestParseSortOrder(t *testing.T) {
	order, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortDesc, order)

	order, err = ParseSortOrder(" ASC ")
	require.NoError(t, err)
	assert.Equal(t, SortAsc, order)

	_, err = ParseSortOrder("newest")
	require.Error(t, err)
}

func TestAuthErrorUnwrapsReason(t *testing.T) {
	err := NewAuthError(ErrTokenNotFound)

	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.Equal(t, "token not found in response", err.Error())
}

func TestUpdatePostInputIsEmpty(t *testing.T) {
	version := 3
	assert.True(t, UpdatePostInput{}.IsEmpty())
	assert.True(t, UpdatePostInput{Version: &version}.IsEmpty())

	title := "t"
	assert.False(t, UpdatePostInput{Title: &title}.IsEmpty())
}

func TestSessionIsAuthenticated(t *testing.T) {
	assert.False(t, Session{}.IsAuthenticated())
	assert.True(t, Session{Token: "abc"}.IsAuthenticated())
}
