package domain

import (
	"fmt"
	"slices"
	"strings"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (s SortOrder) Valid() bool {
	switch s {
	case SortAsc, SortDesc:
		return true
	default:
		return false
	}
}

func ParseSortOrder(raw string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(raw)))
	if order == "" {
		return SortDesc, nil
	}
	if !order.Valid() {
		return "", fmt.Errorf("unsupported sort order %q (want asc or desc)", raw)
	}
	return order, nil
}

type FeedQuery struct {
	Page     int
	PageSize int
	Search   string
	Tags     []string
	Sort     SortOrder
}

// Offset is the zero-based item offset of the first row on Page.
func (q FeedQuery) Offset() int {
	if q.Page <= 1 || q.PageSize <= 0 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// CacheKey identifies equivalent feed requests. Tag order does not matter and
// PageSize is left out because it is fixed per coordinator.
func (q FeedQuery) CacheKey() string {
	tags := slices.Clone(q.Tags)
	slices.Sort(tags)
	sort := q.Sort
	if sort == "" {
		sort = SortDesc
	}
	return fmt.Sprintf("page=%d|search=%q|tags=%q|sort=%q", max(q.Page, 1), q.Search, tags, string(sort))
}

func (q FeedQuery) Clone() FeedQuery {
	q.Tags = slices.Clone(q.Tags)
	return q
}

type FeedResult struct {
	Items []Post `json:"items" yaml:"items"`
	// Total is nil when the backend omits a total count.
	Total *int `json:"total,omitempty" yaml:"total,omitempty"`
}

func (r FeedResult) Clone() FeedResult {
	items := make([]Post, len(r.Items))
	for i, post := range r.Items {
		post.Tags = slices.Clone(post.Tags)
		items[i] = post
	}
	out := FeedResult{Items: items}
	if r.Total != nil {
		total := *r.Total
		out.Total = &total
	}
	return out
}

// HasNext falls back to a full-page heuristic when the total is unknown.
func HasNext(page, pageSize int, result FeedResult) bool {
	if result.Total != nil {
		return page*pageSize < *result.Total
	}
	return pageSize > 0 && len(result.Items) >= pageSize
}

func HasPrev(page int) bool {
	return page > 1
}
