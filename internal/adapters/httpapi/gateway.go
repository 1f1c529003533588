package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bnema/gosocial-cli/internal/adapters/httpapi/normalize"
	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/bnema/gosocial-cli/internal/ports"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// Gateway maps the REST surface onto canonical entities.
type Gateway struct {
	client     *Client
	normalizer *normalize.Normalizer
	logger     *zap.Logger
}

var (
	_ ports.AuthAPI = (*Gateway)(nil)
	_ ports.PostAPI = (*Gateway)(nil)
	_ ports.UserAPI = (*Gateway)(nil)
)

func NewGateway(client *Client, normalizer *normalize.Normalizer, logger *zap.Logger) *Gateway {
	if normalizer == nil {
		normalizer = normalize.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{client: client, normalizer: normalizer, logger: logger.Named("gateway")}
}

func (g *Gateway) Register(ctx context.Context, input domain.RegisterInput) error {
	_, err := g.client.Do(ctx, Request{Method: http.MethodPost, Path: "/authentication/user", Body: input})
	return err
}

func (g *Gateway) Activate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("activation token is required")
	}
	_, err := g.client.Do(ctx, Request{Method: http.MethodPut, Path: "/users/activate/" + url.PathEscape(token)})
	return err
}

func (g *Gateway) IssueToken(ctx context.Context, credentials domain.Credentials) ([]byte, error) {
	return g.client.Do(ctx, Request{Method: http.MethodPost, Path: "/authentication/token", Body: credentials})
}

func (g *Gateway) FetchFeed(ctx context.Context, query domain.FeedQuery) (domain.FeedResult, error) {
	limit := query.PageSize
	if limit <= 0 {
		limit = 10
	}
	sort := query.Sort
	if sort == "" {
		sort = domain.SortDesc
	}

	values := url.Values{}
	values.Set("limit", strconv.Itoa(limit))
	values.Set("offset", strconv.Itoa(query.Offset()))
	values.Set("sort", string(sort))
	if search := strings.TrimSpace(query.Search); search != "" {
		values.Set("search", search)
	}
	if tags := domain.CleanTags(query.Tags); len(tags) > 0 {
		values.Set("tags", strings.Join(tags, ","))
	}

	body, err := g.client.JSON(ctx, Request{Method: http.MethodGet, Path: "/users/feed", Query: values})
	if err != nil {
		return domain.FeedResult{}, err
	}

	items, total := g.list(body, "posts", "/users/feed")
	return domain.FeedResult{Items: g.normalizer.Posts(items), Total: total}, nil
}

func (g *Gateway) GetPost(ctx context.Context, id domain.ID) (domain.Post, error) {
	body, err := g.client.JSON(ctx, Request{Method: http.MethodGet, Path: "/posts/" + segment(id)})
	if err != nil {
		return domain.Post{}, err
	}
	return g.normalizer.Post(normalize.Unwrap(body, "post")), nil
}

func (g *Gateway) GetPostDetail(ctx context.Context, id domain.ID) (domain.PostDetail, error) {
	body, err := g.client.JSON(ctx, Request{Method: http.MethodGet, Path: "/posts/" + segment(id)})
	if err != nil {
		return domain.PostDetail{}, err
	}
	return g.normalizer.PostDetail(body), nil
}

func (g *Gateway) CreatePost(ctx context.Context, input domain.CreatePostInput) (domain.Post, error) {
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	payload := struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}{Title: input.Title, Content: input.Content, Tags: tags}

	body, err := g.client.JSON(ctx, Request{Method: http.MethodPost, Path: "/posts", Body: payload})
	if err != nil {
		return domain.Post{}, err
	}
	return g.normalizer.Post(normalize.Unwrap(body, "post")), nil
}

// UpdatePost sends only the fields set on input. Version is never sent: the
// backend does not honor it.
func (g *Gateway) UpdatePost(ctx context.Context, id domain.ID, input domain.UpdatePostInput) (domain.Post, error) {
	patch, err := patchBody(input)
	if err != nil {
		return domain.Post{}, err
	}

	body, err := g.client.JSON(ctx, Request{Method: http.MethodPatch, Path: "/posts/" + segment(id), Body: patch})
	if err != nil {
		return domain.Post{}, err
	}
	return g.normalizer.Post(normalize.Unwrap(body, "post")), nil
}

func (g *Gateway) AddComment(ctx context.Context, postID domain.ID, input domain.CreateCommentInput) (domain.Comment, error) {
	payload := struct {
		Content string `json:"content"`
	}{Content: input.Content}

	body, err := g.client.JSON(ctx, Request{Method: http.MethodPost, Path: "/posts/" + segment(postID) + "/comments", Body: payload})
	if err != nil {
		return domain.Comment{}, err
	}
	return g.normalizer.Comment(normalize.Unwrap(body, "comment")), nil
}

func (g *Gateway) GetUser(ctx context.Context, id domain.ID) (domain.UserSummary, error) {
	body, err := g.client.JSON(ctx, Request{Method: http.MethodGet, Path: "/users/" + segment(id)})
	if err != nil {
		return domain.UserSummary{}, err
	}
	return g.normalizer.User(normalize.Unwrap(body, "user")), nil
}

func (g *Gateway) GetUserPosts(ctx context.Context, id domain.ID) ([]domain.Post, error) {
	path := "/users/" + segment(id) + "/posts"
	body, err := g.client.JSON(ctx, Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}
	items, _ := g.list(body, "posts", path)
	return g.normalizer.Posts(items), nil
}

func (g *Gateway) Follow(ctx context.Context, id domain.ID) error {
	_, err := g.client.Do(ctx, Request{Method: http.MethodPut, Path: "/users/" + segment(id) + "/follow"})
	return err
}

func (g *Gateway) Unfollow(ctx context.Context, id domain.ID) error {
	_, err := g.client.Do(ctx, Request{Method: http.MethodPut, Path: "/users/" + segment(id) + "/unfollow"})
	return err
}

func (g *Gateway) ListFollowers(ctx context.Context, id domain.ID) ([]domain.UserSummary, error) {
	return g.users(ctx, "/users/"+segment(id)+"/followers")
}

func (g *Gateway) ListFollowing(ctx context.Context, id domain.ID) ([]domain.UserSummary, error) {
	return g.users(ctx, "/users/"+segment(id)+"/following")
}

func (g *Gateway) users(ctx context.Context, path string) ([]domain.UserSummary, error) {
	body, err := g.client.JSON(ctx, Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}
	items, _ := g.list(body, "users", path)
	return g.normalizer.Users(items), nil
}

// list recovers from unrecognized shapes by returning an empty list.
func (g *Gateway) list(body gjson.Result, plural string, path string) ([]gjson.Result, *int) {
	items, total, err := normalize.List(body, plural)
	if err != nil {
		g.logger.Warn("degrading to empty list", zap.String("path", path), zap.Error(err))
	}
	return items, total
}

func patchBody(input domain.UpdatePostInput) (json.RawMessage, error) {
	patch := []byte(`{}`)
	var err error
	if input.Title != nil {
		if patch, err = sjson.SetBytes(patch, "title", *input.Title); err != nil {
			return nil, fmt.Errorf("encode title: %w", err)
		}
	}
	if input.Content != nil {
		if patch, err = sjson.SetBytes(patch, "content", *input.Content); err != nil {
			return nil, fmt.Errorf("encode content: %w", err)
		}
	}
	if input.Tags != nil {
		tags := domain.CleanTags(*input.Tags)
		if patch, err = sjson.SetBytes(patch, "tags", tags); err != nil {
			return nil, fmt.Errorf("encode tags: %w", err)
		}
	}
	return json.RawMessage(patch), nil
}

func segment(id domain.ID) string {
	return url.PathEscape(strings.TrimSpace(id.String()))
}
