package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/tidwall/gjson"
)

// Normalizer maps arbitrary server payloads onto canonical entities. The only
// non-determinism is the clock used for missing creation timestamps.
type Normalizer struct {
	now func() time.Time
}

func New(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

var std = New(nil)

func Post(raw gjson.Result) domain.Post {
	return std.Post(raw)
}

func Comment(raw gjson.Result) domain.Comment {
	return std.Comment(raw)
}

func User(raw gjson.Result) domain.UserSummary {
	return std.User(raw)
}

func (n *Normalizer) timestamp() string {
	return n.now().UTC().Format(time.RFC3339)
}

func (n *Normalizer) Post(raw gjson.Result) domain.Post {
	createdAt, ok := postSchema.CreatedAt.Lookup(raw)
	created := n.timestamp()
	if ok {
		created = text(createdAt)
	}

	updated := created
	if updatedAt, ok := postSchema.UpdatedAt.Lookup(raw); ok {
		updated = text(updatedAt)
	}

	tags, _ := postSchema.Tags.Lookup(raw)

	post := domain.Post{
		ID:        domain.ID(postSchema.ID.String(raw)),
		Title:     postSchema.Title.String(raw),
		Content:   postSchema.Content.String(raw),
		Tags:      Tags(tags),
		UserID:    domain.ID(postSchema.UserID.String(raw)),
		CreatedAt: created,
		UpdatedAt: updated,
	}
	if version, ok := postSchema.Version.Lookup(raw); ok && version.Type == gjson.Number {
		v := int(version.Int())
		post.Version = &v
	}
	return post
}

func (n *Normalizer) Comment(raw gjson.Result) domain.Comment {
	created := n.timestamp()
	if createdAt, ok := commentSchema.CreatedAt.Lookup(raw); ok {
		created = text(createdAt)
	}

	return domain.Comment{
		ID:        domain.ID(commentSchema.ID.String(raw)),
		PostID:    domain.ID(commentSchema.PostID.String(raw)),
		UserID:    domain.ID(commentSchema.UserID.String(raw)),
		Content:   commentSchema.Content.String(raw),
		CreatedAt: created,
	}
}

func (n *Normalizer) User(raw gjson.Result) domain.UserSummary {
	created := n.timestamp()
	if createdAt, ok := userSchema.CreatedAt.Lookup(raw); ok {
		created = text(createdAt)
	}

	active := userSchema.IsActive.Fallback == "true"
	if value, ok := userSchema.IsActive.Lookup(raw); ok {
		active = truthy(value)
	}

	return domain.UserSummary{
		ID:        domain.ID(userSchema.ID.String(raw)),
		Username:  userSchema.Username.String(raw),
		Email:     userSchema.Email.String(raw),
		IsActive:  active,
		CreatedAt: created,
	}
}

// Tags accepts null, an array, or a comma separated string. Falsy array
// entries are dropped and every tag is trimmed.
func Tags(value gjson.Result) []string {
	switch {
	case !present(value):
		return []string{}
	case value.IsArray():
		tags := make([]string, 0, len(value.Array()))
		for _, entry := range value.Array() {
			if !truthy(entry) || entry.IsObject() || entry.IsArray() {
				continue
			}
			tags = append(tags, text(entry))
		}
		return domain.CleanTags(tags)
	case value.Type == gjson.String:
		return domain.SplitTags(value.Str)
	default:
		return []string{}
	}
}

// Posts normalizes every element of items.
func (n *Normalizer) Posts(items []gjson.Result) []domain.Post {
	posts := make([]domain.Post, 0, len(items))
	for _, item := range items {
		posts = append(posts, n.Post(item))
	}
	return posts
}

func (n *Normalizer) Comments(items []gjson.Result) []domain.Comment {
	comments := make([]domain.Comment, 0, len(items))
	for _, item := range items {
		comments = append(comments, n.Comment(item))
	}
	return comments
}

func (n *Normalizer) Users(items []gjson.Result) []domain.UserSummary {
	users := make([]domain.UserSummary, 0, len(items))
	for _, item := range items {
		users = append(users, n.User(item))
	}
	return users
}

// PostDetail reads a post and its comments. Comments may be nested in the post
// or sit beside it in the envelope.
func (n *Normalizer) PostDetail(body gjson.Result) domain.PostDetail {
	payload := Data(body)
	raw := Unwrap(body, "post")

	comments := raw.Get("comments")
	if !present(comments) {
		comments = payload.Get("comments")
	}

	detail := domain.PostDetail{Post: n.Post(raw), Comments: []domain.Comment{}}
	if comments.IsArray() {
		detail.Comments = n.Comments(comments.Array())
	}
	return detail
}

// Data strips a single {"data": ...} envelope when present.
func Data(body gjson.Result) gjson.Result {
	if body.IsObject() {
		if data := body.Get("data"); present(data) {
			return data
		}
	}
	return body
}

// Unwrap strips up to two envelope levels: {"data": ...} and then a named
// inner key such as "post". Whatever remains is treated as the entity.
func Unwrap(body gjson.Result, name string) gjson.Result {
	payload := Data(body)
	if name != "" && payload.IsObject() {
		if inner := payload.Get(gjson.Escape(name)); present(inner) {
			return inner
		}
	}
	return payload
}

// ShapeError reports a success body that matched no known list shape.
// Callers recover from it by degrading to an empty list.
type ShapeError struct {
	Plural string
	Got    string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unrecognized list shape: want array, {items: [...]} or {%s: [...]}, got %s", e.Plural, e.Got)
}

// List extracts list items from a bare array, {"items": [...]} or a named
// plural key, in that order, after stripping a {"data": ...} envelope.
func List(body gjson.Result, plural string) ([]gjson.Result, *int, error) {
	payload := Data(body)
	if payload.IsArray() {
		return payload.Array(), nil, nil
	}
	if items := payload.Get("items"); payload.IsObject() && items.IsArray() {
		return items.Array(), total(payload), nil
	}
	if plural != "" && payload.IsObject() {
		if named := payload.Get(gjson.Escape(plural)); named.IsArray() {
			return named.Array(), total(payload), nil
		}
	}
	return []gjson.Result{}, nil, &ShapeError{Plural: plural, Got: kind(payload)}
}

func total(payload gjson.Result) *int {
	value := payload.Get("total")
	if value.Type != gjson.Number {
		return nil
	}
	n := int(value.Int())
	return &n
}

func kind(value gjson.Result) string {
	switch {
	case !value.Exists():
		return "empty body"
	case value.IsObject():
		keys := make([]string, 0)
		value.ForEach(func(key, _ gjson.Result) bool {
			keys = append(keys, key.String())
			return len(keys) < 5
		})
		return "object{" + strings.Join(keys, ",") + "}"
	default:
		return strings.ToLower(value.Type.String())
	}
}
