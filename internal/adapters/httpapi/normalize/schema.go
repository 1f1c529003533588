package normalize

import (
	"github.com/tidwall/gjson"
)

// Field is one logical entity field: the payload keys it may appear under, in
// precedence order, and the value used when none of them is present.
type Field struct {
	Aliases  []string
	Fallback string
}

// Lookup returns the first alias that is present and not null.
func (f Field) Lookup(raw gjson.Result) (gjson.Result, bool) {
	if !raw.IsObject() {
		return gjson.Result{}, false
	}
	for _, alias := range f.Aliases {
		if value := raw.Get(gjson.Escape(alias)); present(value) {
			return value, true
		}
	}
	return gjson.Result{}, false
}

func (f Field) String(raw gjson.Result) string {
	value, ok := f.Lookup(raw)
	if !ok {
		return f.Fallback
	}
	return text(value)
}

func present(value gjson.Result) bool {
	return value.Exists() && value.Type != gjson.Null
}

// text renders a scalar as a string. Numbers keep their literal form so large
// integer ids survive unchanged.
func text(value gjson.Result) string {
	switch value.Type {
	case gjson.String:
		return value.Str
	case gjson.Number:
		return value.Raw
	case gjson.Null:
		return ""
	default:
		return value.String()
	}
}

// truthy mirrors the loose boolean coercion servers tend to rely on.
func truthy(value gjson.Result) bool {
	switch value.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return value.Num != 0
	case gjson.String:
		return value.Str != ""
	default:
		return value.Exists()
	}
}

var postSchema = struct {
	ID, Title, Content, Tags, UserID, CreatedAt, UpdatedAt, Version Field
}{
	ID:        Field{Aliases: []string{"id", "ID", "postId", "post_id"}},
	Title:     Field{Aliases: []string{"title"}},
	Content:   Field{Aliases: []string{"content"}},
	Tags:      Field{Aliases: []string{"tags", "Tags"}},
	UserID:    Field{Aliases: []string{"userId", "user_id", "userid", "authorId", "author_id"}},
	CreatedAt: Field{Aliases: []string{"createdAt", "created_at", "CreatedAt"}},
	// UpdatedAt falls back to the resolved CreatedAt.
	UpdatedAt: Field{Aliases: []string{"updatedAt", "updated_at", "UpdatedAt"}},
	Version:   Field{Aliases: []string{"version"}},
}

var commentSchema = struct {
	ID, PostID, UserID, Content, CreatedAt Field
}{
	ID:        Field{Aliases: []string{"id", "ID", "commentId", "comment_id"}},
	PostID:    Field{Aliases: []string{"postId", "post_id"}},
	UserID:    Field{Aliases: []string{"userId", "user_id"}},
	Content:   Field{Aliases: []string{"content"}},
	CreatedAt: Field{Aliases: []string{"createdAt", "created_at"}},
}

var userSchema = struct {
	ID, Username, Email, IsActive, CreatedAt Field
}{
	ID:        Field{Aliases: []string{"id", "ID", "userId", "user_id"}},
	Username:  Field{Aliases: []string{"username", "name"}},
	Email:     Field{Aliases: []string{"email"}},
	IsActive:  Field{Aliases: []string{"isActive", "is_active"}, Fallback: "true"},
	CreatedAt: Field{Aliases: []string{"createdAt", "created_at"}},
}
