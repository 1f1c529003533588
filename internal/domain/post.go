package domain

type Post struct {
	ID        ID       `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Content   string   `json:"content" yaml:"content"`
	Tags      []string `json:"tags" yaml:"tags"`
	UserID    ID       `json:"userId" yaml:"user_id"`
	CreatedAt string   `json:"createdAt" yaml:"created_at"`
	UpdatedAt string   `json:"updatedAt" yaml:"updated_at"`
	// Version is reported by the server but never sent back on update.
	Version *int `json:"version,omitempty" yaml:"version,omitempty"`
}

type Comment struct {
	ID        ID     `json:"id" yaml:"id"`
	PostID    ID     `json:"postId" yaml:"post_id"`
	UserID    ID     `json:"userId" yaml:"user_id"`
	Content   string `json:"content" yaml:"content"`
	CreatedAt string `json:"createdAt" yaml:"created_at"`
}

type PostDetail struct {
	Post     Post      `json:"post" yaml:"post"`
	Comments []Comment `json:"comments" yaml:"comments"`
}

type CreatePostInput struct {
	Title   string
	Content string
	Tags    []string
}

// UpdatePostInput is a partial update: nil fields are left untouched server-side.
type UpdatePostInput struct {
	Title   *string
	Content *string
	Tags    *[]string
	Version *int
}

func (in UpdatePostInput) IsEmpty() bool {
	return in.Title == nil && in.Content == nil && in.Tags == nil
}

type CreateCommentInput struct {
	Content string
}
