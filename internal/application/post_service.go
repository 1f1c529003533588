package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/bnema/gosocial-cli/internal/ports"
)

type PostService struct {
	api ports.PostAPI
}

func NewPostService(api ports.PostAPI) *PostService {
	return &PostService{api: api}
}

func (s *PostService) Get(ctx context.Context, id domain.ID) (domain.Post, error) {
	if err := domain.RequireID("post", id); err != nil {
		return domain.Post{}, err
	}
	post, err := s.api.GetPost(ctx, id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	return post, nil
}

func (s *PostService) GetDetail(ctx context.Context, id domain.ID) (domain.PostDetail, error) {
	if err := domain.RequireID("post", id); err != nil {
		return domain.PostDetail{}, err
	}
	detail, err := s.api.GetPostDetail(ctx, id)
	if err != nil {
		return domain.PostDetail{}, fmt.Errorf("get post %s: %w", id, err)
	}
	return detail, nil
}

func (s *PostService) Create(ctx context.Context, input domain.CreatePostInput) (domain.Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Tags = domain.CleanTags(input.Tags)

	post, err := s.api.CreatePost(ctx, input)
	if err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Update sends only the fields set on input. Version is accepted but not
// sent; the backend has no optimistic concurrency check.
func (s *PostService) Update(ctx context.Context, id domain.ID, input domain.UpdatePostInput) (domain.Post, error) {
	if err := domain.RequireID("post", id); err != nil {
		return domain.Post{}, err
	}
	if input.IsEmpty() {
		return domain.Post{}, domain.ErrEmptyUpdate
	}
	if input.Tags != nil {
		tags := domain.CleanTags(*input.Tags)
		input.Tags = &tags
	}

	post, err := s.api.UpdatePost(ctx, id, input)
	if err != nil {
		return domain.Post{}, fmt.Errorf("update post %s: %w", id, err)
	}
	return post, nil
}

func (s *PostService) AddComment(ctx context.Context, postID domain.ID, content string) (domain.Comment, error) {
	if err := domain.RequireID("post", postID); err != nil {
		return domain.Comment{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, domain.ErrEmptyContent
	}

	comment, err := s.api.AddComment(ctx, postID, domain.CreateCommentInput{Content: content})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("comment on post %s: %w", postID, err)
	}
	return comment, nil
}
