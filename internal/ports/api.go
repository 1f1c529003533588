package ports

import (
	"context"

	"github.com/bnema/gosocial-cli/internal/domain"
)

type AuthAPI interface {
	Register(ctx context.Context, input domain.RegisterInput) error
	Activate(ctx context.Context, token string) error
	// IssueToken returns the raw login response body; token extraction is the caller's job.
	IssueToken(ctx context.Context, credentials domain.Credentials) ([]byte, error)
}

type FeedAPI interface {
	FetchFeed(ctx context.Context, query domain.FeedQuery) (domain.FeedResult, error)
}

type PostAPI interface {
	FeedAPI
	GetPost(ctx context.Context, id domain.ID) (domain.Post, error)
	GetPostDetail(ctx context.Context, id domain.ID) (domain.PostDetail, error)
	CreatePost(ctx context.Context, input domain.CreatePostInput) (domain.Post, error)
	UpdatePost(ctx context.Context, id domain.ID, input domain.UpdatePostInput) (domain.Post, error)
	AddComment(ctx context.Context, postID domain.ID, input domain.CreateCommentInput) (domain.Comment, error)
}

type UserAPI interface {
	GetUser(ctx context.Context, id domain.ID) (domain.UserSummary, error)
	GetUserPosts(ctx context.Context, id domain.ID) ([]domain.Post, error)
	Follow(ctx context.Context, id domain.ID) error
	Unfollow(ctx context.Context, id domain.ID) error
	ListFollowers(ctx context.Context, id domain.ID) ([]domain.UserSummary, error)
	ListFollowing(ctx context.Context, id domain.ID) ([]domain.UserSummary, error)
}
