package feedRepo

import (
	"context"

	"servswap/models"
)

// FeedRepository stores posts and their comments.
type FeedRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	// ListByAuthors returns posts by any of authorIDs that sort after before,
	// newest first. A zero before means from the newest post.
	ListByAuthors(ctx context.Context, authorIDs []string, before models.Cursor, limit int) ([]models.Post, error)
	ListRecent(ctx context.Context, before models.Cursor, limit int) ([]models.Post, error)
	// Like adds userID to the post's likers. The bool is false when the user already liked it.
	Like(ctx context.Context, postID, userID string) (bool, error)
	Unlike(ctx context.Context, postID, userID string) (bool, error)
	CountPosts(ctx context.Context) (int64, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID string, page models.Page) ([]models.Comment, error)
	DeleteCommentsForPost(ctx context.Context, postID string) error
}
