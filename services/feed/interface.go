package feed

import (
	"context"
	"time"

	connectionRepo "servswap/database/repository/connection"
	feedRepo "servswap/database/repository/feed"
	serviceRepo "servswap/database/repository/service"
	userRepo "servswap/database/repository/user"
	"servswap/models"
	"servswap/services/notification"
	"servswap/services/tasks"
)

type FeedService interface {
	CreatePost(ctx context.Context, authorID string, req models.CreatePostRequest) (*models.PostView, error)
	DeletePost(ctx context.Context, userID, postID string) error
	Like(ctx context.Context, userID, postID string) (*models.PostView, error)
	Unlike(ctx context.Context, userID, postID string) (*models.PostView, error)
	Comment(ctx context.Context, userID, postID, text string) (*models.Comment, error)
	ListComments(ctx context.Context, postID string, page models.Page) ([]models.Comment, error)
	// HomeFeed lists posts by the member and their accepted connections, newest first.
	// before is the NextBefore cursor of the previous page.
	HomeFeed(ctx context.Context, userID, before string, limit int) (*models.FeedPage, error)
	ExploreFeed(ctx context.Context, userID, before string, limit int) (*models.FeedPage, error)
}

type DefaultFeedService struct {
	Posts       feedRepo.FeedRepository
	Users       userRepo.UserRepository
	Services    serviceRepo.ServiceRepository
	Connections connectionRepo.ConnectionRepository
	Notifier    notification.Notifier
	// Queue carries new-post fan-out; nil skips it.
	Queue tasks.Enqueuer
	// Cache holds the first explore page; nil disables caching.
	Cache ExploreCache
}

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 50
	ExploreCacheTTL  = 60 * time.Second
)
