package feed

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"servswap/database"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/tasks"
	"servswap/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxPostText    = 2000
	maxCommentText = 500
)

func validText(text string, max int, what string) (string, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < 1 || n > max {
		return "", apperr.Invalid("%s must be 1 to %d characters", what, max)
	}
	return text, nil
}

func (s *DefaultFeedService) loadPost(ctx context.Context, postID string) (*models.Post, error) {
	p, err := s.Posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, apperr.Internal("failed to load post", err)
	}
	return p, nil
}

func (s *DefaultFeedService) CreatePost(ctx context.Context, authorID string, req models.CreatePostRequest) (*models.PostView, error) {
	logger := utils.GetLogger()

	text, err := validText(req.Text, maxPostText, "post text")
	if err != nil {
		return nil, err
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL != "" {
		u, err := url.Parse(imageURL)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return nil, apperr.Invalid("image url must be an http(s) link")
		}
	}

	author, err := s.Users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if author.Suspended {
		return nil, apperr.Forbidden("account is suspended")
	}

	if req.ServiceID != "" {
		svc, err := s.Services.GetByID(ctx, req.ServiceID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, apperr.NotFound("service not found")
			}
			return nil, apperr.Internal("failed to load service", err)
		}
		if svc.OwnerID != authorID {
			return nil, apperr.Forbidden("you can only feature your own services")
		}
	}

	post := &models.Post{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Text:      text,
		ImageURL:  imageURL,
		ServiceID: req.ServiceID,
		LikedBy:   []string{},
	}
	if err := s.Posts.CreatePost(ctx, post); err != nil {
		return nil, apperr.Internal("failed to create post", err)
	}
	logger.Info("post created", zap.String("postID", post.ID), zap.String("authorID", authorID))

	s.invalidateExplore(ctx)
	s.enqueueFanOut(author, post)

	views, err := s.decorate(ctx, authorID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *DefaultFeedService) enqueueFanOut(author *models.User, post *models.Post) {
	if s.Queue == nil {
		return
	}
	logger := utils.GetLogger()
	task, opts, err := tasks.NewFanOutTask(models.FanOutPayload{
		AuthorID: author.ID,
		Type:     models.NotifyNewPost,
		Title:    "New post",
		Body:     author.DisplayName + " shared a new post",
		Data:     map[string]string{"postId": post.ID, "authorId": author.ID},
	})
	if err != nil {
		logger.Error("failed to build fan-out task", zap.String("postID", post.ID), zap.Error(err))
		return
	}
	if _, err := s.Queue.Enqueue(task, opts...); err != nil {
		logger.Error("failed to enqueue fan-out task", zap.String("postID", post.ID), zap.Error(err))
	}
}

func (s *DefaultFeedService) invalidateExplore(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		utils.GetLogger().Warn("failed to invalidate explore cache", zap.Error(err))
	}
}

func (s *DefaultFeedService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return apperr.Forbidden("only the author can delete this post")
	}
	if err := s.Posts.DeleteCommentsForPost(ctx, postID); err != nil {
		return apperr.Internal("failed to delete comments", err)
	}
	if err := s.Posts.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("post not found")
		}
		return apperr.Internal("failed to delete post", err)
	}
	s.invalidateExplore(ctx)
	return nil
}

func (s *DefaultFeedService) Like(ctx context.Context, userID, postID string) (*models.PostView, error) {
	changed, err := s.Posts.Like(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, apperr.Internal("failed to like post", err)
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if changed && post.AuthorID != userID {
		s.notify(ctx, post.AuthorID, models.NotifyPostLiked, "New like",
			s.displayName(ctx, userID)+" liked your post", post.ID)
	}
	return s.view(ctx, userID, post)
}

func (s *DefaultFeedService) Unlike(ctx context.Context, userID, postID string) (*models.PostView, error) {
	if _, err := s.Posts.Unlike(ctx, postID, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, apperr.Internal("failed to unlike post", err)
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, userID, post)
}

func (s *DefaultFeedService) Comment(ctx context.Context, userID, postID, text string) (*models.Comment, error) {
	text, err := validText(text, maxCommentText, "comment")
	if err != nil {
		return nil, err
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		ID:       uuid.New().String(),
		PostID:   postID,
		AuthorID: userID,
		Text:     text,
	}
	if err := s.Posts.CreateComment(ctx, c); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, apperr.Internal("failed to save comment", err)
	}
	if post.AuthorID != userID {
		s.notify(ctx, post.AuthorID, models.NotifyPostCommented, "New comment",
			s.displayName(ctx, userID)+" commented on your post", post.ID)
	}
	return c, nil
}

func (s *DefaultFeedService) ListComments(ctx context.Context, postID string, page models.Page) ([]models.Comment, error) {
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.Posts.ListComments(ctx, postID, page)
	if err != nil {
		return nil, apperr.Internal("failed to list comments", err)
	}
	return comments, nil
}

func (s *DefaultFeedService) displayName(ctx context.Context, userID string) string {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return "A member"
	}
	return u.DisplayName
}

func (s *DefaultFeedService) notify(ctx context.Context, userID string, t models.NotificationType, title, body, postID string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, userID, t, title, body, map[string]string{"postId": postID}); err != nil {
		utils.GetLogger().Error("feed notification failed", zap.String("postID", postID), zap.Error(err))
	}
}
