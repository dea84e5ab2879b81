package feed

import (
	"context"

	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/user"
	"servswap/utils"

	"go.uber.org/zap"
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		return MaxFeedLimit
	}
	return limit
}

// parseCursor reads a NextBefore cursor. The empty cursor means the newest page.
func parseCursor(before string) (models.Cursor, error) {
	c, err := models.ParseCursor(before)
	if err != nil {
		return models.Cursor{}, apperr.Invalid("invalid cursor")
	}
	return c, nil
}

func (s *DefaultFeedService) page(ctx context.Context, userID string, posts []models.Post, limit int) (*models.FeedPage, error) {
	views, err := s.decorate(ctx, userID, posts)
	if err != nil {
		return nil, err
	}
	out := &models.FeedPage{Posts: views}
	if len(posts) == limit {
		last := posts[len(posts)-1]
		out.NextBefore = models.CursorFor(last.CreatedAt, last.ID).String()
	}
	return out, nil
}

func (s *DefaultFeedService) HomeFeed(ctx context.Context, userID, before string, limit int) (*models.FeedPage, error) {
	limit = clampLimit(limit)
	cursor, err := parseCursor(before)
	if err != nil {
		return nil, err
	}

	authors, err := s.Connections.AcceptedIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to load connections", err)
	}
	authors = append(authors, userID)

	posts, err := s.Posts.ListByAuthors(ctx, authors, cursor, limit)
	if err != nil {
		return nil, apperr.Internal("failed to load feed", err)
	}
	return s.page(ctx, userID, posts, limit)
}

// ExploreFeed lists the newest posts of everyone. The first page is served from cache when warm.
func (s *DefaultFeedService) ExploreFeed(ctx context.Context, userID, before string, limit int) (*models.FeedPage, error) {
	logger := utils.GetLogger()
	limit = clampLimit(limit)
	cursor, err := parseCursor(before)
	if err != nil {
		return nil, err
	}

	firstPage := cursor.IsZero() && s.Cache != nil
	if firstPage {
		posts, ok, err := s.Cache.Get(ctx, limit)
		if err != nil {
			logger.Warn("explore cache read failed", zap.Error(err))
		}
		if ok {
			return s.page(ctx, userID, posts, limit)
		}
	}

	posts, err := s.Posts.ListRecent(ctx, cursor, limit)
	if err != nil {
		return nil, apperr.Internal("failed to load feed", err)
	}
	if firstPage {
		if err := s.Cache.Set(ctx, limit, posts, ExploreCacheTTL); err != nil {
			logger.Warn("explore cache write failed", zap.Error(err))
		}
	}
	return s.page(ctx, userID, posts, limit)
}

func (s *DefaultFeedService) view(ctx context.Context, userID string, p *models.Post) (*models.PostView, error) {
	views, err := s.decorate(ctx, userID, []models.Post{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// decorate attaches author profiles, featured service titles and the requester's like state.
func (s *DefaultFeedService) decorate(ctx context.Context, userID string, posts []models.Post) ([]models.PostView, error) {
	authorIDs, serviceIDs := []string{}, []string{}
	seen := map[string]bool{}
	for _, p := range posts {
		if !seen["u:"+p.AuthorID] {
			seen["u:"+p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
		if p.ServiceID != "" && !seen["s:"+p.ServiceID] {
			seen["s:"+p.ServiceID] = true
			serviceIDs = append(serviceIDs, p.ServiceID)
		}
	}

	authors, err := s.Users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, apperr.Internal("failed to load post authors", err)
	}
	profiles := user.PublicByID(authors)

	titles := map[string]string{}
	if len(serviceIDs) > 0 && s.Services != nil {
		services, err := s.Services.GetByIDs(ctx, serviceIDs)
		if err != nil {
			return nil, apperr.Internal("failed to load featured services", err)
		}
		for _, svc := range services {
			titles[svc.ID] = svc.Title
		}
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		author, ok := profiles[p.AuthorID]
		if !ok {
			author = models.PublicProfile{ID: p.AuthorID, DisplayName: "Deleted member", SkillsOffered: []string{}, SkillsWanted: []string{}}
		}
		liked := false
		for _, id := range p.LikedBy {
			if id == userID {
				liked = true
				break
			}
		}
		views = append(views, models.PostView{
			Post:        p,
			Author:      author,
			LikedByMe:   liked,
			ServiceName: titles[p.ServiceID],
		})
	}
	return views, nil
}
