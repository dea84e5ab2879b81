package handlers

import (
	"net/http"

	"servswap/models"
	"servswap/services/feed"
	"servswap/utils"

	"github.com/gin-gonic/gin"
)

// FeedHandler serves posts and the home and explore feeds.
type FeedHandler struct {
	Feed feed.FeedService
}

// HomeHandler pages with ?before=<nextBefore>&limit=.
func (h *FeedHandler) HomeHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, err := h.Feed.HomeFeed(c.Request.Context(), userID, c.Query("before"), intQuery(c, "limit"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *FeedHandler) ExploreHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, err := h.Feed.ExploreFeed(c.Request.Context(), userID, c.Query("before"), intQuery(c, "limit"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *FeedHandler) CreatePostHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.Feed.CreatePost(c.Request.Context(), userID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *FeedHandler) DeletePostHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Feed.DeletePost(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FeedHandler) LikeHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	post, err := h.Feed.Like(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *FeedHandler) UnlikeHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	post, err := h.Feed.Unlike(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *FeedHandler) CommentHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.Feed.Comment(c.Request.Context(), userID, c.Param("id"), req.Text)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *FeedHandler) ListCommentsHandler(c *gin.Context) {
	comments, err := h.Feed.ListComments(c.Request.Context(), c.Param("id"), pageFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
