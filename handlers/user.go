package handlers

import (
	"net/http"

	"servswap/models"
	"servswap/services/swap"
	"servswap/services/user"
	"servswap/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler serves profile endpoints.
type UserHandler struct {
	Users user.UserService
	Swaps swap.SwapService
}

func (h *UserHandler) GetMeHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	u, err := h.Users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) UpdateMeHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.UserUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Users.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DeleteMeHandler permanently removes the account and everything it owns.
func (h *UserHandler) DeleteMeHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Users.DeleteAccount(c.Request.Context(), userID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func (h *UserHandler) UploadAvatarHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	path, cleanup, ok := stageImage(c)
	if !ok {
		return
	}
	defer cleanup()

	u, err := h.Users.UploadAvatar(c.Request.Context(), userID, path)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) RegisterFCMTokenHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.FCMTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Users.RegisterFCMToken(c.Request.Context(), userID, req.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetUserHandler(c *gin.Context) {
	p, err := h.Users.GetPublicProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// SearchUsersHandler finds members by offered skill (?skill=) or name (?q=).
func (h *UserHandler) SearchUsersHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	users, err := h.Users.SearchUsers(c.Request.Context(), userID, c.Query("skill"), c.Query("q"), pageFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) ReviewsHandler(c *gin.Context) {
	reviews, err := h.Swaps.ListReviews(c.Request.Context(), c.Param("id"), pageFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
