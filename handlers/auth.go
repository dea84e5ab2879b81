package handlers

import (
	"net/http"

	"servswap/models"
	"servswap/services/user"
	"servswap/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler manages app sessions on top of Firebase sign-in.
type AuthHandler struct {
	Users user.UserService
}

// SessionHandler exchanges a Firebase ID token for a device-bound session.
func (h *AuthHandler) SessionHandler(c *gin.Context) {
	var req models.SessionRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Users.ExchangeSession(c.Request.Context(), req.IDToken, currentDevice(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Users.Logout(c.Request.Context(), userID, currentDevice(c).DeviceID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) DevicesHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	devices, err := h.Users.GetDevices(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

func (h *AuthHandler) SignOutOthersHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Users.SignOutOtherDevices(c.Request.Context(), userID, currentDevice(c).DeviceID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Other devices signed out"})
}
