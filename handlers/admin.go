package handlers

import (
	"net/http"

	"servswap/services/admin"
	"servswap/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates moderation and reporting operations.
type AdminHandler struct {
	Admin admin.AdminService
}

func (h *AdminHandler) ListUsersHandler(c *gin.Context) {
	list, err := h.Admin.ListUsers(c.Request.Context(), pageFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) SuspendHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.Admin.SuspendUser(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.GetLogger().Info("Member suspended", zap.String("userID", id))
	c.JSON(http.StatusOK, gin.H{"message": "User suspended"})
}

func (h *AdminHandler) UnsuspendHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.Admin.UnsuspendUser(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.GetLogger().Info("Member unsuspended", zap.String("userID", id))
	c.JSON(http.StatusOK, gin.H{"message": "User unsuspended"})
}

func (h *AdminHandler) StatsHandler(c *gin.Context) {
	stats, err := h.Admin.Stats(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) TakeDownServiceHandler(c *gin.Context) {
	if err := h.Admin.TakeDownService(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LegalHandler is public: policies are shown before sign-in.
func (h *AdminHandler) LegalHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sections": h.Admin.LegalSections()})
}

// HealthHandler reports the last dependency check.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.Mongo
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}
	code := http.StatusOK
	state := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "checks": status})
}
