package handlers

import (
	"net/http"

	"servswap/models"
	"servswap/services/marketplace"
	"servswap/utils"

	"github.com/gin-gonic/gin"
)

// ServiceHandler serves marketplace listings.
type ServiceHandler struct {
	Marketplace marketplace.MarketplaceService
}

func (h *ServiceHandler) CreateHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.Marketplace.CreateService(c.Request.Context(), userID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// ListHandler browses listings with ?category=, ?q= and ?owner= filters.
func (h *ServiceHandler) ListHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	filter := models.ServiceFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		OwnerID:  c.Query("owner"),
	}
	page := pageFrom(c)
	services, total, err := h.Marketplace.ListServices(c.Request.Context(), userID, filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services, "total": total, "page": page.Page, "limit": page.Limit})
}

func (h *ServiceHandler) GetHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	svc, err := h.Marketplace.GetService(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) UpdateHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.Marketplace.UpdateService(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) DeleteHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Marketplace.DeleteService(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ServiceHandler) UploadImageHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	path, cleanup, ok := stageImage(c)
	if !ok {
		return
	}
	defer cleanup()

	svc, err := h.Marketplace.UploadServiceImage(c.Request.Context(), userID, c.Param("id"), path)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}
