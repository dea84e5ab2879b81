package handlers

import (
	"io"
	"net/http"

	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/subscription"
	"servswap/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody bounds Stripe event payloads.
const maxWebhookBody = 65536

type SubscriptionHandler struct {
	Subscriptions subscription.SubscriptionService
}

func (h *SubscriptionHandler) StatusHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	status, err := h.Subscriptions.Status(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *SubscriptionHandler) CheckoutHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	url, err := h.Subscriptions.CreateCheckout(c.Request.Context(), userID, req.Product)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *SubscriptionHandler) PortalHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	url, err := h.Subscriptions.CreatePortal(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *SubscriptionHandler) CancelHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Subscriptions.Cancel(c.Request.Context(), userID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Premium will end at the close of the current period"})
}

// WebhookHandler receives Stripe events. The raw body is needed for the signature check.
func (h *SubscriptionHandler) WebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(c, apperr.Invalid("cannot read body"))
		return
	}
	if err := h.Subscriptions.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.GetLogger().Warn("Stripe webhook rejected", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
