package handlers

import (
	"context"
	"net/http"

	"servswap/models"
	"servswap/services/swap"
	"servswap/utils"

	"github.com/gin-gonic/gin"
)

// SwapHandler serves swap proposals and their lifecycle.
type SwapHandler struct {
	Swaps swap.SwapService
}

func (h *SwapHandler) ProposeHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.ProposeSwapRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Swaps.Propose(c.Request.Context(), userID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// ListHandler lists the member's swaps; ?role=sent|received|all and ?status= narrow it.
func (h *SwapHandler) ListHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	filter := models.SwapListFilter{
		Role:   c.Query("role"),
		Status: models.SwapStatus(c.Query("status")),
	}
	swaps, err := h.Swaps.ListSwaps(c.Request.Context(), userID, filter, pageFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"swaps": swaps})
}

func (h *SwapHandler) GetHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	s, err := h.Swaps.GetSwap(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SwapHandler) MatchesHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	matches, err := h.Swaps.Matches(c.Request.Context(), userID, intQuery(c, "limit"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

type swapAction func(ctx context.Context, userID, swapID string) (*models.Swap, error)

// transition wraps the accept, decline, cancel and complete endpoints.
func (h *SwapHandler) transition(action swapAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		s, err := action(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func (h *SwapHandler) AcceptHandler() gin.HandlerFunc   { return h.transition(h.Swaps.Accept) }
func (h *SwapHandler) DeclineHandler() gin.HandlerFunc  { return h.transition(h.Swaps.Decline) }
func (h *SwapHandler) CancelHandler() gin.HandlerFunc   { return h.transition(h.Swaps.Cancel) }
func (h *SwapHandler) CompleteHandler() gin.HandlerFunc { return h.transition(h.Swaps.MarkComplete) }

func (h *SwapHandler) ReviewHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.Swaps.Review(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}
