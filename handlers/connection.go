package handlers

import (
	"net/http"

	"servswap/models"
	"servswap/services/connection"
	"servswap/services/messaging"
	"servswap/utils"

	"github.com/gin-gonic/gin"
)

// ConnectionHandler serves connections between members and their messages.
type ConnectionHandler struct {
	Connections connection.ConnectionService
	Messaging   messaging.MessagingService
}

func (h *ConnectionHandler) RequestHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.ConnectionRequest
	if !bindJSON(c, &req) {
		return
	}
	conn, err := h.Connections.Request(c.Request.Context(), userID, req.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

func (h *ConnectionHandler) ListHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	conns, err := h.Connections.List(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

func (h *ConnectionHandler) PendingHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	pending, err := h.Connections.Pending(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

func (h *ConnectionHandler) StatusHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	status, err := h.Connections.Status(c.Request.Context(), userID, c.Param("userId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *ConnectionHandler) RespondHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.RespondConnectionRequest
	if !bindJSON(c, &req) {
		return
	}
	conn, err := h.Connections.Respond(c.Request.Context(), userID, c.Param("id"), req.Accept)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

func (h *ConnectionHandler) RemoveHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Connections.Remove(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ConnectionHandler) SendMessageHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.Messaging.Send(c.Request.Context(), userID, req.To, req.Text)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *ConnectionHandler) ConversationsHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	convs, err := h.Messaging.Conversations(c.Request.Context(), userID, pageFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

func (h *ConnectionHandler) MessagesHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, err := h.Messaging.Messages(c.Request.Context(), userID, c.Param("conversationId"), c.Query("before"), intQuery(c, "limit"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ConnectionHandler) MarkConversationReadHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Messaging.MarkRead(c.Request.Context(), userID, c.Param("conversationId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
