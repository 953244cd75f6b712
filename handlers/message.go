package handlers

import (
	"net/http"

	"github.com/LuqmanKt98/hangout-app/models"
	"github.com/LuqmanKt98/hangout-app/services"
	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	Messages *services.MessageService
}

func NewMessageHandler(svc *services.MessageService) *MessageHandler {
	return &MessageHandler{Messages: svc}
}

// POST /api/requests/:id/messages
func (h *MessageHandler) Send(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	msg, err := h.Messages.Send(c.Request.Context(), userID, requestID, req.Body)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Message sent", msg)
}

// GET /api/requests/:id/messages
func (h *MessageHandler) List(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	msgs, err := h.Messages.List(c.Request.Context(), userID, requestID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", msgs)
}

// PUT /api/requests/:id/messages/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Messages.MarkRead(c.Request.Context(), userID, requestID); err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Thread marked read", nil)
}

// GET /api/requests/:id/messages/unread
func (h *MessageHandler) ThreadUnread(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	count, err := h.Messages.UnreadCountForThread(c.Request.Context(), userID, requestID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"unread": count})
}

// GET /api/messages/unread-count
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	count, err := h.Messages.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"unread": count})
}
