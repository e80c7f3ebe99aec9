package handler

import (
	"net/http"

	"kotoba-server/internal/services"
	"kotoba-server/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler is the REST mirror of the realtime chat operations, for
// clients that poll instead of holding a socket open.
type ChatHandler struct {
	chats *services.ChatService
}

func NewChatHandler(chats *services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

func (h *ChatHandler) RecentChats(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	views, err := h.chats.RecentChats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if views == nil {
		views = []httpdto.RecentChatView{}
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(views))
}

func (h *ChatHandler) History(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	receiverID, err := uuid.Parse(c.Param("receiverId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid receiver id", "INVALID_INPUT"))
		return
	}

	views, err := h.chats.History(c.Request.Context(), userID, receiverID)
	if err != nil {
		respondError(c, err)
		return
	}
	if views == nil {
		views = []httpdto.MessageView{}
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(views))
}

// Send accepts a message over REST. Unlike the socket op, validation
// failures are surfaced explicitly here.
func (h *ChatHandler) Send(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_INPUT"))
		return
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid receiver id", "INVALID_INPUT"))
		return
	}

	view, err := h.chats.SendMessage(c.Request.Context(), userID, receiverID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	view.IsMine = true
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(view))
}
