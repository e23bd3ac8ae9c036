package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kodechat/internal/app"
	"kodechat/internal/transport/http/middleware"
	"kodechat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type PostMessageRequest struct {
	Content string `json:"content"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ListMessages handles GET /api/chat/:roomId. The response is the raw JSON
// array of messages; an unknown or empty room is an empty array, not an error.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	if _, ok := middleware.SessionEmail(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}

	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	messages, err := h.chatService.ListMessages(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.MsgInternal)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// PostMessage handles POST /api/chat/:roomId. Validation order: session, room
// id, content. Posting to an unknown room id creates the room implicitly.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	email, ok := middleware.SessionEmail(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}

	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgEmptyContent)
		return
	}

	message, err := h.chatService.PostMessage(c.Request.Context(), app.PostMessageInput{
		Email:   email,
		Name:    middleware.SessionName(c),
		RoomID:  roomID,
		Content: req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmptyContent):
			response.Error(c, http.StatusBadRequest, response.MsgEmptyContent)
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.MsgInternal)
		}
		return
	}

	c.JSON(http.StatusCreated, message)
}

func parseRoomID(c *gin.Context) (uint, bool) {
	roomID64, err := strconv.ParseUint(c.Param("roomId"), 10, 64)
	if err != nil || roomID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidRoomID)
		return 0, false
	}
	return uint(roomID64), true
}
