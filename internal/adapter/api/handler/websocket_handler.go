package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"campusmarket/internal/domain/entity"
	ws "campusmarket/internal/infrastructure/websocket"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/logger"
	"campusmarket/pkg/response"
)

type WebSocketHandler struct {
	wsManager   *ws.Manager
	chatUseCase *usecase.ChatUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, chatUseCase *usecase.ChatUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:   wsManager,
		chatUseCase: chatUseCase,
	}
}

// SubscribeConversations streams the caller's conversation list.
func (h *WebSocketHandler) SubscribeConversations(c echo.Context) error {
	userID := c.Get("uid").(string)

	feed, err := h.chatUseCase.SubscribeConversationList(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		feed.Stop()
		logger.Warn("SubscribeConversations Error: upgrade failed for %s: %v", userID, err)
		return nil
	}

	ws.Stream[[]*entity.Conversation](h.wsManager, conn, userID, "conversations", feed)
	return nil
}

// SubscribeMessages streams the messages of the conversation with :uid.
func (h *WebSocketHandler) SubscribeMessages(c echo.Context) error {
	userID, conversationID, err := conversationWith(c)
	if err != nil {
		return response.Error(c, err)
	}

	feed, err := h.chatUseCase.SubscribeMessages(c.Request().Context(), conversationID, userID)
	if err != nil {
		return response.Error(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		feed.Stop()
		logger.Warn("SubscribeMessages Error: upgrade failed for %s: %v", userID, err)
		return nil
	}

	ws.Stream[[]*entity.Message](h.wsManager, conn, userID, "messages", feed)
	return nil
}
