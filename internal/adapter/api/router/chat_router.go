package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
)

// SetupChatRouter registers the chat routes. Conversations are addressed by
// the other participant's uid.
func SetupChatRouter(v1 *echo.Group, chatHandler *handler.ChatHandler) {
	chatGroup := v1.Group("/chats")

	chatGroup.GET("", chatHandler.ListConversations)
	chatGroup.POST("/:uid", chatHandler.OpenConversation)
	chatGroup.PUT("/:uid/read", chatHandler.MarkRead)

	chatGroup.GET("/:uid/messages", chatHandler.ListMessages)
	chatGroup.POST("/:uid/messages", chatHandler.SendText)
	chatGroup.POST("/:uid/cards", chatHandler.SendCard)

	chatGroup.POST("/:uid/messages/:messageId/accept", chatHandler.AcceptOffer)
}
