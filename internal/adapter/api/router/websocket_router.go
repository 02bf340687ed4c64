package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
)

func SetupWebSocketRouter(v1 *echo.Group, wsHandler *handler.WebSocketHandler) {
	wsGroup := v1.Group("/ws")
	wsGroup.GET("/chats", wsHandler.SubscribeConversations)
	wsGroup.GET("/chats/:uid", wsHandler.SubscribeMessages)
}
