package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, handlers *handler.Handlers, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	SetupHealthRouter(e, handlers.Health)

	v1 := e.Group("/v1", middleware.RateLimit(limiter), authMiddleware.Authenticate)
	SetupChatRouter(v1, handlers.Chat)
	SetupWebSocketRouter(v1, handlers.WebSocket)
	SetupItemRouter(v1, handlers.Item)
	SetupUserRouter(v1, handlers.User, handlers.Favorite)
}
