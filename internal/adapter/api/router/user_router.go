package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
)

func SetupUserRouter(v1 *echo.Group, userHandler *handler.UserHandler, favoriteHandler *handler.FavoriteHandler) {
	userGroup := v1.Group("/users")
	userGroup.GET("/:uid", userHandler.GetProfile)
	userGroup.GET("/:uid/items", userHandler.ListUserItems)

	meGroup := v1.Group("/me")
	meGroup.GET("", userHandler.GetMe)
	meGroup.PUT("", userHandler.UpdateProfile)
	meGroup.DELETE("", userHandler.DeleteAccount)
	meGroup.GET("/reported-items", userHandler.ListReportedItems)

	meGroup.GET("/favorites", favoriteHandler.ListFavorites)
	meGroup.DELETE("/favorites", favoriteHandler.ClearFavorites)
	meGroup.POST("/favorites/:itemId", favoriteHandler.AddFavorite)
	meGroup.DELETE("/favorites/:itemId", favoriteHandler.RemoveFavorite)
}
