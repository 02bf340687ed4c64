package router

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/adapter/api/handler"
)

func SetupItemRouter(v1 *echo.Group, itemHandler *handler.ItemHandler) {
	itemGroup := v1.Group("/items")

	itemGroup.GET("", itemHandler.ListItems)
	itemGroup.POST("", itemHandler.CreateItem)
	itemGroup.POST("/images", itemHandler.UploadImage)
	itemGroup.GET("/:id", itemHandler.GetItem)
	itemGroup.PATCH("/:id", itemHandler.UpdateItem)
	itemGroup.DELETE("/:id", itemHandler.DeleteItem)
	itemGroup.POST("/:id/reports", itemHandler.SubmitReport)
}
