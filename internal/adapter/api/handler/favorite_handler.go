package handler

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/response"
)

type FavoriteHandler struct {
	favoriteUseCase *usecase.FavoriteUseCase
}

func NewFavoriteHandler(favoriteUseCase *usecase.FavoriteUseCase) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteUseCase: favoriteUseCase,
	}
}

func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	userID := c.Get("uid").(string)
	itemID := c.Param("itemId")

	if itemID == "" {
		return response.Error(c, errors.BadRequest("Item ID is required", nil))
	}

	if err := h.favoriteUseCase.AddFavorite(c.Request().Context(), userID, itemID); err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{
		"item_id": itemID,
	})
}

func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	userID := c.Get("uid").(string)
	itemID := c.Param("itemId")

	if itemID == "" {
		return response.Error(c, errors.BadRequest("Item ID is required", nil))
	}

	if err := h.favoriteUseCase.RemoveFavorite(c.Request().Context(), userID, itemID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Item removed from favorites",
	})
}

func (h *FavoriteHandler) ClearFavorites(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.favoriteUseCase.ClearFavorites(c.Request().Context(), userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Favorites cleared",
	})
}

func (h *FavoriteHandler) ListFavorites(c echo.Context) error {
	userID := c.Get("uid").(string)

	items, err := h.favoriteUseCase.ListFavorites(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	if items == nil {
		items = []*entity.Item{}
	}

	return response.Success(c, items)
}
