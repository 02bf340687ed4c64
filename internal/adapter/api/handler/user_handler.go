package handler

import (
	"github.com/labstack/echo/v4"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/response"
)

type UserHandler struct {
	userUseCase   *usecase.UserUseCase
	itemUseCase   *usecase.ItemUseCase
	reportUseCase *usecase.ReportUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase, itemUseCase *usecase.ItemUseCase, reportUseCase *usecase.ReportUseCase) *UserHandler {
	return &UserHandler{
		userUseCase:   userUseCase,
		itemUseCase:   itemUseCase,
		reportUseCase: reportUseCase,
	}
}

type updateProfileRequest struct {
	Name      string `json:"name" validate:"max=80"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"max=32"`
	Bio       string `json:"bio" validate:"max=500"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.userUseCase.GetProfile(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

// ListUserItems lists a user's listings; ?available=true skips sold ones.
func (h *UserHandler) ListUserItems(c echo.Context) error {
	availableOnly := c.QueryParam("available") == "true"

	items, err := h.itemUseCase.ListUserItems(c.Request().Context(), c.Param("uid"), availableOnly)
	if err != nil {
		return response.Error(c, err)
	}
	if items == nil {
		items = []*entity.Item{}
	}

	return response.Success(c, items)
}

func (h *UserHandler) GetMe(c echo.Context) error {
	userID := c.Get("uid").(string)

	user, err := h.userUseCase.GetMe(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	if user.Favorites == nil {
		user.Favorites = []string{}
	}

	return response.Success(c, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), userID, entity.ProfileUpdate{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) DeleteAccount(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.userUseCase.DeleteAccount(c.Request().Context(), userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Account deleted successfully",
	})
}

// ListReportedItems returns the caller's listings that have been reported.
func (h *UserHandler) ListReportedItems(c echo.Context) error {
	userID := c.Get("uid").(string)

	items, err := h.reportUseCase.ListReportedItems(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, items)
}
