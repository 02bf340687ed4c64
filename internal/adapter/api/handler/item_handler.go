package handler

import (
	"fmt"
	"io"

	"github.com/labstack/echo/v4"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/service"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
	"campusmarket/pkg/response"
	"campusmarket/pkg/utils"
)

type ItemHandler struct {
	itemUseCase   *usecase.ItemUseCase
	reportUseCase *usecase.ReportUseCase
	fileStorage   service.FileStorage
	maxFileSize   int64
}

func NewItemHandler(itemUseCase *usecase.ItemUseCase, reportUseCase *usecase.ReportUseCase, fileStorage service.FileStorage, maxFileSize int64) *ItemHandler {
	if maxFileSize <= 0 {
		maxFileSize = service.MaxImageBytes
	}
	return &ItemHandler{
		itemUseCase:   itemUseCase,
		reportUseCase: reportUseCase,
		fileStorage:   fileStorage,
		maxFileSize:   maxFileSize,
	}
}

type createItemRequest struct {
	Title       string   `json:"title" validate:"max=120"`
	Description string   `json:"description" validate:"required,max=2000"`
	Category    string   `json:"category" validate:"required,max=60"`
	Price       string   `json:"price" validate:"required,max=32"`
	ImageURLs   []string `json:"image_urls" validate:"max=10,dive,url"`
}

type updateItemRequest struct {
	Description string `json:"description" validate:"required,max=2000"`
	Category    string `json:"category" validate:"required,max=60"`
	Price       string `json:"price" validate:"required,max=32"`
}

type reportRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *ItemHandler) ListItems(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	items, total, err := h.itemUseCase.ListItems(c.Request().Context(), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	if items == nil {
		items = []*entity.Item{}
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	owner := usecase.Owner{ID: c.Get("uid").(string)}
	owner.EmailVerified, _ = c.Get("email_verified").(bool)
	owner.DisplayName, _ = c.Get("name").(string)

	item, err := h.itemUseCase.CreateItem(c.Request().Context(), owner, usecase.CreateItemInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, item)
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	item, err := h.itemUseCase.GetItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *ItemHandler) UpdateItem(c echo.Context) error {
	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	item, err := h.itemUseCase.UpdateItem(c.Request().Context(), userID, c.Param("id"), usecase.UpdateItemInput{
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *ItemHandler) DeleteItem(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.itemUseCase.DeleteItem(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Item deleted successfully",
	})
}

func (h *ItemHandler) SubmitReport(c echo.Context) error {
	var req reportRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	result, err := h.reportUseCase.SubmitReport(c.Request().Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

// UploadImage stores a listing image and returns its public URL.
func (h *ItemHandler) UploadImage(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	if file.Size > h.maxFileSize {
		logger.Warn("UploadImage: file too large: %d bytes (max: %d)", file.Size, h.maxFileSize)
		return response.Error(c, errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", h.maxFileSize/(1024*1024)), nil))
	}

	contentType := file.Header.Get("Content-Type")
	if !service.IsAllowedImageType(contentType) {
		logger.Warn("UploadImage: invalid file type: %s", contentType)
		return response.Error(c, errors.BadRequest("File type not supported", nil))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read file", err))
	}
	defer src.Close()

	userID := c.Get("uid").(string)
	url, err := h.fileStorage.UploadImage(c.Request().Context(), io.LimitReader(src, h.maxFileSize), contentType, userID)
	if err != nil {
		logger.Error("UploadImage Error: user %s: %v", userID, err)
		return response.Error(c, errors.Internal("Failed to upload file", err))
	}

	return response.Created(c, map[string]string{
		"url": url,
	})
}
