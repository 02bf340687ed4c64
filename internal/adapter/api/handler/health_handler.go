package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	storeDriver string
	authMode    string
}

func NewHealthHandler(storeDriver, authMode string) *HealthHandler {
	return &HealthHandler{
		storeDriver: storeDriver,
		authMode:    authMode,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"store":  h.storeDriver,
		"auth":   h.authMode,
		"time":   time.Now().Format(time.RFC3339),
	})
}
