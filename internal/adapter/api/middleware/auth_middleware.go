package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"campusmarket/internal/infrastructure/firebase"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
	"campusmarket/pkg/response"
)

// DebugUserHeader carries the caller id when dev auth is enabled.
const DebugUserHeader = "X-Debug-User"

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*firebase.Identity, error)
}

type AuthMiddleware struct {
	verifier         TokenVerifier
	allowDebugHeader bool
}

func NewAuthMiddleware(verifier TokenVerifier, allowDebugHeader bool) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:         verifier,
		allowDebugHeader: allowDebugHeader,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := m.extractToken(c)
		if err != nil {
			return response.Error(c, err)
		}

		identity, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			logger.Debug("Authenticate Error: token rejected: %v", err)
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		c.Set("uid", identity.UID)
		c.Set("email_verified", identity.EmailVerified)
		c.Set("name", identity.Name)

		return next(c)
	}
}

// extractToken reads the bearer token. Browsers cannot set headers on a
// WebSocket handshake, so a token query parameter is accepted as well.
func (m *AuthMiddleware) extractToken(c echo.Context) (string, error) {
	if m.allowDebugHeader {
		if user := c.Request().Header.Get(DebugUserHeader); user != "" {
			return user, nil
		}
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}

	return parts[1], nil
}
