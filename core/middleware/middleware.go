package middleware

import (
	"crypto/subtle"
	"strings"

	"quietblock-api/core/cache"
	"quietblock-api/core/config"
	"quietblock-api/core/controller"
	"quietblock-api/core/errors"
	"quietblock-api/core/logger"
	"quietblock-api/core/utils"

	"github.com/labstack/echo/v4"
)

// ContextKeyUserID is where AuthMiddleware stores the authenticated user id.
const ContextKeyUserID = "user_id"

// HeaderInternalToken carries the shared secret for /internal routes.
const HeaderInternalToken = "X-Internal-Token"

type Middleware struct {
	cache cache.Cache
}

func NewMiddleware(cache cache.Cache) *Middleware {
	return &Middleware{cache: cache}
}

// AuthMiddleware validates the Bearer token, rejects blacklisted tokens
// and stores the user id in the request context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return controller.NewErrorResponse(401, errors.ErrMissingAuthorizationHeader, "missing authorization header")
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				return controller.NewErrorResponse(401, errors.ErrInvalidTokenFormat, "authorization header must use Bearer scheme")
			}

			if m.cache != nil {
				blacklisted, err := m.cache.IsTokenBlacklisted(c.Request().Context(), token)
				if err != nil {
					logger.Error("Middleware:Auth:IsTokenBlacklisted:Error:", err)
				} else if blacklisted {
					return controller.NewErrorResponse(401, errors.ErrUnauthorized, "token has been revoked")
				}
			}

			tokenData, err := utils.ValidateAndParseToken(token)
			if err != nil {
				if ae, ok := err.(*errors.AppError); ok {
					return controller.NewErrorResponse(401, ae.Code, ae.Message)
				}
				return controller.NewErrorResponse(401, errors.ErrUnauthorized, "invalid token")
			}

			c.Set(ContextKeyUserID, tokenData.UserID)
			c.Set("token", token)
			c.Set("token_expires_at", tokenData.ExpiresAt)
			return next(c)
		}
	}
}

// InternalMiddleware guards trigger endpoints with a shared secret. The
// periodic trigger authenticates with this header; everything else is
// rejected.
func (m *Middleware) InternalMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cfg, ok := config.GetSafe()
			if !ok || cfg.Internal.Token == "" {
				logger.Error("Middleware:Internal:TokenNotConfigured")
				return controller.NewErrorResponse(503, errors.ErrInternalServer, "internal endpoints are not configured")
			}

			got := c.Request().Header.Get(HeaderInternalToken)
			if subtle.ConstantTimeCompare([]byte(got), []byte(cfg.Internal.Token)) != 1 {
				return controller.NewErrorResponse(401, errors.ErrUnauthorized, "invalid internal token")
			}
			return next(c)
		}
	}
}
