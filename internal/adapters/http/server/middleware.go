package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"cryptotrack/internal/application/auth"
	httpports "cryptotrack/internal/ports/http"
)

const userIDKey = "user_id"

type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// RequireAuth accepts "Authorization: Bearer <jwt>". A missing token is
// 401 Unauthorized; a token that fails verification is 403 Forbidden.
func RequireAuth(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return c.JSON(http.StatusUnauthorized, httpports.ErrorResponse{
					Error:   "Unauthorized",
					Message: "access token required",
				})
			}

			claims, err := tokens.ParseToken(strings.TrimSpace(token))
			if err != nil {
				return c.JSON(http.StatusForbidden, httpports.ErrorResponse{
					Error:   "Forbidden",
					Message: "invalid or expired token",
				})
			}

			c.Set(userIDKey, claims.Subject)
			return next(c)
		}
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
