package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/coursedesk/ms-go-checkout/app/types"
)

const userIDContextKey = "userID"

// UserID returns the authenticated user id placed into the context by
// RequireUser.
func UserID(ctx echo.Context) (string, bool) {
	userID, ok := ctx.Get(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func RequireUser(tokens *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderAuthorization))
			if header == "" {
				return unauthorized(ctx, "authorization header is required")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return unauthorized(ctx, "invalid authorization header format")
			}

			userID, err := tokens.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				return unauthorized(ctx, "invalid or expired token")
			}

			ctx.Set(userIDContextKey, userID)
			return next(ctx)
		}
	}
}

func unauthorized(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{
		Success:    false,
		Message:    message,
		ReasonCode: "unauthorized",
	})
}
