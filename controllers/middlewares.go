package controllers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"wardrobeapi/logging"
	"wardrobeapi/stores"

	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// UserMiddleware resolves the token subject into the current user.
func UserMiddleware(users stores.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.ErrUnauthorized
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.ErrUnauthorized
			}
			userID, ok := subjectID(claims["sub"])
			if !ok {
				logging.Warn().Interface("sub", claims["sub"]).Msg("token without a usable subject")
				return echo.ErrUnauthorized
			}

			currentUser, err := users.Get(c.Request().Context(), uint(userID))
			if errors.Is(err, stores.ErrNotFound) {
				return echo.ErrUnauthorized
			}
			if err != nil {
				sentry.CaptureException(fmt.Errorf("[User %d] loading current user: %w", userID, err))
				return echo.ErrInternalServerError
			}
			if currentUser.Banned {
				return echo.NewHTTPError(http.StatusForbidden)
			}
			c.Set("currentUser", currentUser)
			return next(c)
		}
	}
}

// subjectID reads a user id from the sub claim, written either as a decimal
// string or as a JSON number.
func subjectID(sub interface{}) (uint64, bool) {
	switch v := sub.(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		return id, err == nil && id > 0
	case float64:
		if v < 1 || v != math.Trunc(v) || v > math.MaxUint32 {
			return 0, false
		}
		return uint64(v), true
	}
	return 0, false
}
