package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// The surrounding platform authenticates requests and forwards the caller
// identity in a header; this package only carries it into handlers.

const (
	XUserNameHeader = "X-User-Name"

	userNameKey = "userNameKey"
)

func MiddlewareUserName(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userName := c.Request().Header.Get(XUserNameHeader)
		if userName == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "X-User-Name header is required")
		}
		c.Set(userNameKey, userName)
		return next(c)
	}
}

func GetUserName(c echo.Context) (string, error) {
	userName, ok := c.Get(userNameKey).(string)
	if !ok || userName == "" {
		return "", errors.New("no user name in request context")
	}
	return userName, nil
}
