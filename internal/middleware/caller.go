package middleware

import (
	"net/http"
	"strings"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/labstack/echo/v4"
)

// HeaderAccount names the account a request acts for. Authentication sits
// in front of this service; the header is trusted as given.
const HeaderAccount = "X-Account"

func Caller(c echo.Context) models.Address {
	return models.Address(strings.TrimSpace(c.Request().Header.Get(HeaderAccount)))
}

// RequireCaller rejects requests that do not name an account.
func RequireCaller(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if Caller(c).IsNull() {
			return echo.NewHTTPError(http.StatusUnauthorized, HeaderAccount+" header is required")
		}
		return next(c)
	}
}
