package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/Eursukkul/ticket-marketplace/internal/service"
	"github.com/labstack/echo/v4"
)

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := StatusFor(err)
	msg := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if code == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		msg = http.StatusText(code)
	}

	_ = c.JSON(code, map[string]string{"message": msg})
}
