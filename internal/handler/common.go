package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/repository"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
)

// getUserID extracts the authenticated user identifier placed in the
// context by the JWT middleware.
func getUserID(c echo.Context) (string, error) {
	v := c.Get("user_id")
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("invalid user_id in context")
}

// getDeviceVenueID returns the venue the authenticated gate device is
// bound to, set by the scanner auth middleware.
func getDeviceVenueID(c echo.Context) (string, error) {
	v := c.Get("device_venue_id")
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("invalid device_venue_id in context")
}

// parseDateParam reads an optional ?date=YYYY-MM-DD query parameter and
// falls back to the supplied default when absent.
func parseDateParam(c echo.Context, fallback string) (string, error) {
	raw := c.QueryParam("date")
	if raw == "" {
		return fallback, nil
	}
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return "", errors.New("date must be YYYY-MM-DD")
	}
	return raw, nil
}

// serviceError maps service sentinels onto HTTP responses. Handlers call
// it for any error that is not part of their success path.
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrPassNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "credential not found"})
	case errors.Is(err, service.ErrVenueNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
	case errors.Is(err, repository.ErrScannerNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "device not found"})
	case errors.Is(err, service.ErrInvalidIssue):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotCancellable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "credential is not cancellable"})
	case errors.Is(err, service.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable, retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
