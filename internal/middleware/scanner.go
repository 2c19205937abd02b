package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/utils"
)

// DeviceSource looks up an active scanner device by ID.  Implemented
// by repository.ScannerRepo.
type DeviceSource interface {
	GetActive(ctx context.Context, id string) (model.ScannerDevice, error)
}

// ScannerAuth authenticates gate terminals.  A scan request carries
// the device ID and its raw API key in headers; the key is verified
// against the stored bcrypt hash.  On success the device and its venue
// are stored in the context for the scan handler.
func ScannerAuth(devices DeviceSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deviceID := c.Request().Header.Get("X-Device-Id")
			key := c.Request().Header.Get("X-Device-Key")
			if deviceID == "" || key == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing device credentials"})
			}
			dev, err := devices.GetActive(c.Request().Context(), deviceID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown device"})
			}
			if !utils.VerifyDeviceKey(dev.KeyHash, key) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid device key"})
			}
			c.Set("device_id", dev.ID)
			c.Set("device_venue_id", dev.VenueID)
			return next(c)
		}
	}
}
