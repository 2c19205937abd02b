package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/clock"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
)

// ScanHandler serves the gate scan endpoint.  Authentication is handled
// by the scanner device middleware before requests reach it.
type ScanHandler struct {
	Svc *service.AccessService
	Clk clock.Clock
}

// NewScanHandler constructs a ScanHandler.  Both dependencies must be
// non-nil.
func NewScanHandler(svc *service.AccessService, clk clock.Clock) *ScanHandler {
	if svc == nil || clk == nil {
		panic("nil dependency passed to NewScanHandler")
	}
	return &ScanHandler{Svc: svc, Clk: clk}
}

// Scan handles POST /v1/scan.  The body carries the raw token read from
// the QR code; the device's venue binding is enforced by the service
// against the stored pass.  Rejections are reported with 200 and a
// structured body so gate devices can distinguish "denied" from
// "broken"; only infrastructure failures produce 5xx.
func (h *ScanHandler) Scan(c echo.Context) error {
	venueID, err := getDeviceVenueID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&body); err != nil || body.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}
	result, err := h.Svc.Redeem(c.Request().Context(), body.Token, venueID, h.Clk.Now())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
