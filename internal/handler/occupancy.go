package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/clock"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
)

// OccupancyHandler exposes the per-venue-per-day headcount.
type OccupancyHandler struct {
	Ledger service.CapacityLedger
	Clk    clock.Clock
}

// NewOccupancyHandler constructs an OccupancyHandler.
func NewOccupancyHandler(ledger service.CapacityLedger, clk clock.Clock) *OccupancyHandler {
	if ledger == nil || clk == nil {
		panic("nil dependency passed to NewOccupancyHandler")
	}
	return &OccupancyHandler{Ledger: ledger, Clk: clk}
}

// Get handles GET /v1/venues/:id/occupancy.  An optional ?date=
// parameter selects a day other than today (UTC).
func (h *OccupancyHandler) Get(c echo.Context) error {
	venueID := c.Param("id")
	date, err := parseDateParam(c, h.Clk.Now().UTC().Format("2006-01-02"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	rec, err := h.Ledger.GetOccupancy(c.Request().Context(), venueID, date)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"venue_id":          rec.VenueID,
		"date":              rec.Date,
		"max_capacity":      rec.MaxCapacity,
		"current_occupancy": rec.CurrentOccupancy,
		"available":         rec.Available(),
	})
}
