package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/utils"
)

// VenueStore is the persistence surface the venue handlers need.  It is
// satisfied by both the MySQL repository and the in-memory store.
type VenueStore interface {
	Create(ctx context.Context, v model.Venue) error
	GetByID(ctx context.Context, id string) (model.Venue, error)
	ListActive(ctx context.Context) ([]model.Venue, error)
	UpdateCapacity(ctx context.Context, id string, capacity int) error
	SetActive(ctx context.Context, id string, active bool) error
}

// ScannerStore is the persistence surface for gate device registration.
type ScannerStore interface {
	Create(ctx context.Context, d model.ScannerDevice) error
	Deactivate(ctx context.Context, id string) error
}

// VenueHandler serves the venue registry: public discovery plus
// operator administration of venues and their gate devices.
type VenueHandler struct {
	Venues     VenueStore
	Scanners   ScannerStore
	BcryptCost int
}

// NewVenueHandler constructs a VenueHandler.
func NewVenueHandler(venues VenueStore, scanners ScannerStore, bcryptCost int) *VenueHandler {
	if venues == nil || scanners == nil {
		panic("nil store passed to NewVenueHandler")
	}
	return &VenueHandler{Venues: venues, Scanners: scanners, BcryptCost: bcryptCost}
}

// List handles GET /v1/venues.  When both ?lat= and ?lng= are present
// the venues are ordered by distance from that point.
func (h *VenueHandler) List(c echo.Context) error {
	venues, err := h.Venues.ListActive(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	latRaw, lngRaw := c.QueryParam("lat"), c.QueryParam("lng")
	if latRaw != "" && lngRaw != "" {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lng, errLng := strconv.ParseFloat(lngRaw, 64)
		if errLat != nil || errLng != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "lat and lng must be numbers"})
		}
		venues = utils.SortVenuesByDistance(venues, lat, lng)
	}
	return c.JSON(http.StatusOK, echo.Map{"venues": venues})
}

// Get handles GET /v1/venues/:id.
func (h *VenueHandler) Get(c echo.Context) error {
	v, err := h.Venues.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Create handles POST /v1/venues (operator only).
func (h *VenueHandler) Create(c echo.Context) error {
	var body struct {
		Name          string  `json:"name"`
		Address       string  `json:"address"`
		Latitude      float64 `json:"latitude"`
		Longitude     float64 `json:"longitude"`
		DailyCapacity int     `json:"daily_capacity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.DailyCapacity < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "daily_capacity must not be negative"})
	}
	v := model.Venue{
		ID:            utils.NewID(),
		Name:          body.Name,
		Address:       body.Address,
		Latitude:      body.Latitude,
		Longitude:     body.Longitude,
		DailyCapacity: body.DailyCapacity,
		IsActive:      true,
	}
	if err := h.Venues.Create(c.Request().Context(), v); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// UpdateCapacity handles PATCH /v1/venues/:id/capacity (operator only).
// Lowering the ceiling only affects days without an occupancy record;
// existing records keep the ceiling they were created with.
func (h *VenueHandler) UpdateCapacity(c echo.Context) error {
	var body struct {
		DailyCapacity int `json:"daily_capacity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.DailyCapacity < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "daily_capacity must not be negative"})
	}
	id := c.Param("id")
	if err := h.Venues.UpdateCapacity(c.Request().Context(), id, body.DailyCapacity); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "daily_capacity": body.DailyCapacity})
}

// SetActive handles PATCH /v1/venues/:id/active (operator only).
func (h *VenueHandler) SetActive(c echo.Context) error {
	var body struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.Bind(&body); err != nil || body.IsActive == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_active is required"})
	}
	id := c.Param("id")
	if err := h.Venues.SetActive(c.Request().Context(), id, *body.IsActive); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": *body.IsActive})
}

// RegisterDevice handles POST /v1/venues/:id/devices (operator only).
// The raw device key is returned exactly once; only its bcrypt hash is
// stored.
func (h *VenueHandler) RegisterDevice(c echo.Context) error {
	venueID := c.Param("id")
	if _, err := h.Venues.GetByID(c.Request().Context(), venueID); err != nil {
		return serviceError(c, err)
	}
	var body struct {
		Label string `json:"label"`
	}
	if err := c.Bind(&body); err != nil || body.Label == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "label is required"})
	}
	key, err := utils.NewDeviceKey()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	hash, err := utils.HashDeviceKey(key, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	device := model.ScannerDevice{
		ID:       utils.NewID(),
		VenueID:  venueID,
		Label:    body.Label,
		KeyHash:  hash,
		IsActive: true,
	}
	if err := h.Scanners.Create(c.Request().Context(), device); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         device.ID,
		"venue_id":   device.VenueID,
		"label":      device.Label,
		"device_key": key,
	})
}

// DeactivateDevice handles DELETE /v1/devices/:id (operator only).
func (h *VenueHandler) DeactivateDevice(c echo.Context) error {
	id := c.Param("id")
	if err := h.Scanners.Deactivate(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": false})
}
