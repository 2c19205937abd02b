package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/clock"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/policy"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/token"
)

// PassHandler serves member-facing credential endpoints and the
// operator cancel action.
type PassHandler struct {
	Passes service.PassStore
	Svc    *service.AccessService
	Clk    clock.Clock
}

// NewPassHandler constructs a PassHandler.  All dependencies must be
// non-nil.
func NewPassHandler(passes service.PassStore, svc *service.AccessService, clk clock.Clock) *PassHandler {
	if passes == nil || svc == nil || clk == nil {
		panic("nil dependency passed to NewPassHandler")
	}
	return &PassHandler{Passes: passes, Svc: svc, Clk: clk}
}

// passView is the JSON shape returned to members.  Status is the
// effective status at read time, so an overdue credential shows as
// EXPIRED even before the sweep has touched the row.
type passView struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	VenueID     string    `json:"venue_id"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	MaxUses     int       `json:"max_uses"`
	UseCount    int       `json:"use_count"`
	Remaining   int       `json:"remaining_uses"`
	Status      string    `json:"status"`
	Token       string    `json:"token"`
	IssuedAt    time.Time `json:"issued_at"`
}

func (h *PassHandler) view(p model.Pass) passView {
	return passView{
		ID:          p.ID,
		OrderID:     p.OrderID,
		VenueID:     p.VenueID,
		WindowStart: p.WindowStart,
		WindowEnd:   p.WindowEnd,
		MaxUses:     p.MaxUses,
		UseCount:    p.UseCount,
		Remaining:   p.Remaining(),
		Status:      policy.EffectiveStatus(p, h.Clk.Now()),
		Token:       token.Encode(p),
		IssuedAt:    p.IssuedAt,
	}
}

// ListMine handles GET /v1/me/passes and returns all credentials issued
// to the authenticated member, newest first.
func (h *PassHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	passes, err := h.Passes.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	views := make([]passView, 0, len(passes))
	for _, p := range passes {
		views = append(views, h.view(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"passes": views})
}

// GetMine handles GET /v1/me/passes/:id.  Members can only read their
// own credentials; anything else reports not found.
func (h *PassHandler) GetMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	p, err := h.Passes.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	if p.UserID != userID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "credential not found"})
	}
	return c.JSON(http.StatusOK, h.view(p))
}

// Cancel handles POST /v1/passes/:id/cancel, an operator action used
// for refunds.  Already-consumed or expired credentials report 409.
func (h *PassHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	if err := h.Svc.Cancel(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.PassStatusCancelled})
}
