package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
)

// IssueHandler accepts the order-paid webhook from the payment
// collaborator.  The same endpoint doubles as the operator's manual
// issuance tool.
type IssueHandler struct {
	Svc *service.AccessService
}

// NewIssueHandler constructs an IssueHandler.
func NewIssueHandler(svc *service.AccessService) *IssueHandler {
	if svc == nil {
		panic("nil service passed to NewIssueHandler")
	}
	return &IssueHandler{Svc: svc}
}

// OrderPaid handles POST /v1/orders/paid.  Payment providers retry
// webhooks, so a replay of an already-processed order returns 200 with
// the originally minted credentials instead of an error.
func (h *IssueHandler) OrderPaid(c echo.Context) error {
	var body struct {
		OrderID          string    `json:"order_id"`
		UserID           string    `json:"user_id"`
		VenueID          string    `json:"venue_id"`
		EntitlementCount int       `json:"entitlement_count"`
		ValidFrom        time.Time `json:"valid_from"`
		ValidTo          time.Time `json:"valid_to"`
		MaxUses          int       `json:"max_uses_per_credential"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	passes, err := h.Svc.Issue(c.Request().Context(), service.IssueInput{
		OrderID:     body.OrderID,
		UserID:      body.UserID,
		VenueID:     body.VenueID,
		WindowStart: body.ValidFrom,
		WindowEnd:   body.ValidTo,
		MaxUses:     body.MaxUses,
		Count:       body.EntitlementCount,
	})
	if err != nil {
		if errors.Is(err, service.ErrAlreadyIssued) {
			return c.JSON(http.StatusOK, echo.Map{"order_id": body.OrderID, "passes": passes, "replay": true})
		}
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"order_id": body.OrderID, "passes": passes})
}
