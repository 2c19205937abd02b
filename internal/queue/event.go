// Package queue connects the service to the message broker: it
// consumes payment confirmations and publishes admission fan-out for
// external dashboards.  Message payloads are defined here.
package queue

// OrderPaidEvent is consumed from the order/payment collaborator when
// an order completes.  It carries everything issuance needs; the
// consumer is idempotent per order, so broker redeliveries are safe.
type OrderPaidEvent struct {
	OrderID              string `json:"order_id"`
	UserID               string `json:"user_id"`
	VenueID              string `json:"venue_id"`
	EntitlementCount     int    `json:"entitlement_count"`
	ValidFrom            string `json:"valid_from"` // RFC3339, UTC
	ValidTo              string `json:"valid_to"`   // RFC3339, UTC
	MaxUsesPerCredential int    `json:"max_uses_per_credential"`
}

// AdmissionEvent is published after every successful check-in.  It
// includes the fresh occupancy snapshot so dashboards can update
// without querying the primary database.
type AdmissionEvent struct {
	PassID           string `json:"pass_id"`
	VenueID          string `json:"venue_id"`
	Date             string `json:"date"`
	UseCount         int    `json:"use_count"`
	MaxUses          int    `json:"max_uses"`
	CurrentOccupancy int    `json:"current_occupancy"`
	MaxCapacity      int    `json:"max_capacity"`
	AdmittedAt       string `json:"admitted_at"` // RFC3339, UTC
}
