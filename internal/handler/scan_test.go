package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/clock"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/store"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/token"
)

const testVenue = "venue-1"

func newScanEnv(t *testing.T) (*ScanHandler, *store.MemoryPassStore, *store.MemoryLedger, clock.Clock) {
	t.Helper()
	passes := store.NewMemoryPassStore()
	ledger := store.NewMemoryLedger()
	ledger.SetCapacity(testVenue, 10)
	clk := clock.NewFixed(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := service.NewAccessService(passes, ledger, clk, service.WithRetry(1, 0))
	return NewScanHandler(svc, clk), passes, ledger, clk
}

func seedPass(t *testing.T, passes *store.MemoryPassStore, clk clock.Clock, venueID string) model.Pass {
	t.Helper()
	p := model.Pass{
		ID:          "pass-1",
		OrderID:     "order-1",
		UserID:      "user-1",
		VenueID:     venueID,
		WindowStart: clk.Now().Add(-time.Hour),
		WindowEnd:   clk.Now().Add(time.Hour),
		MaxUses:     1,
		Status:      model.PassStatusIssued,
		IssuedAt:    clk.Now().Add(-time.Hour),
	}
	if err := passes.CreateBatch(context.Background(), p.OrderID, []model.Pass{p}); err != nil {
		t.Fatalf("seed pass: %v", err)
	}
	return p
}

// doScan runs one POST /v1/scan request with the device identity the
// middleware would have resolved.
func doScan(t *testing.T, h *ScanHandler, venueID, body string) (*httptest.ResponseRecorder, service.RedemptionResult) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/scan", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("device_id", "device-1")
	c.Set("device_venue_id", venueID)
	if err := h.Scan(c); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	var result service.RedemptionResult
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec, result
}

func TestScan_Admits(t *testing.T) {
	h, passes, _, clk := newScanEnv(t)
	p := seedPass(t, passes, clk, testVenue)

	rec, result := doScan(t, h, testVenue, `{"token":"`+token.Encode(p)+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !result.Admitted {
		t.Fatalf("admitted = false, reason %q", result.Reason)
	}
	if result.PassID != p.ID {
		t.Errorf("credential_id = %q, want %q", result.PassID, p.ID)
	}
	if result.Occupancy == nil || result.Occupancy.CurrentOccupancy != 1 {
		t.Errorf("occupancy snapshot missing or wrong: %+v", result.Occupancy)
	}
}

func TestScan_SecondScanRefused(t *testing.T) {
	h, passes, _, clk := newScanEnv(t)
	p := seedPass(t, passes, clk, testVenue)
	body := `{"token":"` + token.Encode(p) + `"}`

	doScan(t, h, testVenue, body)
	rec, result := doScan(t, h, testVenue, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if result.Admitted {
		t.Fatal("second scan admitted")
	}
	if result.Reason != "ALREADY_USED" {
		t.Errorf("reason = %q, want ALREADY_USED", result.Reason)
	}
}

func TestScan_WrongVenueDevice(t *testing.T) {
	h, passes, ledger, clk := newScanEnv(t)
	p := seedPass(t, passes, clk, testVenue)

	_, result := doScan(t, h, "venue-other", `{"token":"`+token.Encode(p)+`"}`)
	if result.Admitted {
		t.Fatal("cross-venue scan admitted")
	}
	if result.Reason != service.ReasonWrongVenue {
		t.Errorf("reason = %q, want %q", result.Reason, service.ReasonWrongVenue)
	}
	// the credential must be untouched
	got, err := passes.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UseCount != 0 {
		t.Errorf("use_count = %d after refused scan, want 0", got.UseCount)
	}
	rec, err := ledger.GetOccupancy(context.Background(), testVenue, "2024-06-01")
	if err != nil {
		t.Fatalf("GetOccupancy: %v", err)
	}
	if rec.CurrentOccupancy != 0 {
		t.Errorf("occupancy = %d after refused scan, want 0", rec.CurrentOccupancy)
	}
}

// A token whose venue claim was rewritten to match the scanning device
// must still be refused: the binding is checked against the stored
// pass, not the token body.
func TestScan_TamperedVenueClaim(t *testing.T) {
	h, passes, _, clk := newScanEnv(t)
	p := seedPass(t, passes, clk, "venue-other")

	forged := p
	forged.VenueID = testVenue
	_, result := doScan(t, h, testVenue, `{"token":"`+token.Encode(forged)+`"}`)
	if result.Admitted {
		t.Fatal("forged venue claim admitted")
	}
	if result.Reason != service.ReasonWrongVenue {
		t.Errorf("reason = %q, want %q", result.Reason, service.ReasonWrongVenue)
	}
	got, err := passes.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UseCount != 0 {
		t.Errorf("use_count = %d after refused scan, want 0", got.UseCount)
	}
}

func TestScan_MalformedToken(t *testing.T) {
	h, _, _, _ := newScanEnv(t)
	rec, result := doScan(t, h, testVenue, `{"token":"not-a-token"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if result.Admitted || result.Reason != service.ReasonMalformedToken {
		t.Errorf("got admitted=%v reason=%q, want refused MALFORMED_TOKEN", result.Admitted, result.Reason)
	}
}

func TestScan_MissingToken(t *testing.T) {
	h, _, _, _ := newScanEnv(t)
	rec, _ := doScan(t, h, testVenue, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestScan_NoDeviceContext(t *testing.T) {
	h, _, _, _ := newScanEnv(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/scan", strings.NewReader(`{"token":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Scan(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
