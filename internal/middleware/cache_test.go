package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

// newRouteContext builds a context the way the router would: the
// request targets a concrete URL while the matched route is the
// parameterized template.
func newRouteContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/venues/:id/occupancy")
	return c
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	t.Run("distinct venues get distinct keys", func(t *testing.T) {
		a := cacheKey("occ", newRouteContext("/v1/venues/venue-a/occupancy"))
		b := cacheKey("occ", newRouteContext("/v1/venues/venue-b/occupancy"))
		if a == b {
			t.Fatalf("venues share cache key %q", a)
		}
	})

	t.Run("distinct dates get distinct keys", func(t *testing.T) {
		a := cacheKey("occ", newRouteContext("/v1/venues/venue-a/occupancy?date=2024-01-01"))
		b := cacheKey("occ", newRouteContext("/v1/venues/venue-a/occupancy?date=2024-01-02"))
		if a == b {
			t.Fatalf("dates share cache key %q", a)
		}
	})

	t.Run("identical requests share a key", func(t *testing.T) {
		a := cacheKey("occ", newRouteContext("/v1/venues/venue-a/occupancy?date=2024-01-01"))
		b := cacheKey("occ", newRouteContext("/v1/venues/venue-a/occupancy?date=2024-01-01"))
		if a != b {
			t.Fatalf("same request hashed to %q and %q", a, b)
		}
	})
}
