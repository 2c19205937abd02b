package utils

import (
	"math"
	"testing"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
)

func TestDistanceKm(t *testing.T) {
	t.Parallel()

	// Casablanca to Rabat is roughly 87 km as the crow flies.
	d := DistanceKm(33.5731, -7.5898, 34.0209, -6.8416)
	if d < 80 || d > 95 {
		t.Fatalf("Casablanca-Rabat distance = %.1f km, want ~87", d)
	}
	if z := DistanceKm(33.5731, -7.5898, 33.5731, -7.5898); math.Abs(z) > 1e-9 {
		t.Fatalf("distance to self = %v, want 0", z)
	}
}

func TestSortVenuesByDistance(t *testing.T) {
	t.Parallel()

	venues := []model.Venue{
		{ID: "rabat", Latitude: 34.0209, Longitude: -6.8416},
		{ID: "casablanca", Latitude: 33.5731, Longitude: -7.5898},
		{ID: "marrakech", Latitude: 31.6295, Longitude: -7.9811},
	}

	// From a point just outside Casablanca.
	sorted := SortVenuesByDistance(venues, 33.60, -7.60)
	want := []string{"casablanca", "rabat", "marrakech"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, sorted[i].ID, id)
		}
	}

	// Input order must be untouched.
	if venues[0].ID != "rabat" {
		t.Fatal("input slice was mutated")
	}
}
