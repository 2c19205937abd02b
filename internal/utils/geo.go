package utils // package utils provides small pure helpers shared across handlers

import (
	"math"
	"sort"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two WGS84
// coordinates using the haversine formula.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// SortVenuesByDistance orders venues by proximity to the given point,
// nearest first.  It is a pure, stateless utility: the input slice is
// left untouched and a new ordering is returned.
func SortVenuesByDistance(venues []model.Venue, lat, lng float64) []model.Venue {
	out := make([]model.Venue, len(venues))
	copy(out, venues)
	sort.SliceStable(out, func(i, j int) bool {
		di := DistanceKm(lat, lng, out[i].Latitude, out[i].Longitude)
		dj := DistanceKm(lat, lng, out[j].Latitude, out[j].Longitude)
		return di < dj
	})
	return out
}
