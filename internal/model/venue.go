package model

import "time"

// Venue represents a bookable location (gym, club, studio) that admits
// visitors against a daily capacity ceiling.  The ceiling feeds the
// occupancy ledger; the coordinates feed the public distance-sorted
// listing.  Venues are configured by operators, not by the core.
//
// Fields:
//  ID            – opaque unique identifier.
//  Name          – display name.
//  Address       – street address for display.
//  Latitude      – WGS84 latitude in degrees.
//  Longitude     – WGS84 longitude in degrees.
//  DailyCapacity – maximum concurrent admissions per calendar day.
//  IsActive      – whether the venue currently accepts check-ins.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Venue struct {
	ID            string    `json:"id"`             // venues.id
	Name          string    `json:"name"`           // venues.name
	Address       string    `json:"address"`        // venues.address
	Latitude      float64   `json:"latitude"`       // venues.latitude
	Longitude     float64   `json:"longitude"`      // venues.longitude
	DailyCapacity int       `json:"daily_capacity"` // venues.daily_capacity
	IsActive      bool      `json:"is_active"`      // venues.is_active
	CreatedAt     time.Time `json:"created_at"`     // venues.created_at
	UpdatedAt     time.Time `json:"updated_at"`     // venues.updated_at
}
