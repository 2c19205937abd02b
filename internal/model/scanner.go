package model

import "time"

// ScannerDevice is a gate terminal installed at a venue entrance.  A
// device authenticates scan requests with an API key that is generated
// once at registration and stored only as a bcrypt hash.  The raw key
// is shown to the operator a single time.
//
// Fields:
//  ID        – opaque unique identifier.
//  VenueID   – venue the device is installed at.
//  Label     – human-readable name (e.g. "main entrance").
//  KeyHash   – bcrypt hash of the device API key.
//  IsActive  – whether the device may authenticate scans.
//  CreatedAt – registration timestamp.
type ScannerDevice struct {
	ID        string    // scanner_devices.id
	VenueID   string    // scanner_devices.venue_id
	Label     string    // scanner_devices.label
	KeyHash   string    // scanner_devices.key_hash
	IsActive  bool      // scanner_devices.is_active
	CreatedAt time.Time // scanner_devices.created_at
}
