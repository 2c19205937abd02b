package model

// OccupancyRecord tracks how many visitors are currently admitted to a
// venue on a given calendar day.  One record exists per (venue, date)
// pair; it is created lazily on the first admission attempt of the day
// and only mutated through the capacity ledger's atomic admit/release
// operations.  Records for past dates are kept as an archive.
//
// Fields:
//  VenueID          – venue this record belongs to.
//  Date             – calendar day in UTC, formatted YYYY-MM-DD.
//  MaxCapacity      – capacity ceiling from venue configuration.
//  CurrentOccupancy – admitted visitors; 0 <= CurrentOccupancy <= MaxCapacity.
type OccupancyRecord struct {
	VenueID          string `json:"venue_id"`          // occupancy.venue_id
	Date             string `json:"date"`              // occupancy.date
	MaxCapacity      int    `json:"max_capacity"`      // occupancy.max_capacity
	CurrentOccupancy int    `json:"current_occupancy"` // occupancy.current_occupancy
}

// Available reports how many admission slots remain for the day.
func (o OccupancyRecord) Available() int {
	if o.CurrentOccupancy >= o.MaxCapacity {
		return 0
	}
	return o.MaxCapacity - o.CurrentOccupancy
}
