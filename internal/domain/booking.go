package domain

import "time"

type BookingStatus string

const (
	BookingStatusUnderProcess BookingStatus = "UNDER_PROCESS"
	BookingStatusConfirmed    BookingStatus = "CONFIRMED"
	BookingStatusCompleted    BookingStatus = "COMPLETED"
	BookingStatusCancelled    BookingStatus = "CANCELLED"
)

// Booking is the durable commitment created when a claim is confirmed. It
// records who won the unit and for which window, and backs the
// "confirmed by <role>" conflict messages.
type Booking struct {
	ID          string        `json:"id"`
	UnitID      string        `json:"unit_id"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	Status      BookingStatus `json:"status"`
	CreatedByID string        `json:"created_by_id"`
	CreatedOn   time.Time     `json:"created_on"`
}

// InFlight reports whether the booking still holds the unit mid-workflow.
func (b *Booking) InFlight() bool {
	return b.Status == BookingStatusUnderProcess || b.Status == BookingStatusConfirmed
}
