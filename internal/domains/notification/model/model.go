package model

import "time"

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"

	HeaderEventType = "event-type"
)

// Email is published for the mail delivery worker.
type Email struct {
	Event      string    `json:"event"`
	BookingID  string    `json:"booking_id"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	ToName     string    `json:"to_name"`
	Subject    string    `json:"subject"`
	HTML       string    `json:"html"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingMail is what the booking templates render.
type BookingMail struct {
	Name         string
	CarName      string
	BookingID    string
	PickupDate   string
	DropDate     string
	PickupCity   string
	TotalDays    int
	TotalAmount  int64
	Currency     string
	Refunded     bool
	Reason       string
	SupportEmail string
}
