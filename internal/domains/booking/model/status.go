package model

import (
	"database/sql/driver"
	"fmt"
)

// BookingStatus is the reservation side of a booking's state.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusRejected  BookingStatus = "rejected"
)

var (
	BookingStatuses = []BookingStatus{
		BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted, BookingStatusRejected,
	}

	// ActiveBookingStatuses hold the car for their date range.
	ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}
)

func ParseBookingStatus(value string) (BookingStatus, error) {
	status := BookingStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %q", value)
	}

	return status, nil
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted, BookingStatusRejected:
		return true
	default:
		return false
	}
}

func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// IsTerminal reports whether no further transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted || s == BookingStatusRejected
}

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid booking status: %q", string(s))
	}

	return string(s), nil
}

func (s *BookingStatus) Scan(src any) error {
	value, err := scanString(src)
	if err != nil {
		return err
	}

	status, err := ParseBookingStatus(value)
	if err != nil {
		return err
	}

	*s = status

	return nil
}

// PaymentStatus is the payment side of a booking's state. It only changes in
// reaction to a booking transition.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	status := PaymentStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %q", value)
	}

	return status, nil
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded, PaymentStatusFailed:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %q", string(s))
	}

	return string(s), nil
}

func (s *PaymentStatus) Scan(src any) error {
	value, err := scanString(src)
	if err != nil {
		return err
	}

	status, err := ParsePaymentStatus(value)
	if err != nil {
		return err
	}

	*s = status

	return nil
}

func scanString(src any) (string, error) {
	switch value := src.(type) {
	case string:
		return value, nil
	case []byte:
		return string(value), nil
	default:
		return "", fmt.Errorf("unsupported status source type %T", src)
	}
}

// State is the pair of statuses a booking is in.
type State struct {
	Booking BookingStatus
	Payment PaymentStatus
}
