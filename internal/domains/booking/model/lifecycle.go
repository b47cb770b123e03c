package model

import (
	"time"
)

// Notification is the message a transition asks to be sent to the renter.
type Notification int

const (
	NotifyNone Notification = iota
	NotifyConfirmed
	NotifyCancelled
)

// PaymentRef holds the gateway references of a verified payment.
type PaymentRef struct {
	OrderID   string
	PaymentID string
	Signature string
}

// CanPay reports whether a payment may still be started or verified.
func (b *Booking) CanPay() error {
	if b.PaymentStatus == PaymentStatusPaid {
		return ErrAlreadyPaid
	}

	if b.BookingStatus.IsTerminal() {
		return ErrTerminalState
	}

	return nil
}

// AttachOrder stores the gateway order without changing the state.
func (b *Booking) AttachOrder(orderID, actor string, at time.Time) {
	b.PaymentOrderID = &orderID
	b.touch(actor, at)
}

// ConfirmPayment moves the booking to (confirmed, paid).
func (b *Booking) ConfirmPayment(ref PaymentRef, actor string, at time.Time) (Notification, error) {
	if err := b.CanPay(); err != nil {
		return NotifyNone, err
	}

	b.PaymentOrderID = &ref.OrderID
	b.PaymentID = &ref.PaymentID
	b.PaymentSignature = &ref.Signature
	b.BookingStatus = BookingStatusConfirmed
	b.PaymentStatus = PaymentStatusPaid
	b.touch(actor, at)

	return NotifyConfirmed, nil
}

// Cancel is the renter or admin cancellation of an active booking.
func (b *Booking) Cancel(reason, actor string, at time.Time) (Notification, error) {
	if b.BookingStatus.IsTerminal() {
		return NotifyNone, ErrTerminalState
	}

	b.close(BookingStatusCancelled, reason, at)
	b.touch(actor, at)

	return NotifyCancelled, nil
}

// ApplyAdminStatus moves the booking to target on behalf of an administrator.
// Pending is never a valid target and only a paid booking can be confirmed.
func (b *Booking) ApplyAdminStatus(target BookingStatus, actor string, at time.Time) (Notification, error) {
	if !target.IsValid() || target == BookingStatusPending {
		return NotifyNone, ErrInvalidStatus
	}

	if b.BookingStatus == target {
		return NotifyNone, ErrAlreadyInStatus
	}

	if b.BookingStatus.IsTerminal() {
		return NotifyNone, ErrTerminalState
	}

	if target == BookingStatusConfirmed && b.PaymentStatus != PaymentStatusPaid {
		return NotifyNone, ErrPaymentRequired
	}

	notification := NotifyNone

	switch target {
	case BookingStatusConfirmed:
		b.BookingStatus = BookingStatusConfirmed
		notification = NotifyConfirmed
	case BookingStatusCancelled, BookingStatusRejected:
		b.close(target, "", at)
		notification = NotifyCancelled
	case BookingStatusCompleted:
		b.BookingStatus = BookingStatusCompleted
	case BookingStatusPending:
		return NotifyNone, ErrInvalidStatus
	}

	b.touch(actor, at)

	return notification, nil
}

func (b *Booking) close(status BookingStatus, reason string, at time.Time) {
	b.BookingStatus = status

	if b.PaymentStatus == PaymentStatusPaid {
		b.PaymentStatus = PaymentStatusRefunded
	}

	if b.CancelledAt == nil {
		b.CancelledAt = &at
	}

	if b.CancellationReason == nil && reason != "" {
		b.CancellationReason = &reason
	}
}

func (b *Booking) touch(actor string, at time.Time) {
	b.ModifiedAt = at
	b.ModifiedBy = actor
}
