package model

import (
	"time"

	"driveease/shared/constant"
	"driveease/shared/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID                 = "id"
	FieldUserID             = "user_id"
	FieldCarID              = "car_id"
	FieldPickupDate         = "pickup_date"
	FieldDropDate           = "drop_date"
	FieldTotalDays          = "total_days"
	FieldTotalAmount        = "total_amount"
	FieldBookingStatus      = "booking_status"
	FieldPaymentStatus      = "payment_status"
	FieldPaymentOrderID     = "payment_order_id"
	FieldPaymentID          = "payment_id"
	FieldPaymentSignature   = "payment_signature"
	FieldPickupCity         = "pickup_city"
	FieldCancellationReason = "cancellation_reason"
	FieldCancelledAt        = "cancelled_at"
	FieldCreatedAt          = "created_at"
)

type Booking struct {
	ID                 string        `db:"id"`
	UserID             string        `db:"user_id"`
	CarID              string        `db:"car_id"`
	PickupDate         time.Time     `db:"pickup_date"`
	DropDate           time.Time     `db:"drop_date"`
	TotalDays          int           `db:"total_days"`
	TotalAmount        int64         `db:"total_amount"`
	BookingStatus      BookingStatus `db:"booking_status"`
	PaymentStatus      PaymentStatus `db:"payment_status"`
	PaymentOrderID     *string       `db:"payment_order_id"`
	PaymentID          *string       `db:"payment_id"`
	PaymentSignature   *string       `db:"payment_signature"`
	PickupCity         string        `db:"pickup_city"`
	CancellationReason *string       `db:"cancellation_reason"`
	CancelledAt        *time.Time    `db:"cancelled_at"`
	model.Metadata
}

// Car is the part of the rented car a booking reads.
type Car struct {
	ID          string
	Name        string
	PricePerDay int64
	Available   bool
	City        string
}

// NewBooking prices the range against the car and starts the booking in
// (pending, pending). Dates must already be validated.
func NewBooking(renterID string, car Car, pickup, drop, at time.Time) Booking {
	days := TotalDays(pickup, drop)

	return Booking{
		ID:            uuid.NewString(),
		UserID:        renterID,
		CarID:         car.ID,
		PickupDate:    pickup,
		DropDate:      drop,
		TotalDays:     days,
		TotalAmount:   TotalAmount(days, car.PricePerDay),
		BookingStatus: BookingStatusPending,
		PaymentStatus: PaymentStatusPending,
		PickupCity:    car.City,
		Metadata:      model.NewMetadata(renterID, at),
	}
}

func (b *Booking) State() State {
	return State{Booking: b.BookingStatus, Payment: b.PaymentStatus}
}

func (b *Booking) IsOwnedBy(userID string) bool {
	return userID != "" && b.UserID == userID
}

// StateFields lists the lifecycle columns written by a transition.
func (b *Booking) StateFields() map[string]any {
	return map[string]any{
		FieldBookingStatus:       b.BookingStatus,
		FieldPaymentStatus:       b.PaymentStatus,
		FieldPaymentOrderID:      b.PaymentOrderID,
		FieldPaymentID:           b.PaymentID,
		FieldPaymentSignature:    b.PaymentSignature,
		FieldCancellationReason:  b.CancellationReason,
		FieldCancelledAt:         b.CancelledAt,
		constant.FieldModifiedAt: b.ModifiedAt,
		constant.FieldModifiedBy: b.ModifiedBy,
	}
}

// BookingDetail is a booking joined with the renter and car it refers to.
// Joined columns are null once the car has been removed from the catalog.
type BookingDetail struct {
	Booking
	CarName   *string        `db:"car_name"   table:"cars"  column:"name"`
	CarBrand  *string        `db:"car_brand"  table:"cars"  column:"brand"`
	CarImages pq.StringArray `db:"car_images" table:"cars"  column:"images"`
	UserName  *string        `db:"user_name"  table:"users" column:"name"`
	UserEmail *string        `db:"user_email" table:"users" column:"email"`
}

func (BookingDetail) GetJoinQuery() string {
	return "LEFT JOIN cars ON cars.id = bookings.car_id LEFT JOIN users ON users.id = bookings.user_id"
}
