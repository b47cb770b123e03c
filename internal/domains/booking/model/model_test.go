package model_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"driveease/internal/domains/booking/model"
	"driveease/shared/constant"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}

	return t
}

var now = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func TestNewBooking(t *testing.T) {
	car := model.Car{ID: "car-x", Name: "Creta", PricePerDay: 1000, Available: true, City: "Pune"}

	booking := model.NewBooking("renter-1", car, date("2024-06-10"), date("2024-06-12"), now)

	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, "renter-1", booking.UserID)
	assert.Equal(t, "car-x", booking.CarID)
	assert.Equal(t, 2, booking.TotalDays)
	assert.Equal(t, int64(2000), booking.TotalAmount)
	assert.Equal(t, model.State{Booking: model.BookingStatusPending, Payment: model.PaymentStatusPending}, booking.State())
	assert.Equal(t, "Pune", booking.PickupCity)
	assert.Nil(t, booking.PaymentOrderID)
	assert.Nil(t, booking.CancelledAt)
	assert.Equal(t, now, booking.CreatedAt)
	assert.Equal(t, "renter-1", booking.CreatedBy)
}

func TestTotalDays(t *testing.T) {
	tests := []struct {
		name   string
		pickup time.Time
		drop   time.Time
		want   int
	}{
		{name: "two calendar days", pickup: date("2024-06-10"), drop: date("2024-06-12"), want: 2},
		{name: "one day", pickup: date("2024-06-10"), drop: date("2024-06-11"), want: 1},
		{name: "same instant floors to one", pickup: date("2024-06-10"), drop: date("2024-06-10"), want: 1},
		{name: "partial day rounds up", pickup: date("2024-06-10"), drop: date("2024-06-11").Add(time.Hour), want: 2},
		{name: "across a month", pickup: date("2024-01-30"), drop: date("2024-02-02"), want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.TotalDays(tt.pickup, tt.drop))
		})
	}
}

func TestTotalAmount(t *testing.T) {
	assert.Equal(t, int64(2000), model.TotalAmount(2, 1000))
	assert.Equal(t, int64(0), model.TotalAmount(3, 0))
	assert.Equal(t, int64(10_500), model.TotalAmount(7, 1500))
}

func TestValidateRange(t *testing.T) {
	today := date("2024-06-05")

	tests := []struct {
		name    string
		pickup  time.Time
		drop    time.Time
		wantErr error
	}{
		{name: "future range", pickup: date("2024-06-10"), drop: date("2024-06-12")},
		{name: "pickup today", pickup: today, drop: date("2024-06-06")},
		{name: "pickup in the past", pickup: date("2024-06-04"), drop: date("2024-06-06"), wantErr: model.ErrPickupInPast},
		{name: "drop equals pickup", pickup: date("2024-06-10"), drop: date("2024-06-10"), wantErr: model.ErrDropBeforePickup},
		{name: "drop before pickup", pickup: date("2024-06-10"), drop: date("2024-06-09"), wantErr: model.ErrDropBeforePickup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := model.ValidateRange(tt.pickup, tt.drop, today)

			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, model.ErrInvalidDateRange)
		})
	}
}

func TestOverlaps(t *testing.T) {
	existingPickup, existingDrop := date("2024-06-10"), date("2024-06-12")

	tests := []struct {
		name   string
		pickup string
		drop   string
		want   bool
	}{
		{name: "identical range", pickup: "2024-06-10", drop: "2024-06-12", want: true},
		{name: "starts inside", pickup: "2024-06-11", drop: "2024-06-13", want: true},
		{name: "ends inside", pickup: "2024-06-08", drop: "2024-06-11", want: true},
		{name: "contains existing", pickup: "2024-06-01", drop: "2024-06-20", want: true},
		// Date-only ranges are closed: picking up the day the previous renter drops conflicts.
		{name: "same day turnover after", pickup: "2024-06-12", drop: "2024-06-14", want: true},
		{name: "same day turnover before", pickup: "2024-06-08", drop: "2024-06-10", want: true},
		{name: "day after drop", pickup: "2024-06-13", drop: "2024-06-15", want: false},
		{name: "ends day before pickup", pickup: "2024-06-07", drop: "2024-06-09", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.Overlaps(date(tt.pickup), date(tt.drop), existingPickup, existingDrop)
			assert.Equal(t, tt.want, got)

			reverse := model.Overlaps(existingPickup, existingDrop, date(tt.pickup), date(tt.drop))
			assert.Equal(t, got, reverse)
		})
	}
}

func TestOverlapFilter(t *testing.T) {
	filter := model.OverlapFilter("car-x", date("2024-06-10"), date("2024-06-12"), "")
	where, args := filter.GetWhereClause()

	assert.Contains(t, where, "bookings.car_id = :car_id")
	assert.Contains(t, where, "bookings.booking_status = ANY(:booking_status)")
	assert.Contains(t, where, "bookings.pickup_date <= :overlap_drop")
	assert.Contains(t, where, "bookings.drop_date >= :overlap_pickup")
	assert.NotContains(t, where, "exclude_id")
	assert.Equal(t, "car-x", args["car_id"])
	assert.Equal(t, pq.Array([]string{"pending", "confirmed"}), args["booking_status"])
	assert.Equal(t, date("2024-06-12"), args["overlap_drop"])
	assert.Equal(t, date("2024-06-10"), args["overlap_pickup"])

	filter = model.OverlapFilter("car-x", date("2024-06-10"), date("2024-06-12"), "booking-1")
	where, args = filter.GetWhereClause()

	assert.Contains(t, where, "bookings.id != :exclude_id")
	assert.Equal(t, "booking-1", args["exclude_id"])
}

func TestStateGuard(t *testing.T) {
	filter := model.StateGuard("booking-1", model.State{Booking: model.BookingStatusConfirmed, Payment: model.PaymentStatusPaid})
	where, args := filter.GetWhereClause()

	assert.Equal(t, "(id = :id AND booking_status = :current_booking_status AND payment_status = :current_payment_status)", where)
	assert.Equal(t, map[string]any{
		"id":                     "booking-1",
		"current_booking_status": "confirmed",
		"current_payment_status": "paid",
	}, args)
}

func newBooking(status model.BookingStatus, payment model.PaymentStatus) *model.Booking {
	return &model.Booking{
		ID:            "booking-1",
		UserID:        "renter-1",
		CarID:         "car-x",
		PickupDate:    date("2024-06-10"),
		DropDate:      date("2024-06-12"),
		TotalDays:     2,
		TotalAmount:   2000,
		BookingStatus: status,
		PaymentStatus: payment,
	}
}

type trigger func(b *model.Booking) (model.Notification, error)

func payment(b *model.Booking) (model.Notification, error) {
	return b.ConfirmPayment(model.PaymentRef{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}, "renter-1", now)
}

func cancel(b *model.Booking) (model.Notification, error) {
	return b.Cancel("plans changed", "renter-1", now)
}

func admin(target model.BookingStatus) trigger {
	return func(b *model.Booking) (model.Notification, error) {
		return b.ApplyAdminStatus(target, "admin-1", now)
	}
}

func TestTransitions(t *testing.T) {
	statuses := []model.BookingStatus{
		model.BookingStatusPending,
		model.BookingStatusConfirmed,
		model.BookingStatusCancelled,
		model.BookingStatusCompleted,
		model.BookingStatusRejected,
	}
	payments := []model.PaymentStatus{
		model.PaymentStatusPending,
		model.PaymentStatusPaid,
		model.PaymentStatusRefunded,
		model.PaymentStatusFailed,
	}
	triggers := map[string]trigger{
		"payment verified":   payment,
		"cancel":             cancel,
		"admin -> confirmed": admin(model.BookingStatusConfirmed),
		"admin -> cancelled": admin(model.BookingStatusCancelled),
		"admin -> rejected":  admin(model.BookingStatusRejected),
		"admin -> completed": admin(model.BookingStatusCompleted),
	}
	targets := map[string]model.BookingStatus{
		"admin -> confirmed": model.BookingStatusConfirmed,
		"admin -> cancelled": model.BookingStatusCancelled,
		"admin -> rejected":  model.BookingStatusRejected,
		"admin -> completed": model.BookingStatusCompleted,
	}

	expectedRefund := func(from model.PaymentStatus) model.PaymentStatus {
		if from == model.PaymentStatusPaid {
			return model.PaymentStatusRefunded
		}

		return from
	}

	for _, status := range statuses {
		for _, pay := range payments {
			for name, apply := range triggers {
				t.Run(string(status)+"/"+string(pay)+"/"+name, func(t *testing.T) {
					booking := newBooking(status, pay)
					before := *booking

					notification, err := apply(booking)

					target, isAdmin := targets[name]

					var wantErr error

					switch {
					case name == "payment verified" && pay == model.PaymentStatusPaid:
						wantErr = model.ErrAlreadyPaid
					case isAdmin && status == target:
						wantErr = model.ErrAlreadyInStatus
					case status.IsTerminal():
						wantErr = model.ErrTerminalState
					case name == "admin -> confirmed" && pay != model.PaymentStatusPaid:
						wantErr = model.ErrPaymentRequired
					}

					if wantErr != nil {
						require.ErrorIs(t, err, wantErr)
						assert.Equal(t, model.NotifyNone, notification)
						assert.Equal(t, before, *booking, "rejected transition must not mutate the booking")

						return
					}

					require.NoError(t, err)
					assert.Equal(t, now, booking.ModifiedAt)

					switch name {
					case "payment verified":
						assert.Equal(t, model.BookingStatusConfirmed, booking.BookingStatus)
						assert.Equal(t, model.PaymentStatusPaid, booking.PaymentStatus)
						assert.Equal(t, model.NotifyConfirmed, notification)
						assert.Equal(t, "pay_1", *booking.PaymentID)
					case "cancel", "admin -> cancelled", "admin -> rejected":
						want := model.BookingStatusCancelled
						if name == "admin -> rejected" {
							want = model.BookingStatusRejected
						}

						assert.Equal(t, want, booking.BookingStatus)
						assert.Equal(t, expectedRefund(pay), booking.PaymentStatus)
						assert.Equal(t, model.NotifyCancelled, notification)
						require.NotNil(t, booking.CancelledAt)
						assert.Equal(t, now, *booking.CancelledAt)
					case "admin -> confirmed":
						assert.Equal(t, model.BookingStatusConfirmed, booking.BookingStatus)
						assert.Equal(t, model.PaymentStatusPaid, booking.PaymentStatus)
						assert.Equal(t, model.NotifyConfirmed, notification)
					case "admin -> completed":
						assert.Equal(t, model.BookingStatusCompleted, booking.BookingStatus)
						assert.Equal(t, pay, booking.PaymentStatus)
						assert.Equal(t, model.NotifyNone, notification)
						assert.Nil(t, booking.CancelledAt)
					}
				})
			}
		}
	}
}

func TestApplyAdminStatus_InvalidTarget(t *testing.T) {
	for _, target := range []model.BookingStatus{model.BookingStatusPending, "archived", ""} {
		booking := newBooking(model.BookingStatusConfirmed, model.PaymentStatusPaid)

		_, err := booking.ApplyAdminStatus(target, "admin-1", now)

		assert.ErrorIs(t, err, model.ErrInvalidStatus, "target %q", target)
		assert.Equal(t, model.BookingStatusConfirmed, booking.BookingStatus)
	}
}

func TestCancel_ReasonAndTimestampAreKept(t *testing.T) {
	booking := newBooking(model.BookingStatusConfirmed, model.PaymentStatusPaid)

	_, err := booking.Cancel("plans changed", "renter-1", now)
	require.NoError(t, err)

	require.NotNil(t, booking.CancellationReason)
	assert.Equal(t, "plans changed", *booking.CancellationReason)
	assert.Equal(t, model.PaymentStatusRefunded, booking.PaymentStatus)

	_, err = booking.Cancel("second attempt", "renter-1", now.Add(time.Hour))
	assert.ErrorIs(t, err, model.ErrTerminalState)
	assert.Equal(t, "plans changed", *booking.CancellationReason)
	assert.Equal(t, now, *booking.CancelledAt)
}

func TestCancel_WithoutReason(t *testing.T) {
	booking := newBooking(model.BookingStatusPending, model.PaymentStatusPending)

	_, err := booking.Cancel("", "renter-1", now)
	require.NoError(t, err)

	assert.Nil(t, booking.CancellationReason)
	assert.Equal(t, model.PaymentStatusPending, booking.PaymentStatus)
}

func TestCanPay(t *testing.T) {
	assert.NoError(t, newBooking(model.BookingStatusPending, model.PaymentStatusPending).CanPay())
	assert.NoError(t, newBooking(model.BookingStatusConfirmed, model.PaymentStatusFailed).CanPay())
	assert.ErrorIs(t, newBooking(model.BookingStatusConfirmed, model.PaymentStatusPaid).CanPay(), model.ErrAlreadyPaid)
	assert.ErrorIs(t, newBooking(model.BookingStatusCancelled, model.PaymentStatusRefunded).CanPay(), model.ErrTerminalState)
}

func TestAttachOrder(t *testing.T) {
	booking := newBooking(model.BookingStatusPending, model.PaymentStatusPending)

	booking.AttachOrder("order_1", "renter-1", now)

	require.NotNil(t, booking.PaymentOrderID)
	assert.Equal(t, "order_1", *booking.PaymentOrderID)
	assert.Equal(t, model.State{Booking: model.BookingStatusPending, Payment: model.PaymentStatusPending}, booking.State())
}

func TestRequester(t *testing.T) {
	booking := newBooking(model.BookingStatusPending, model.PaymentStatusPending)

	assert.True(t, model.Requester{ID: "renter-1", Role: "user"}.CanAccess(booking))
	assert.True(t, model.Requester{ID: "admin-1", Role: "admin"}.CanAccess(booking))
	assert.True(t, model.Requester{ID: "root", Role: "superadmin"}.CanAccess(booking))
	assert.False(t, model.Requester{ID: "renter-2", Role: "user"}.CanAccess(booking))
	assert.False(t, model.Requester{Role: "user"}.CanAccess(&model.Booking{}))
}

func TestRequesterFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "renter-1")
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, "user")

	assert.Equal(t, model.Requester{ID: "renter-1", Role: "user"}, model.RequesterFromContext(ctx))
	assert.Equal(t, model.Requester{}, model.RequesterFromContext(context.Background()))
}

func TestStatusScanValue(t *testing.T) {
	var status model.BookingStatus

	require.NoError(t, status.Scan([]byte("confirmed")))
	assert.Equal(t, model.BookingStatusConfirmed, status)
	assert.Error(t, status.Scan("archived"))
	assert.Error(t, status.Scan(42))

	value, err := model.BookingStatusRejected.Value()
	require.NoError(t, err)
	assert.Equal(t, "rejected", value)

	_, err = model.BookingStatus("archived").Value()
	assert.Error(t, err)

	var pay model.PaymentStatus

	require.NoError(t, pay.Scan("refunded"))
	assert.Equal(t, model.PaymentStatusRefunded, pay)

	_, err = model.ParsePaymentStatus("chargeback")
	assert.Error(t, err)
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, errors.Is(model.ErrPickupInPast, model.ErrInvalidDateRange))
	assert.False(t, errors.Is(model.ErrDateConflict, model.ErrInvalidDateRange))
	assert.True(t, errors.Is(model.ErrCarNotFound, model.ErrNotFound))
	assert.False(t, errors.Is(model.ErrPaymentRequired, model.ErrAlreadyPaid))
}

func TestApplyAdminStatus_ConfirmRequiresPayment(t *testing.T) {
	booking := newBooking(model.BookingStatusPending, model.PaymentStatusPending)
	before := *booking

	notification, err := booking.ApplyAdminStatus(model.BookingStatusConfirmed, "admin-1", now)

	require.ErrorIs(t, err, model.ErrPaymentRequired)
	assert.Equal(t, model.NotifyNone, notification)
	assert.Equal(t, before, *booking)

	booking.PaymentStatus = model.PaymentStatusPaid

	notification, err = booking.ApplyAdminStatus(model.BookingStatusConfirmed, "admin-1", now)

	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, booking.BookingStatus)
	assert.Equal(t, model.NotifyConfirmed, notification)
}
