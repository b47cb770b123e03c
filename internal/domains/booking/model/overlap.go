package model

import (
	"math"
	"time"

	"driveease/shared/constant"
	"driveease/shared/dto"
)

var day = constant.HoursPerDay * time.Hour

// TotalDays is the rental duration in whole days, never less than one.
func TotalDays(pickup, drop time.Time) int {
	days := int(math.Ceil(float64(drop.Sub(pickup)) / float64(day)))
	if days < 1 {
		return 1
	}

	return days
}

func TotalAmount(days int, pricePerDay int64) int64 {
	return int64(days) * pricePerDay
}

// ValidateRange checks a requested range against today. All three are
// expected to be calendar dates.
func ValidateRange(pickup, drop, today time.Time) error {
	if pickup.Before(today) {
		return ErrPickupInPast
	}

	if !drop.After(pickup) {
		return ErrDropBeforePickup
	}

	return nil
}

// Overlaps is the closed-interval test: a range starting the day another ends
// conflicts with it.
func Overlaps(aPickup, aDrop, bPickup, bDrop time.Time) bool {
	return !aPickup.After(bDrop) && !aDrop.Before(bPickup)
}

// OverlapFilter selects active bookings of the car overlapping [pickup, drop].
// excludeID leaves one booking out of the check when set.
func OverlapFilter(carID string, pickup, drop time.Time, excludeID string) dto.FilterGroup {
	statuses := make([]string, 0, len(ActiveBookingStatuses))
	for _, status := range ActiveBookingStatuses {
		statuses = append(statuses, status.String())
	}

	filters := []any{
		dto.Filter{Field: FieldCarID, Value: carID, Operator: dto.FilterOperatorEq, Table: TableName},
		dto.Filter{Field: FieldBookingStatus, Value: statuses, Operator: dto.FilterOperatorIn, Table: TableName},
		dto.Filter{ArgName: "overlap_drop", Field: FieldPickupDate, Value: drop, Operator: dto.FilterOperatorLessEq, Table: TableName},
		dto.Filter{ArgName: "overlap_pickup", Field: FieldDropDate, Value: pickup, Operator: dto.FilterOperatorGreaterEq, Table: TableName},
	}

	if excludeID != "" {
		filters = append(filters, dto.Filter{ArgName: "exclude_id", Field: FieldID, Value: excludeID, Operator: dto.FilterOperatorNotEq, Table: TableName})
	}

	return dto.FilterGroup{Filters: filters, Operator: dto.FilterGroupOperatorAnd}
}

// StateGuard matches the booking only while it is still in state from.
func StateGuard(id string, from State) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: FieldID, Value: id, Operator: dto.FilterOperatorEq},
			dto.Filter{ArgName: "current_booking_status", Field: FieldBookingStatus, Value: from.Booking.String(), Operator: dto.FilterOperatorEq},
			dto.Filter{ArgName: "current_payment_status", Field: FieldPaymentStatus, Value: from.Payment.String(), Operator: dto.FilterOperatorEq},
		},
		Operator: dto.FilterGroupOperatorAnd,
	}
}
