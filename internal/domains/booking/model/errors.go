package model

import (
	"net/http"

	"driveease/shared/failure"
)

const (
	KindNotFound                  = "not_found"
	KindForbidden                 = "forbidden"
	KindInvalidDateRange          = "invalid_date_range"
	KindDateConflict              = "date_conflict"
	KindAssetUnavailable          = "asset_unavailable"
	KindAlreadyInStatus           = "already_in_status"
	KindTerminalState             = "terminal_state"
	KindAlreadyPaid               = "already_paid"
	KindPaymentVerificationFailed = "payment_verification_failed"
	KindInvalidStatus             = "invalid_status"
	KindConcurrentUpdate          = "concurrent_update"
	KindPaymentRequired           = "payment_required"
)

var (
	ErrNotFound                  = failure.New(http.StatusNotFound, KindNotFound, "booking not found")
	ErrCarNotFound               = failure.New(http.StatusNotFound, KindNotFound, "car not found")
	ErrForbidden                 = failure.New(http.StatusForbidden, KindForbidden, "you are not allowed to access this booking")
	ErrInvalidDateRange          = failure.New(http.StatusBadRequest, KindInvalidDateRange, "invalid date range")
	ErrPickupInPast              = failure.New(http.StatusBadRequest, KindInvalidDateRange, "pickup date cannot be in the past")
	ErrDropBeforePickup          = failure.New(http.StatusBadRequest, KindInvalidDateRange, "drop date must be after pickup date")
	ErrDateConflict              = failure.New(http.StatusConflict, KindDateConflict, "car is already booked for the selected dates")
	ErrAssetUnavailable          = failure.New(http.StatusBadRequest, KindAssetUnavailable, "car is not available for booking")
	ErrAlreadyInStatus           = failure.New(http.StatusBadRequest, KindAlreadyInStatus, "booking is already in the requested status")
	ErrTerminalState             = failure.New(http.StatusBadRequest, KindTerminalState, "booking can no longer be modified")
	ErrAlreadyPaid               = failure.New(http.StatusBadRequest, KindAlreadyPaid, "booking is already paid")
	ErrPaymentVerificationFailed = failure.New(http.StatusBadRequest, KindPaymentVerificationFailed, "payment verification failed")
	ErrInvalidStatus             = failure.New(http.StatusBadRequest, KindInvalidStatus, "invalid booking status")
	ErrConcurrentUpdate          = failure.New(http.StatusConflict, KindConcurrentUpdate, "booking was modified concurrently, please retry")
	ErrPaymentRequired           = failure.New(http.StatusBadRequest, KindPaymentRequired, "booking must be paid before it can be confirmed")
)
