package dto

import (
	"net/http"
	"strings"
	"time"

	"driveease/internal/domains/booking/model"
	"driveease/shared"
	"driveease/shared/constant"
	gDto "driveease/shared/dto"
	"driveease/shared/failure"
	"driveease/shared/timezone"
)

type CreateBookingRequest struct {
	CarID      string `json:"car_id"      validate:"required,uuid"`
	PickupDate string `json:"pickup_date" validate:"required,isodate"`
	DropDate   string `json:"drop_date"   validate:"required,isodate"`
}

// Dates parses the requested range as calendar dates.
func (c *CreateBookingRequest) Dates() (pickup, drop time.Time, err error) {
	return parseRange(c.PickupDate, c.DropDate)
}

const (
	FieldPickupDate = "pickup_date"
	FieldDropDate   = "drop_date"
)

type AvailabilityRequest struct {
	PickupDate string `json:"pickup_date" validate:"required,isodate"`
	DropDate   string `json:"drop_date"   validate:"required,isodate"`
}

// FromRequest reads the range from the query string.
func (a *AvailabilityRequest) FromRequest(r *http.Request) {
	query := r.URL.Query()

	a.PickupDate = strings.TrimSpace(query.Get(FieldPickupDate))
	a.DropDate = strings.TrimSpace(query.Get(FieldDropDate))
}

func (a *AvailabilityRequest) Dates() (pickup, drop time.Time, err error) {
	return parseRange(a.PickupDate, a.DropDate)
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled completed rejected"`
}

func (u *UpdateStatusRequest) Target() (model.BookingStatus, error) {
	status, err := model.ParseBookingStatus(u.Status)
	if err != nil {
		return "", model.ErrInvalidStatus
	}

	return status, nil
}

type CreateOrderRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type VerifyPaymentRequest struct {
	BookingID string `json:"booking_id"          validate:"required,uuid"`
	OrderID   string `json:"razorpay_order_id"   validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature"  validate:"required"`
}

func (v *VerifyPaymentRequest) Ref() model.PaymentRef {
	return model.PaymentRef{
		OrderID:   v.OrderID,
		PaymentID: v.PaymentID,
		Signature: v.Signature,
	}
}

type OrderResponse struct {
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	BookingID string `json:"booking_id"`
	KeyID     string `json:"key_id"`
}

type KeyResponse struct {
	Key string `json:"key"`
}

type AvailabilityResponse struct {
	Available   bool   `json:"available"`
	Message     string `json:"message"`
	TotalDays   int    `json:"total_days,omitempty"`
	TotalAmount int64  `json:"total_amount,omitempty"`
}

type CarSummary struct {
	ID     string   `json:"id"`
	Name   string   `json:"name,omitempty"`
	Brand  string   `json:"brand,omitempty"`
	Images []string `json:"images,omitempty"`
}

type RenterSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type BookingResponse struct {
	ID                 string        `json:"id"`
	Car                CarSummary    `json:"car"`
	User               RenterSummary `json:"user"`
	PickupDate         string        `json:"pickup_date"`
	DropDate           string        `json:"drop_date"`
	TotalDays          int           `json:"total_days"`
	TotalAmount        int64         `json:"total_amount"`
	BookingStatus      string        `json:"booking_status"`
	PaymentStatus      string        `json:"payment_status"`
	PaymentOrderID     string        `json:"payment_order_id,omitempty"`
	PaymentID          string        `json:"payment_id,omitempty"`
	PickupCity         string        `json:"pickup_city"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CancelledAt        string        `json:"cancelled_at,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(mod model.Booking) {
	r.ID = mod.ID
	r.Car = CarSummary{ID: mod.CarID}
	r.User = RenterSummary{ID: mod.UserID}
	r.PickupDate = mod.PickupDate.Format(constant.DateOnlyFormat)
	r.DropDate = mod.DropDate.Format(constant.DateOnlyFormat)
	r.TotalDays = mod.TotalDays
	r.TotalAmount = mod.TotalAmount
	r.BookingStatus = mod.BookingStatus.String()
	r.PaymentStatus = mod.PaymentStatus.String()
	r.PaymentOrderID = deref(mod.PaymentOrderID)
	r.PaymentID = deref(mod.PaymentID)
	r.PickupCity = mod.PickupCity
	r.CancellationReason = deref(mod.CancellationReason)

	if mod.CancelledAt != nil {
		r.CancelledAt = mod.CancelledAt.Format(constant.DateFormat)
	}

	r.Metadata.FromModel(mod.Metadata)
}

func (r *BookingResponse) FromDetail(detail model.BookingDetail) {
	r.FromModel(detail.Booking)
	r.Car.Name = deref(detail.CarName)
	r.Car.Brand = deref(detail.CarBrand)
	r.Car.Images = detail.CarImages
	r.User.Name = deref(detail.UserName)
	r.User.Email = deref(detail.UserEmail)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.BookingDetail, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromDetail(mod)
	}
}

func parseRange(pickupDate, dropDate string) (pickup, drop time.Time, err error) {
	pickup, err = timezone.ParseDate(pickupDate)
	if err != nil {
		return pickup, drop, failure.BadRequestFromString("pickup_date must be a date in YYYY-MM-DD format") //nolint:wrapcheck
	}

	drop, err = timezone.ParseDate(dropDate)
	if err != nil {
		return pickup, drop, failure.BadRequestFromString("drop_date must be a date in YYYY-MM-DD format") //nolint:wrapcheck
	}

	return pickup, drop, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}
