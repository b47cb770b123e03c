package service

//go:generate go run go.uber.org/mock/mockgen -source=./payment.go -destination=./mocks/payment_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"driveease/config"
	"driveease/infras/otel"
	"driveease/infras/payment"
	"driveease/internal/domains/booking/model"
	"driveease/internal/domains/booking/model/dto"
	"driveease/internal/domains/booking/repository"
	carModel "driveease/internal/domains/car/model"
	carRepo "driveease/internal/domains/car/repository"
	notification "driveease/internal/domains/notification/service"
	"driveease/shared"
	"driveease/shared/cache"
	"driveease/shared/constant"
	"driveease/shared/failure"
	"driveease/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	receiptPrefix = "booking_"
	noteBookingID = "bookingId"
	noteCarName   = "carName"
)

type Payment interface {
	CreateOrder(ctx context.Context, requester model.Requester, req dto.CreateOrderRequest) (dto.OrderResponse, error)
	Verify(ctx context.Context, requester model.Requester, req dto.VerifyPaymentRequest) (dto.BookingResponse, error)
	Key(ctx context.Context) dto.KeyResponse
}

type paymentImpl struct {
	lifecycle
	carRepo carRepo.Car
	gateway payment.Gateway
	cfg     *config.Config
	otel    otel.Otel
}

func NewPayment(
	repo repository.Booking,
	carRepo carRepo.Car,
	notifier notification.Notification,
	gateway payment.Gateway,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Payment {
	return &paymentImpl{
		lifecycle: lifecycle{repo: repo, notifier: notifier, cache: cache},
		carRepo:   carRepo,
		gateway:   gateway,
		cfg:       cfg,
		otel:      otel,
	}
}

func (s *paymentImpl) CreateOrder(ctx context.Context, requester model.Requester, req dto.CreateOrderRequest) (res dto.OrderResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateOrder")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.payable(ctx, requester, req.BookingID)
	if err != nil {
		return res, err
	}

	car, err := s.carRepo.Get(ctx, shared.FilterByID(booking.CarID, carModel.FieldID, carModel.TableName),
		carModel.FieldID, carModel.FieldName, carModel.FieldBrand)
	if err != nil {
		log.Error().Err(err).Str("car_id", booking.CarID).Msg("failed to get car")

		return res, fmt.Errorf("failed to get car: %w", err)
	}

	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:   booking.TotalAmount * constant.MinorUnitScale,
		Currency: s.cfg.Booking.Currency,
		Receipt:  receiptPrefix + booking.ID,
		Notes: map[string]string{
			noteBookingID: booking.ID,
			noteCarName:   car.DisplayName(),
		},
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to create payment order")

		if errors.Is(err, payment.ErrGateway) {
			return res, failure.BadGateway("payment gateway rejected the order") //nolint:wrapcheck
		}

		return res, failure.BadGateway("payment gateway is unavailable") //nolint:wrapcheck
	}

	from := booking.State()
	booking.AttachOrder(order.ID, requester.ID, timezone.Now())

	if err = s.persist(ctx, &booking, from, model.NotifyNone); err != nil {
		return res, err
	}

	return dto.OrderResponse{
		OrderID:   order.ID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		BookingID: booking.ID,
		KeyID:     s.gateway.KeyID(),
	}, nil
}

func (s *paymentImpl) Verify(ctx context.Context, requester model.Requester, req dto.VerifyPaymentRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Verify")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.payable(ctx, requester, req.BookingID)
	if err != nil {
		return res, err
	}

	if booking.PaymentOrderID == nil || *booking.PaymentOrderID != req.OrderID {
		log.Warn().Str("booking_id", booking.ID).Msg("payment order does not belong to booking")

		return res, model.ErrPaymentVerificationFailed
	}

	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		log.Warn().Str("booking_id", booking.ID).Msg("payment signature mismatch")

		return res, model.ErrPaymentVerificationFailed
	}

	from := booking.State()

	notify, err := booking.ConfirmPayment(req.Ref(), requester.ID, timezone.Now())
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if err = s.persist(ctx, &booking, from, notify); err != nil {
		return res, err
	}

	res.FromModel(booking)

	return res, nil
}

func (s *paymentImpl) Key(_ context.Context) dto.KeyResponse {
	return dto.KeyResponse{Key: s.gateway.KeyID()}
}

// payable loads a booking its renter may still pay for.
func (s *paymentImpl) payable(ctx context.Context, requester model.Requester, id string) (model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return booking, err
	}

	if !booking.IsOwnedBy(requester.ID) {
		return booking, model.ErrForbidden
	}

	if err = booking.CanPay(); err != nil {
		return booking, err //nolint:wrapcheck
	}

	return booking, nil
}
