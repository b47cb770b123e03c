package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"driveease/config"
	"driveease/infras/kafka"
	"driveease/infras/otel"
	bookingModel "driveease/internal/domains/booking/model"
	carModel "driveease/internal/domains/car/model"
	carRepo "driveease/internal/domains/car/repository"
	"driveease/internal/domains/notification/model"
	userModel "driveease/internal/domains/user/model"
	userRepo "driveease/internal/domains/user/repository"
	"driveease/shared"
	"driveease/shared/constant"
	"driveease/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	subjectConfirmed = "Booking Confirmed - DriveEase"
	subjectCancelled = "Booking Cancelled - DriveEase"
	fallbackCarName  = "your car"
)

var ErrRecipientNotFound = errors.New("notification recipient not found")

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Notification interface {
	BookingConfirmed(ctx context.Context, booking bookingModel.Booking) error
	BookingCancelled(ctx context.Context, booking bookingModel.Booking) error
}

type serviceImpl struct {
	userRepo userRepo.User
	carRepo  carRepo.Car
	producer kafka.Client
	cfg      *config.Config
	otel     otel.Otel
}

func New(userRepo userRepo.User, carRepo carRepo.Car, producer kafka.Client, cfg *config.Config, otel otel.Otel) Notification {
	return &serviceImpl{
		userRepo: userRepo,
		carRepo:  carRepo,
		producer: producer,
		cfg:      cfg,
		otel:     otel,
	}
}

func (s *serviceImpl) BookingConfirmed(ctx context.Context, booking bookingModel.Booking) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".BookingConfirmed")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.publish(ctx, booking, model.EventBookingConfirmed, subjectConfirmed, "confirmed.html")
}

func (s *serviceImpl) BookingCancelled(ctx context.Context, booking bookingModel.Booking) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".BookingCancelled")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.publish(ctx, booking, model.EventBookingCancelled, subjectCancelled, "cancelled.html")
}

func (s *serviceImpl) publish(ctx context.Context, booking bookingModel.Booking, event, subject, tmpl string) error {
	user, err := s.userRepo.Get(ctx, shared.FilterByID(booking.UserID, userModel.FieldID, userModel.TableName),
		userModel.FieldID, userModel.FieldName, userModel.FieldEmail)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to get notification recipient")

		return fmt.Errorf("failed to get notification recipient: %w", err)
	}

	if user.ID == constant.Empty {
		return ErrRecipientNotFound
	}

	car, err := s.carRepo.Get(ctx, shared.FilterByID(booking.CarID, carModel.FieldID, carModel.TableName),
		carModel.FieldID, carModel.FieldName, carModel.FieldBrand)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to get booked car")

		return fmt.Errorf("failed to get booked car: %w", err)
	}

	mail := s.bookingMail(booking, user, car)

	var body bytes.Buffer
	if err = templates.ExecuteTemplate(&body, tmpl, mail); err != nil {
		log.Error().Err(err).Str("template", tmpl).Msg("failed to render notification")

		return fmt.Errorf("failed to render notification: %w", err)
	}

	message := kafka.Message{
		Key: booking.ID,
		Value: model.Email{
			Event:      event,
			BookingID:  booking.ID,
			From:       s.cfg.Booking.NotificationSender,
			To:         user.Email,
			ToName:     user.Name,
			Subject:    subject,
			HTML:       body.String(),
			OccurredAt: timezone.Now(),
		},
		Headers: map[string]string{model.HeaderEventType: event},
	}

	if err = s.producer.SendMessages(ctx, s.cfg.Kafka.Topics.BookingNotification, message); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Str("event", event).Msg("failed to publish notification")

		return fmt.Errorf("failed to publish notification: %w", err)
	}

	log.Info().Str("booking_id", booking.ID).Str("event", event).Msg("notification published")

	return nil
}

func (s *serviceImpl) bookingMail(booking bookingModel.Booking, user userModel.User, car carModel.Car) model.BookingMail {
	carName := fallbackCarName
	if car.ID != constant.Empty {
		carName = car.DisplayName()
	}

	mail := model.BookingMail{
		Name:         user.Name,
		CarName:      carName,
		BookingID:    booking.ID,
		PickupDate:   booking.PickupDate.Format(constant.DateOnlyFormat),
		DropDate:     booking.DropDate.Format(constant.DateOnlyFormat),
		PickupCity:   booking.PickupCity,
		TotalDays:    booking.TotalDays,
		TotalAmount:  booking.TotalAmount,
		Currency:     s.cfg.Booking.Currency,
		Refunded:     booking.PaymentStatus == bookingModel.PaymentStatusRefunded,
		SupportEmail: s.cfg.Booking.SupportEmail,
	}

	if booking.CancellationReason != nil {
		mail.Reason = *booking.CancellationReason
	}

	return mail
}
