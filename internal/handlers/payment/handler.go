package payment

import (
	"net/http"

	"driveease/infras/otel"
	"driveease/internal/domains/booking/model"
	"driveease/internal/domains/booking/model/dto"
	"driveease/internal/domains/booking/service"
	"driveease/shared/constant"
	"driveease/shared/validator"
	"driveease/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Payment
	otel    otel.Otel
}

func New(service service.Payment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payments", func(routerGroup chi.Router) {
		routerGroup.Get("/key", handler.GetKey)
		routerGroup.Post("/create-order", handler.CreateOrder)
		routerGroup.Post("/verify", handler.VerifyPayment)
	})
}

// GetKey returns the public key the checkout widget is opened with.
// @Summary Get payment key
// @Tags Payment
// @Produce json
// @Success 200 {object} response.Data[dto.KeyResponse] "Gateway key"
// @Router /v1/payments/key [get]
// @Security BearerAuth
func (handler *Handler) GetKey(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetKey")
	defer scope.End()

	response.WithJSON(w, http.StatusOK, handler.service.Key(ctx))
}

// CreateOrder opens a gateway order for the full amount of a booking.
// @Summary Create payment order
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.CreateOrderRequest true "Create Order Request"
// @Success 200 {object} response.Data[dto.OrderResponse] "Order created"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 502 {object} response.Error
// @Router /v1/payments/create-order [post]
// @Security BearerAuth
func (handler *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateOrder")
	defer scope.End()

	req := dto.CreateOrderRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	order, err := handler.service.CreateOrder(ctx, model.RequesterFromContext(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to create payment order")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Payment order " + order.OrderID + " created for booking " + order.BookingID)

	response.WithJSON(w, http.StatusOK, order)
}

// VerifyPayment checks the gateway signature and confirms the booking.
// @Summary Verify payment
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.VerifyPaymentRequest true "Verify Payment Request"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking confirmed"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/payments/verify [post]
// @Security BearerAuth
func (handler *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".VerifyPayment")
	defer scope.End()

	req := dto.VerifyPaymentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Verify(ctx, model.RequesterFromContext(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", req.BookingID).Msg("failed to verify payment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Payment verified for booking " + booking.ID)

	response.WithJSON(w, http.StatusOK, booking)
}
