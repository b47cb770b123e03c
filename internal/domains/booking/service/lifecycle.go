package service

import (
	"context"
	"fmt"

	"driveease/internal/domains/booking/model"
	"driveease/internal/domains/booking/repository"
	notification "driveease/internal/domains/notification/service"
	"driveease/shared"
	"driveease/shared/cache"
	"driveease/shared/constant"

	"github.com/rs/zerolog/log"
)

// lifecycle persists transitions and fans out their side effects. It is shared
// by the booking and payment services.
type lifecycle struct {
	repo     repository.Booking
	notifier notification.Notification
	cache    cache.RedisCache
}

func (l *lifecycle) load(ctx context.Context, id string) (model.Booking, error) {
	booking, err := l.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, model.ErrNotFound
	}

	return booking, nil
}

// persist writes the booking only if it is still in state from. The cached
// copy of the booking is dropped before it returns; list caches and notify
// are handled in the background.
func (l *lifecycle) persist(ctx context.Context, booking *model.Booking, from model.State, notify model.Notification) error {
	affected, err := l.repo.UpdateAffected(ctx, booking.StateFields(), model.StateGuard(booking.ID, from))
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to update booking")

		return fmt.Errorf("failed to update booking: %w", err)
	}

	if affected == 0 {
		log.Warn().
			Str("booking_id", booking.ID).
			Str("booking_status", from.Booking.String()).
			Str("payment_status", from.Payment.String()).
			Msg("booking changed during transition")

		return model.ErrConcurrentUpdate
	}

	if err = l.cache.Delete(context.WithoutCancel(ctx), shared.BuildCacheKey(cacheGetBooking, booking.ID)); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to delete booking from cache")
	}

	snapshot := *booking

	go func() {
		c := context.WithoutCancel(ctx)

		l.invalidateLists(c)
		l.dispatch(c, snapshot, notify)
	}()

	return nil
}

func (l *lifecycle) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, l.cache, cacheGetAllBooking)
	shared.InvalidateCaches(ctx, l.cache, cacheCountBooking)
	shared.InvalidateCaches(ctx, l.cache, constant.CachePrefixDashboard)
}

// dispatch never fails the transition; delivery errors are only logged.
func (l *lifecycle) dispatch(ctx context.Context, booking model.Booking, notify model.Notification) {
	var err error

	switch notify {
	case model.NotifyConfirmed:
		err = l.notifier.BookingConfirmed(ctx, booking)
	case model.NotifyCancelled:
		err = l.notifier.BookingCancelled(ctx, booking)
	case model.NotifyNone:
		return
	}

	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to send booking notification")
	}
}
