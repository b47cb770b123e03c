package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"driveease/config"
	"driveease/infras/otel"
	"driveease/internal/domains/booking/model"
	"driveease/internal/domains/booking/model/dto"
	"driveease/internal/domains/booking/repository"
	carModel "driveease/internal/domains/car/model"
	carRepo "driveease/internal/domains/car/repository"
	notification "driveease/internal/domains/notification/service"
	"driveease/shared"
	"driveease/shared/cache"
	"driveease/shared/constant"
	gDto "driveease/shared/dto"
	"driveease/shared/lock"
	"driveease/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
	lockCarPrefix      = "booking:lock:car"

	listSortBy = model.TableName + "." + model.FieldCreatedAt

	messageCarUnavailable = "Car is not available"
	messageCarBooked      = "Car is booked for the selected dates"
	messageCarAvailable   = "Car is available"
)

type Booking interface {
	Create(ctx context.Context, requester model.Requester, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, requester model.Requester, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, requester model.Requester, status string, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	GetAllAdmin(ctx context.Context, status string, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	Cancel(ctx context.Context, requester model.Requester, id string, req dto.CancelBookingRequest) (dto.BookingResponse, error)
	SetStatus(ctx context.Context, requester model.Requester, id string, req dto.UpdateStatusRequest) (dto.BookingResponse, error)
	CheckAvailability(ctx context.Context, carID string, req dto.AvailabilityRequest) (dto.AvailabilityResponse, error)
}

type serviceImpl struct {
	lifecycle
	carRepo carRepo.Car
	locker  lock.Locker
	cfg     *config.Config
	otel    otel.Otel
}

func New(
	repo repository.Booking,
	carRepo carRepo.Car,
	notifier notification.Notification,
	locker lock.Locker,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		lifecycle: lifecycle{repo: repo, notifier: notifier, cache: cache},
		carRepo:   carRepo,
		locker:    locker,
		cfg:       cfg,
		otel:      otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, requester model.Requester, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	pickup, drop, err := req.Dates()
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	car, err := s.bookableCar(ctx, req.CarID)
	if err != nil {
		return res, err
	}

	if !car.Available {
		return res, model.ErrAssetUnavailable
	}

	if err = model.ValidateRange(pickup, drop, timezone.Today()); err != nil {
		return res, err //nolint:wrapcheck
	}

	unlock, err := s.lockCar(ctx, car.ID)
	if err != nil {
		return res, err
	}

	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			log.Error().Err(err).Str("car_id", car.ID).Msg("failed to release booking lock")
		}
	}()

	conflict, err := s.repo.ExistOnPrimary(ctx, model.OverlapFilter(car.ID, pickup, drop, constant.Empty))
	if err != nil {
		log.Error().Err(err).Msg("failed to check overlapping bookings")

		return res, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}

	if conflict {
		return res, model.ErrDateConflict
	}

	booking := model.NewBooking(requester.ID, car, pickup, drop, timezone.Now())

	if err = s.repo.Insert(ctx, booking); err != nil {
		if errors.Is(err, model.ErrDateConflict) {
			return res, model.ErrDateConflict
		}

		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidateLists(c)
	}()

	res.FromModel(booking)
	res.Car.Name = car.Name

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, requester model.Requester, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		if !requester.IsAdmin() && res.User.ID != requester.ID {
			return dto.BookingResponse{}, model.ErrForbidden
		}

		return res, nil
	}

	detail, err := s.repo.GetDetail(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if detail.ID == constant.Empty {
		return res, model.ErrNotFound
	}

	if !requester.CanAccess(&detail.Booking) {
		return res, model.ErrForbidden
	}

	res.FromDetail(detail)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, requester model.Requester, status string, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter, err := listFilter(status)
	if err != nil {
		return res, err
	}

	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.FieldUserID,
		Value:    requester.ID,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	})

	return s.list(ctx, listParams(params), filter)
}

func (s *serviceImpl) GetAllAdmin(ctx context.Context, status string, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAllAdmin")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter, err := listFilter(status)
	if err != nil {
		return res, err
	}

	return s.list(ctx, listParams(params), filter)
}

func (s *serviceImpl) list(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.count(ctx, params, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAllDetail(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, requester model.Requester, id string, req dto.CancelBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if !requester.CanAccess(&booking) {
		return res, model.ErrForbidden
	}

	from := booking.State()

	notify, err := booking.Cancel(req.Reason, requester.ID, timezone.Now())
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if err = s.persist(ctx, &booking, from, notify); err != nil {
		return res, err
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) SetStatus(ctx context.Context, requester model.Requester, id string, req dto.UpdateStatusRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	target, err := req.Target()
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	from := booking.State()

	notify, err := booking.ApplyAdminStatus(target, requester.ID, timezone.Now())
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if err = s.persist(ctx, &booking, from, notify); err != nil {
		return res, err
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) CheckAvailability(ctx context.Context, carID string, req dto.AvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)

	pickup, drop, err := req.Dates()
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	car, err := s.bookableCar(ctx, carID)
	if err != nil {
		return res, err
	}

	if !car.Available {
		return dto.AvailabilityResponse{Available: false, Message: messageCarUnavailable}, nil
	}

	if !drop.After(pickup) {
		return res, model.ErrDropBeforePickup
	}

	conflict, err := s.repo.Exist(ctx, model.OverlapFilter(car.ID, pickup, drop, constant.Empty))
	if err != nil {
		log.Error().Err(err).Msg("failed to check overlapping bookings")

		return res, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}

	if conflict {
		return dto.AvailabilityResponse{Available: false, Message: messageCarBooked}, nil
	}

	days := model.TotalDays(pickup, drop)

	return dto.AvailabilityResponse{
		Available:   true,
		Message:     messageCarAvailable,
		TotalDays:   days,
		TotalAmount: model.TotalAmount(days, car.PricePerDay),
	}, nil
}

// lockCar serializes creations for one car. A busy or unreachable lock is
// logged and skipped: the exclusion constraint on bookings still turns the
// losing overlapping insert into a date conflict.
func (s *serviceImpl) lockCar(ctx context.Context, carID string) (lock.Unlock, error) {
	unlock, err := s.locker.Acquire(ctx, shared.BuildCacheKey(lockCarPrefix, carID))

	switch {
	case err == nil:
		return unlock, nil
	case ctx.Err() != nil:
		return nil, fmt.Errorf("failed to acquire booking lock: %w", ctx.Err())
	case errors.Is(err, lock.ErrNotAcquired):
		log.Warn().Str("car_id", carID).Msg("booking lock busy, continuing unlocked")
	default:
		log.Error().Err(err).Str("car_id", carID).Msg("booking lock unavailable, continuing unlocked")
	}

	return func(context.Context) error { return nil }, nil
}

func (s *serviceImpl) bookableCar(ctx context.Context, carID string) (model.Car, error) {
	car, err := s.carRepo.Get(ctx, shared.FilterByID(carID, carModel.FieldID, carModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("car_id", carID).Msg("failed to get car")

		return model.Car{}, fmt.Errorf("failed to get car: %w", err)
	}

	if car.ID == constant.Empty {
		return model.Car{}, model.ErrCarNotFound
	}

	return model.Car{
		ID:          car.ID,
		Name:        car.DisplayName(),
		PricePerDay: car.PricePerDay,
		Available:   car.IsAvailable,
		City:        car.City,
	}, nil
}

func listFilter(status string) (gDto.FilterGroup, error) {
	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}
	if status == constant.Empty {
		return filter, nil
	}

	bookingStatus, err := model.ParseBookingStatus(status)
	if err != nil {
		return filter, model.ErrInvalidStatus
	}

	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.FieldBookingStatus,
		Value:    bookingStatus.String(),
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	})

	return filter, nil
}

// listParams pins the ordering to newest first and bounds the page size.
func listParams(params gDto.QueryParams) gDto.QueryParams {
	if params.Page <= 0 {
		params.Page = constant.DefaultValuePage
	}

	if params.Limit <= 0 {
		params.Limit = constant.DefaultValueLimit
	}

	params.Limit = min(params.Limit, constant.MaxValueLimit)
	params.SortBy = listSortBy
	params.SortDir = gDto.SortDirDesc

	return params
}
