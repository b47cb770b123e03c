package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"driveease/config"
	"driveease/infras/otel"
	"driveease/infras/s3"
	bookingModel "driveease/internal/domains/booking/model"
	bookingRepo "driveease/internal/domains/booking/repository"
	"driveease/internal/domains/car/model"
	"driveease/internal/domains/car/model/dto"
	"driveease/internal/domains/car/repository"
	"driveease/shared"
	"driveease/shared/cache"
	"driveease/shared/constant"
	gDto "driveease/shared/dto"
	"driveease/shared/failure"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetCar    = "car:get"
	cacheGetAllCar = "car:gets"
	cacheCountCar  = "car:count"
	cacheCarMeta   = "car:meta"

	metaCities = "cities"
	metaBrands = "brands"
)

type Car interface {
	Create(ctx context.Context, req dto.CreateCarRequest) (dto.CarResponse, error)
	GetAll(ctx context.Context, query dto.CarQuery, params gDto.QueryParams) (dto.GetCarsResponse, error)
	GetAllAdmin(ctx context.Context, query dto.CarQuery, params gDto.QueryParams) (dto.GetCarsResponse, error)
	Get(ctx context.Context, id string) (dto.CarResponse, error)
	Update(ctx context.Context, req dto.UpdateCarRequest, id string) (dto.CarResponse, error)
	Delete(ctx context.Context, id string) error
	RemoveImage(ctx context.Context, id string, req dto.RemoveImageRequest) (dto.CarResponse, error)
	Cities(ctx context.Context) ([]string, error)
	Brands(ctx context.Context) ([]string, error)
}

type serviceImpl struct {
	repo        repository.Car
	bookingRepo bookingRepo.Booking
	s3          s3.S3
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(repo repository.Car, bookingRepo bookingRepo.Booking, s3 s3.S3, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Car {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		s3:          s3,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateCarRequest) (res dto.CarResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	images, err := s.upload(ctx, req.Files())
	if err != nil {
		return res, err
	}

	car := req.ToModel(user, images)

	if err = s.repo.Insert(ctx, car); err != nil {
		log.Error().Err(err).Msg("failed to create car")
		s.cleanup(ctx, images)

		return res, fmt.Errorf("failed to create car: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidateLists(c)
	}()

	res.FromModel(car)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, query dto.CarQuery, params gDto.QueryParams) (res dto.GetCarsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.list(ctx, query.Params(params), query.Filter(false))
}

func (s *serviceImpl) GetAllAdmin(ctx context.Context, query dto.CarQuery, params gDto.QueryParams) (res dto.GetCarsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAllAdmin")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.list(ctx, query.Params(params), query.Filter(true))
}

func (s *serviceImpl) list(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetCarsResponse, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllCar, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for cars")

		return res, nil
	}

	total, err := s.count(ctx, params, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get cars")

		return res, fmt.Errorf("failed to get cars: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save cars to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountCar, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for car count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count cars")

		return res, fmt.Errorf("failed to count cars: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save car count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.CarResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetCar, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for car")

		return res, nil
	}

	car, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(car)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save car to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateCarRequest, id string) (res dto.CarResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if len(current.Images)+len(req.Images) > dto.MaxImages {
		return res, failure.BadRequestFromString(fmt.Sprintf("a car can have at most %d images", dto.MaxImages)) // nolint:wrapcheck
	}

	uploaded, err := s.upload(ctx, req.Files())
	if err != nil {
		return res, err
	}

	updatedFields := shared.ChangedFields(req, user)
	if len(uploaded) > 0 {
		updatedFields[model.FieldImages] = append(append(pq.StringArray{}, current.Images...), uploaded...)
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update car")
		s.cleanup(ctx, uploaded)

		return res, fmt.Errorf("failed to update car: %w", err)
	}

	s.invalidate(ctx, id)

	updated, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(updated)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	car, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	active, err := s.bookingRepo.Count(ctx, activeBookingsOf(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to count active bookings")

		return fmt.Errorf("failed to count active bookings: %w", err)
	}

	if active > 0 {
		return failure.BadRequestFromString(fmt.Sprintf("Cannot delete car with %d active booking(s). Cancel them first.", active)) // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete car")

		return fmt.Errorf("failed to delete car: %w", err)
	}

	s.cleanup(ctx, car.Images)
	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) RemoveImage(ctx context.Context, id string, req dto.RemoveImageRequest) (res dto.CarResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RemoveImage")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	car, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if !car.HasImage(req.ImageURL) {
		return res, failure.NotFound("image not found") // nolint:wrapcheck
	}

	car.Images = car.WithoutImage(req.ImageURL)

	updatedFields := shared.ChangedFields(struct{}{}, user)
	updatedFields[model.FieldImages] = car.Images

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to remove car image")

		return res, fmt.Errorf("failed to remove car image: %w", err)
	}

	s.cleanup(ctx, []string{req.ImageURL})
	s.invalidate(ctx, id)

	res.FromModel(car)

	return res, nil
}

func (s *serviceImpl) Cities(ctx context.Context) (res []string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cities")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.distinct(ctx, metaCities, model.FieldCity)
}

func (s *serviceImpl) Brands(ctx context.Context) (res []string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Brands")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.distinct(ctx, metaBrands, model.FieldBrand)
}

// distinct lists the values of column among available cars.
func (s *serviceImpl) distinct(ctx context.Context, name, column string) (res []string, err error) {
	cacheKey := shared.BuildCacheKey(cacheCarMeta, name)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	available := gDto.FilterGroup{
		Filters: []any{gDto.Filter{Field: model.FieldIsAvailable, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName}},
	}

	res, err = s.repo.Distinct(ctx, column, available)
	if err != nil {
		log.Error().Err(err).Str("column", column).Msg("failed to list distinct car values")

		return nil, fmt.Errorf("failed to list car %s: %w", name, err)
	}

	if res == nil {
		res = []string{}
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save car values to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Car, error) {
	car, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get car")

		return car, fmt.Errorf("failed to get car: %w", err)
	}

	if car.ID == constant.Empty {
		return car, model.ErrNotFound
	}

	return car, nil
}

// upload stores the files in order. Nothing is left behind when one fails.
func (s *serviceImpl) upload(ctx context.Context, files []s3.File) ([]string, error) {
	urls := make([]string, 0, len(files))

	for _, file := range files {
		url, err := s.s3.Upload(ctx, model.EntityName, file)
		if err != nil {
			log.Error().Err(err).Str("file", file.Header.Filename).Msg("failed to upload car image")
			s.cleanup(ctx, urls)

			return nil, fmt.Errorf("failed to upload image: %w", err)
		}

		urls = append(urls, url)
	}

	return urls, nil
}

func (s *serviceImpl) cleanup(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.s3.DeleteByURL(ctx, url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to delete car image")
		}
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetCar, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete car from cache")
		}

		s.invalidateLists(c)
	}()
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllCar)
	shared.InvalidateCaches(ctx, s.cache, cacheCountCar)
	shared.InvalidateCaches(ctx, s.cache, cacheCarMeta)
	shared.InvalidateCaches(ctx, s.cache, constant.CachePrefixDashboard)
}

func activeBookingsOf(carID string) gDto.FilterGroup {
	statuses := make([]string, 0, len(bookingModel.ActiveBookingStatuses))
	for _, status := range bookingModel.ActiveBookingStatuses {
		statuses = append(statuses, status.String())
	}

	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: bookingModel.FieldCarID, Value: carID, Operator: gDto.FilterOperatorEq, Table: bookingModel.TableName},
			gDto.Filter{Field: bookingModel.FieldBookingStatus, Value: statuses, Operator: gDto.FilterOperatorIn, Table: bookingModel.TableName},
		},
	}
}
