package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"driveease/config"
	"driveease/infras/otel"
	bookingModel "driveease/internal/domains/booking/model"
	bookingRepo "driveease/internal/domains/booking/repository"
	"driveease/internal/domains/dashboard/model"
	"driveease/internal/domains/dashboard/model/dto"
	"driveease/internal/domains/dashboard/repository"
	"driveease/shared"
	"driveease/shared/cache"
	"driveease/shared/constant"
	gDto "driveease/shared/dto"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const cacheStats = "stats"

type Dashboard interface {
	Stats(ctx context.Context) (dto.StatsResponse, error)
}

type serviceImpl struct {
	repo        repository.Dashboard
	bookingRepo bookingRepo.Booking
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(repo repository.Dashboard, bookingRepo bookingRepo.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Dashboard {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

// Stats aggregates the admin overview. The result is cached under the dashboard
// prefix, which every car, booking and payment write clears.
func (s *serviceImpl) Stats(ctx context.Context) (res dto.StatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Stats")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(constant.CachePrefixDashboard, cacheStats)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for dashboard stats")

		return res, nil
	}

	var (
		totals  model.Totals
		counts  []model.StatusCount
		recent  []bookingModel.BookingDetail
		rented  *model.RentedCar
		monthly []model.MonthlyRevenue
	)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() (err error) {
		totals, err = s.repo.Totals(gctx)

		return err //nolint:wrapcheck
	})

	group.Go(func() (err error) {
		counts, err = s.repo.BookingsByStatus(gctx)

		return err //nolint:wrapcheck
	})

	group.Go(func() (err error) {
		recent, err = s.bookingRepo.GetAllDetail(gctx, recentParams(), gDto.FilterGroup{})

		return err //nolint:wrapcheck
	})

	group.Go(func() (err error) {
		rented, err = s.repo.MostRentedCar(gctx)

		return err //nolint:wrapcheck
	})

	group.Go(func() (err error) {
		monthly, err = s.repo.MonthlyRevenue(gctx, model.RevenueMonths)

		return err //nolint:wrapcheck
	})

	if err = group.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to aggregate dashboard stats")

		return res, fmt.Errorf("failed to aggregate dashboard stats: %w", err)
	}

	res.FromTotals(totals)
	res.FromStatusCounts(counts)
	res.FromRecent(recent)
	res.FromRentedCar(rented)
	res.FromMonthlyRevenue(monthly)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save dashboard stats to cache")
		}
	}()

	return res, nil
}

func recentParams() gDto.QueryParams {
	return gDto.QueryParams{
		Page:    constant.DefaultValuePage,
		Limit:   model.RecentBookingLimit,
		SortBy:  bookingModel.TableName + "." + bookingModel.FieldCreatedAt,
		SortDir: gDto.SortDirDesc,
	}
}
