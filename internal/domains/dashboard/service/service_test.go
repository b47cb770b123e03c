package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"driveease/config"
	"driveease/infras/otel/mocks"
	bookingMocks "driveease/internal/domains/booking/mocks"
	bookingModel "driveease/internal/domains/booking/model"
	dashboardMocks "driveease/internal/domains/dashboard/mocks"
	"driveease/internal/domains/dashboard/model"
	"driveease/internal/domains/dashboard/model/dto"
	"driveease/internal/domains/dashboard/service"
	cacheMocks "driveease/shared/cache/mocks"
	gDto "driveease/shared/dto"
)

type fixture struct {
	repo        *dashboardMocks.MockDashboard
	bookingRepo *bookingMocks.MockBooking
	cache       *cacheMocks.MockRedisCache
	svc         service.Dashboard
}

func setup(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		repo:        dashboardMocks.NewMockDashboard(ctrl),
		bookingRepo: bookingMocks.NewMockBooking(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
	}
	f.svc = service.New(f.repo, f.bookingRepo, &config.Config{}, f.cache, mocks.NewOtel())

	return f
}

func TestDashboardService_Stats(t *testing.T) {
	t.Run("aggregates on cache miss", func(t *testing.T) {
		f := setup(t)

		saved := make(chan dto.StatsResponse, 1)

		f.cache.EXPECT().Get(gomock.Any(), "dashboard:stats", gomock.Any()).Return(errors.New("cache miss"))
		f.cache.EXPECT().Save(gomock.Any(), "dashboard:stats", gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any, _ int) error {
				res, _ := value.(dto.StatsResponse)
				saved <- res

				return nil
			})

		f.repo.EXPECT().Totals(gomock.Any()).Return(model.Totals{Users: 12, Cars: 7, Bookings: 30, Revenue: 84500}, nil)
		f.repo.EXPECT().BookingsByStatus(gomock.Any()).Return([]model.StatusCount{
			{Status: "confirmed", Count: 20},
			{Status: "pending", Count: 10},
		}, nil)
		f.repo.EXPECT().MostRentedCar(gomock.Any()).Return(&model.RentedCar{CarID: "car-1", Name: "Creta", Brand: "Hyundai", Bookings: 9}, nil)
		f.repo.EXPECT().MonthlyRevenue(gomock.Any(), model.RevenueMonths).Return([]model.MonthlyRevenue{
			{Year: 2026, Month: 9, Revenue: 45000, Bookings: 14},
		}, nil)
		f.bookingRepo.EXPECT().GetAllDetail(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup) ([]bookingModel.BookingDetail, error) {
				assert.Equal(t, model.RecentBookingLimit, params.Limit)
				assert.Equal(t, "bookings.created_at", params.SortBy)
				assert.Equal(t, gDto.SortDirDesc, params.SortDir)

				return []bookingModel.BookingDetail{{Booking: bookingModel.Booking{ID: "booking-1"}}}, nil
			})

		res, err := f.svc.Stats(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 12, res.TotalUsers)
		assert.Equal(t, 7, res.TotalCars)
		assert.Equal(t, 30, res.TotalBookings)
		assert.Equal(t, int64(84500), res.TotalRevenue)
		assert.Equal(t, map[string]int{"pending": 10, "confirmed": 20, "cancelled": 0, "completed": 0, "rejected": 0}, res.BookingsByStatus)
		require.Len(t, res.RecentBookings, 1)
		assert.Equal(t, "booking-1", res.RecentBookings[0].ID)
		require.NotNil(t, res.MostRentedCar)
		assert.Equal(t, "Creta", res.MostRentedCar.Name)
		assert.Equal(t, []dto.MonthlyRevenueResponse{{Year: 2026, Month: 9, Revenue: 45000, Bookings: 14}}, res.MonthlyRevenue)

		select {
		case cached := <-saved:
			assert.Equal(t, res, cached)
		case <-time.After(time.Second):
			t.Fatal("stats were not cached")
		}
	})

	t.Run("no rentals yet", func(t *testing.T) {
		f := setup(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		f.repo.EXPECT().Totals(gomock.Any()).Return(model.Totals{}, nil)
		f.repo.EXPECT().BookingsByStatus(gomock.Any()).Return([]model.StatusCount{}, nil)
		f.repo.EXPECT().MostRentedCar(gomock.Any()).Return(nil, nil)
		f.repo.EXPECT().MonthlyRevenue(gomock.Any(), gomock.Any()).Return([]model.MonthlyRevenue{}, nil)
		f.bookingRepo.EXPECT().GetAllDetail(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		res, err := f.svc.Stats(context.Background())
		require.NoError(t, err)
		assert.Nil(t, res.MostRentedCar)
		assert.Empty(t, res.RecentBookings)
		assert.Len(t, res.BookingsByStatus, len(bookingModel.BookingStatuses))

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("cache hit", func(t *testing.T) {
		f := setup(t)

		f.cache.EXPECT().Get(gomock.Any(), "dashboard:stats", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any) error {
				res, _ := value.(*dto.StatsResponse)
				res.TotalCars = 3

				return nil
			})

		res, err := f.svc.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, res.TotalCars)
	})

	t.Run("aggregate failure", func(t *testing.T) {
		f := setup(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Totals(gomock.Any()).Return(model.Totals{}, errors.New("database error"))
		f.repo.EXPECT().BookingsByStatus(gomock.Any()).Return(nil, nil).AnyTimes()
		f.repo.EXPECT().MostRentedCar(gomock.Any()).Return(nil, nil).AnyTimes()
		f.repo.EXPECT().MonthlyRevenue(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
		f.bookingRepo.EXPECT().GetAllDetail(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

		_, err := f.svc.Stats(context.Background())
		require.Error(t, err)
	})
}
