package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"driveease/config"
	"driveease/infras/otel/mocks"
	"driveease/internal/domains/booking/model"
	"driveease/internal/domains/booking/model/dto"
	"driveease/internal/domains/booking/service"
	carMocks "driveease/internal/domains/car/mocks"
	notificationMocks "driveease/internal/domains/notification/mocks"
	cacheMocks "driveease/shared/cache/mocks"
	gDto "driveease/shared/dto"
	"driveease/shared/lock"
)

// memoryRepo keeps bookings in memory, evaluates the overlap filter itself and
// refuses overlapping inserts like the bookings exclusion constraint.
type memoryRepo struct {
	mu       sync.Mutex
	bookings []model.Booking
}

func (r *memoryRepo) overlapping(carID string, pickup, drop time.Time) bool {
	for _, b := range r.bookings {
		if b.CarID == carID && b.BookingStatus.IsActive() && model.Overlaps(b.PickupDate, b.DropDate, pickup, drop) {
			return true
		}
	}

	return false
}

func (r *memoryRepo) Insert(_ context.Context, booking model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overlapping(booking.CarID, booking.PickupDate, booking.DropDate) {
		return model.ErrDateConflict
	}

	r.bookings = append(r.bookings, booking)

	return nil
}

func (r *memoryRepo) ExistOnPrimary(ctx context.Context, filter gDto.FilterGroup) (bool, error) {
	return r.Exist(ctx, filter)
}

func (r *memoryRepo) Exist(_ context.Context, filter gDto.FilterGroup) (bool, error) {
	var (
		carID        string
		pickup, drop time.Time
	)

	for _, f := range filter.Filters {
		filter, ok := f.(gDto.Filter)
		if !ok {
			continue
		}

		switch {
		case filter.Field == model.FieldCarID:
			carID, _ = filter.Value.(string)
		case filter.ArgName == "overlap_drop":
			drop, _ = filter.Value.(time.Time)
		case filter.ArgName == "overlap_pickup":
			pickup, _ = filter.Value.(time.Time)
		}
	}

	// Widen the window between the check and the insert.
	time.Sleep(5 * time.Millisecond)

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.overlapping(carID, pickup, drop), nil
}

func (r *memoryRepo) Get(context.Context, gDto.FilterGroup, ...string) (model.Booking, error) {
	return model.Booking{}, nil
}

func (r *memoryRepo) GetDetail(context.Context, gDto.FilterGroup) (model.BookingDetail, error) {
	return model.BookingDetail{}, nil
}

func (r *memoryRepo) GetAllDetail(context.Context, gDto.QueryParams, gDto.FilterGroup) ([]model.BookingDetail, error) {
	return nil, nil
}

func (r *memoryRepo) Count(context.Context, gDto.FilterGroup) (int, error) {
	return len(r.bookings), nil
}

func (r *memoryRepo) UpdateAffected(context.Context, map[string]any, gDto.FilterGroup) (int64, error) {
	return 0, nil
}

func newConcurrentService(t *testing.T, lockWait time.Duration) (*memoryRepo, service.Booking) {
	t.Helper()

	ctrl := gomock.NewController(t)

	carRepo := carMocks.NewMockCar(ctrl)
	carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil).AnyTimes()

	redisCache := cacheMocks.NewMockRedisCache(ctrl)
	redisCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	repo := &memoryRepo{}
	svc := service.New(repo, carRepo, notificationMocks.NewMockNotification(ctrl), lock.NewLocalLocker(lockWait),
		&config.Config{}, redisCache, mocks.NewOtel())

	return repo, svc
}

// createAll starts every request at once and returns the errors in request order.
func createAll(svc service.Booking, reqs []dto.CreateBookingRequest) []error {
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, len(reqs))
	)

	for i, req := range reqs {
		wg.Add(1)

		go func() {
			defer wg.Done()
			<-start

			_, errs[i] = svc.Create(context.Background(), model.Requester{ID: otherID}, req)
		}()
	}

	close(start)
	wg.Wait()

	return errs
}

func TestBookingService_Create_ConcurrentRequestsForSameDates(t *testing.T) {
	repo, svc := newConcurrentService(t, time.Second)

	req := dto.CreateBookingRequest{CarID: carID, PickupDate: daysFromToday(10), DropDate: daysFromToday(12)}

	errs := createAll(svc, []dto.CreateBookingRequest{req, req})

	var succeeded, conflicted int

	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, model.ErrDateConflict):
			conflicted++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	require.Len(t, repo.bookings, 1)

	time.Sleep(10 * time.Millisecond)
}

func TestBookingService_Create_ConcurrentRequestsWithShortLockWait(t *testing.T) {
	repo, svc := newConcurrentService(t, time.Millisecond)

	errs := createAll(svc, []dto.CreateBookingRequest{
		{CarID: carID, PickupDate: daysFromToday(10), DropDate: daysFromToday(12)},
		{CarID: carID, PickupDate: daysFromToday(11), DropDate: daysFromToday(13)},
		{CarID: carID, PickupDate: daysFromToday(30), DropDate: daysFromToday(32)},
	})

	require.NoError(t, errs[2], "a range disjoint from every other request must be booked")

	overlapping := errs[:2]
	succeeded := 0

	for _, err := range overlapping {
		if err == nil {
			succeeded++

			continue
		}

		assert.ErrorIs(t, err, model.ErrDateConflict)
	}

	assert.Equal(t, 1, succeeded)
	require.Len(t, repo.bookings, 2)

	time.Sleep(10 * time.Millisecond)
}
