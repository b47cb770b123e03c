package service_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"driveease/config"
	"driveease/infras/otel/mocks"
	bookingMocks "driveease/internal/domains/booking/mocks"
	"driveease/internal/domains/booking/model"
	"driveease/internal/domains/booking/model/dto"
	"driveease/internal/domains/booking/service"
	carMocks "driveease/internal/domains/car/mocks"
	carModel "driveease/internal/domains/car/model"
	notificationMocks "driveease/internal/domains/notification/mocks"
	cacheMocks "driveease/shared/cache/mocks"
	"driveease/shared/constant"
	gDto "driveease/shared/dto"
	"driveease/shared/failure"
	"driveease/shared/lock"
	lockMocks "driveease/shared/lock/mocks"
	gModel "driveease/shared/model"
	"driveease/shared/timezone"
)

const (
	renterID = "8d6f0c3e-1f0a-4a55-9a43-2b1e5c2f7a10"
	otherID  = "0b0b4c1e-6b9e-4f5c-8e33-c7d9e2a1f001"
	adminID  = "a1a1a1a1-0000-4000-8000-000000000001"
	carID    = "5f1d7c2a-3b4e-4c6d-8e9f-0a1b2c3d4e5f"
)

var (
	renter = model.Requester{ID: renterID, Role: constant.RoleUser}
	other  = model.Requester{ID: otherID, Role: constant.RoleUser}
	admin  = model.Requester{ID: adminID, Role: constant.RoleAdmin}
)

type fixture struct {
	repo     *bookingMocks.MockBooking
	carRepo  *carMocks.MockCar
	notifier *notificationMocks.MockNotification
	locker   *lockMocks.MockLocker
	cache    *cacheMocks.MockRedisCache
	svc      service.Booking
}

func setup(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	f := fixture{
		repo:     bookingMocks.NewMockBooking(ctrl),
		carRepo:  carMocks.NewMockCar(ctrl),
		notifier: notificationMocks.NewMockNotification(ctrl),
		locker:   lockMocks.NewMockLocker(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
	}
	f.svc = service.New(f.repo, f.carRepo, f.notifier, f.locker, cfg, f.cache, mocks.NewOtel())

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return f
}

func daysFromToday(n int) string {
	return timezone.Today().AddDate(0, 0, n).Format(constant.DateOnlyFormat)
}

func availableCar() carModel.Car {
	return carModel.Car{
		ID:          carID,
		Name:        "Creta",
		Brand:       "Hyundai",
		City:        "Pune",
		PricePerDay: 1500,
		IsAvailable: true,
	}
}

func storedBooking(status model.BookingStatus, paymentStatus model.PaymentStatus) model.Booking {
	pickup := timezone.Today().AddDate(0, 0, 5)

	return model.Booking{
		ID:            "booking-1",
		UserID:        renterID,
		CarID:         carID,
		PickupDate:    pickup,
		DropDate:      pickup.AddDate(0, 0, 2),
		TotalDays:     2,
		TotalAmount:   3000,
		BookingStatus: status,
		PaymentStatus: paymentStatus,
		PickupCity:    "Pune",
		Metadata:      gModel.NewMetadata(renterID, timezone.Now()),
	}
}

func noopUnlock(context.Context) error { return nil }

func TestBookingService_Create(t *testing.T) {
	validReq := dto.CreateBookingRequest{CarID: carID, PickupDate: daysFromToday(1), DropDate: daysFromToday(4)}

	tests := []struct {
		name      string
		req       dto.CreateBookingRequest
		setupMock func(f fixture)
		cancelled bool
		wantErr   error
		wantCode  int
	}{
		{
			name: "car not found",
			req:  validReq,
			setupMock: func(f fixture) {
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(carModel.Car{}, nil)
			},
			wantErr: model.ErrCarNotFound,
		},
		{
			name: "car unavailable",
			req:  validReq,
			setupMock: func(f fixture) {
				car := availableCar()
				car.IsAvailable = false
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(car, nil)
			},
			wantErr: model.ErrAssetUnavailable,
		},
		{
			name: "pickup in the past",
			req:  dto.CreateBookingRequest{CarID: carID, PickupDate: daysFromToday(-1), DropDate: daysFromToday(2)},
			setupMock: func(f fixture) {
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil)
			},
			wantErr: model.ErrInvalidDateRange,
		},
		{
			name: "drop not after pickup",
			req:  dto.CreateBookingRequest{CarID: carID, PickupDate: daysFromToday(3), DropDate: daysFromToday(3)},
			setupMock: func(f fixture) {
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil)
			},
			wantErr: model.ErrDropBeforePickup,
		},
		{
			name: "lock busy and dates taken",
			req:  validReq,
			setupMock: func(f fixture) {
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil)
				f.locker.EXPECT().Acquire(gomock.Any(), "booking:lock:car:"+carID).Return(nil, lock.ErrNotAcquired)
				f.repo.EXPECT().ExistOnPrimary(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(model.ErrDateConflict)
			},
			wantErr: model.ErrDateConflict,
		},
		{
			name: "request cancelled while waiting for the lock",
			req:  validReq,
			setupMock: func(f fixture) {
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil)
				f.locker.EXPECT().Acquire(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, _ string) (lock.Unlock, error) {
						<-ctx.Done()

						return nil, ctx.Err()
					})
			},
			cancelled: true,
			wantErr:   context.Canceled,
		},
		{
			name: "overlapping booking",
			req:  validReq,
			setupMock: func(f fixture) {
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil)
				f.locker.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(noopUnlock, nil)
				f.repo.EXPECT().ExistOnPrimary(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantErr: model.ErrDateConflict,
		},
		{
			name: "exclusion constraint on insert",
			req:  validReq,
			setupMock: func(f fixture) {
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil)
				f.locker.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(noopUnlock, nil)
				f.repo.EXPECT().ExistOnPrimary(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(model.ErrDateConflict)
			},
			wantErr: model.ErrDateConflict,
		},
		{
			name: "insert fails",
			req:  validReq,
			setupMock: func(f fixture) {
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil)
				f.locker.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(noopUnlock, nil)
				f.repo.EXPECT().ExistOnPrimary(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			tt.setupMock(f)

			ctx, cancel := context.WithCancel(context.Background())
			if tt.cancelled {
				cancel()
			}
			defer cancel()

			_, err := f.svc.Create(ctx, renter, tt.req)
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
			}
		})
	}
}

func TestBookingService_Create_Success(t *testing.T) {
	f := setup(t)

	released := false

	f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil)
	f.locker.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(func(context.Context) error {
		released = true

		return nil
	}, nil)
	f.repo.EXPECT().ExistOnPrimary(gomock.Any(), gomock.Any()).Return(false, nil)

	var inserted model.Booking
	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b model.Booking) error {
		inserted = b

		return nil
	})

	res, err := f.svc.Create(context.Background(), renter, dto.CreateBookingRequest{
		CarID:      carID,
		PickupDate: daysFromToday(0),
		DropDate:   daysFromToday(3),
	})
	require.NoError(t, err)

	assert.True(t, released)
	assert.Equal(t, renterID, inserted.UserID)
	assert.Equal(t, "Pune", inserted.PickupCity)
	assert.Equal(t, 3, res.TotalDays)
	assert.Equal(t, int64(4500), res.TotalAmount)
	assert.Equal(t, "pending", res.BookingStatus)
	assert.Equal(t, "pending", res.PaymentStatus)
	assert.Equal(t, "Hyundai Creta", res.Car.Name)

	time.Sleep(10 * time.Millisecond)
}

func TestBookingService_Create_ContinuesWithoutLock(t *testing.T) {
	tests := []struct {
		name    string
		lockErr error
	}{
		{name: "lock held by another request", lockErr: lock.ErrNotAcquired},
		{name: "lock store unreachable", lockErr: errors.New("dial tcp: connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil)
			f.locker.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(nil, tt.lockErr)
			f.repo.EXPECT().ExistOnPrimary(gomock.Any(), gomock.Any()).Return(false, nil)
			f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

			res, err := f.svc.Create(context.Background(), renter, dto.CreateBookingRequest{
				CarID:      carID,
				PickupDate: daysFromToday(30),
				DropDate:   daysFromToday(32),
			})
			require.NoError(t, err)
			assert.Equal(t, 2, res.TotalDays)

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestBookingService_Get(t *testing.T) {
	detail := model.BookingDetail{Booking: storedBooking(model.BookingStatusPending, model.PaymentStatusPending)}

	tests := []struct {
		name      string
		requester model.Requester
		setupMock func(f fixture)
		wantErr   error
	}{
		{
			name:      "cache hit for owner",
			requester: renter,
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), "booking:get:booking-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, value any) error {
						value.(*dto.BookingResponse).FromDetail(detail)

						return nil
					})
			},
		},
		{
			name:      "cache hit for another renter",
			requester: other,
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, value any) error {
						value.(*dto.BookingResponse).FromDetail(detail)

						return nil
					})
			},
			wantErr: model.ErrForbidden,
		},
		{
			name:      "not found",
			requester: renter,
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(model.BookingDetail{}, nil)
			},
			wantErr: model.ErrNotFound,
		},
		{
			name:      "another renter",
			requester: other,
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(detail, nil)
			},
			wantErr: model.ErrForbidden,
		},
		{
			name:      "admin",
			requester: admin,
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(detail, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			tt.setupMock(f)

			res, err := f.svc.Get(context.Background(), tt.requester, "booking-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "booking-1", res.ID)
			assert.Equal(t, renterID, res.User.ID)

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestBookingService_GetAll(t *testing.T) {
	t.Run("invalid status", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.GetAll(context.Background(), renter, "archived", gDto.QueryParams{})
		assert.ErrorIs(t, err, model.ErrInvalidStatus)
	})

	t.Run("scoped to renter and newest first", func(t *testing.T) {
		f := setup(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
		f.repo.EXPECT().GetAllDetail(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.BookingDetail, error) {
				assert.Equal(t, "bookings.created_at", params.SortBy)
				assert.Equal(t, gDto.SortDirDesc, params.SortDir)
				assert.Equal(t, constant.MaxValueLimit, params.Limit)
				assert.Equal(t, 1, params.Page)

				where, args := filter.GetWhereClause()
				assert.Contains(t, where, "bookings.booking_status")
				assert.Contains(t, where, "bookings.user_id")
				assert.Equal(t, renterID, args["user_id"])

				return []model.BookingDetail{{Booking: storedBooking(model.BookingStatusConfirmed, model.PaymentStatusPaid)}}, nil
			})

		res, err := f.svc.GetAll(context.Background(), renter, "confirmed", gDto.QueryParams{Limit: 500, SortBy: "1; DROP TABLE bookings"})
		require.NoError(t, err)
		assert.Equal(t, 1, res.TotalData)
		assert.Len(t, res.Bookings, 1)

		time.Sleep(10 * time.Millisecond)
	})
}

func TestBookingService_Cancel(t *testing.T) {
	tests := []struct {
		name        string
		requester   model.Requester
		stored      model.Booking
		affected    int64
		wantErr     error
		wantPayment model.PaymentStatus
	}{
		{
			name:        "owner cancels unpaid booking",
			requester:   renter,
			stored:      storedBooking(model.BookingStatusPending, model.PaymentStatusPending),
			affected:    1,
			wantPayment: model.PaymentStatusPending,
		},
		{
			name:        "admin cancels paid booking",
			requester:   admin,
			stored:      storedBooking(model.BookingStatusConfirmed, model.PaymentStatusPaid),
			affected:    1,
			wantPayment: model.PaymentStatusRefunded,
		},
		{
			name:      "another renter",
			requester: other,
			stored:    storedBooking(model.BookingStatusPending, model.PaymentStatusPending),
			wantErr:   model.ErrForbidden,
		},
		{
			name:      "already cancelled",
			requester: renter,
			stored:    storedBooking(model.BookingStatusCancelled, model.PaymentStatusPending),
			wantErr:   model.ErrTerminalState,
		},
		{
			name:      "changed concurrently",
			requester: renter,
			stored:    storedBooking(model.BookingStatusPending, model.PaymentStatusPending),
			affected:  0,
			wantErr:   model.ErrConcurrentUpdate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.stored, nil)

			if tt.wantErr == nil || errors.Is(tt.wantErr, model.ErrConcurrentUpdate) {
				f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, guard gDto.FilterGroup) (int64, error) {
						_, args := guard.GetWhereClause()
						assert.Equal(t, tt.stored.BookingStatus.String(), args["current_booking_status"])
						assert.Equal(t, model.BookingStatusCancelled, fields[model.FieldBookingStatus])

						return tt.affected, nil
					})
			}

			notified := make(chan model.Booking, 1)
			if tt.wantErr == nil {
				f.notifier.EXPECT().BookingCancelled(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b model.Booking) error {
						notified <- b

						return nil
					})
			}

			res, err := f.svc.Cancel(context.Background(), tt.requester, "booking-1", dto.CancelBookingRequest{Reason: "Plans changed"})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "cancelled", res.BookingStatus)
			assert.Equal(t, tt.wantPayment.String(), res.PaymentStatus)
			assert.Equal(t, "Plans changed", res.CancellationReason)
			assert.NotEmpty(t, res.CancelledAt)

			select {
			case b := <-notified:
				assert.Equal(t, "booking-1", b.ID)
			case <-time.After(time.Second):
				t.Fatal("cancellation notification was not sent")
			}
		})
	}
}

func TestBookingService_Cancel_NotificationFailureIsIgnored(t *testing.T) {
	f := setup(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storedBooking(model.BookingStatusPending, model.PaymentStatusPending), nil)
	f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)

	done := make(chan struct{})
	f.notifier.EXPECT().BookingCancelled(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, model.Booking) error {
			close(done)

			return errors.New("broker unavailable")
		})

	_, err := f.svc.Cancel(context.Background(), renter, "booking-1", dto.CancelBookingRequest{})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notification was not attempted")
	}
}

func TestBookingService_Cancel_DropsCachedBookingBeforeReturning(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := bookingMocks.NewMockBooking(ctrl)
	notifier := notificationMocks.NewMockNotification(ctrl)
	redisCache := cacheMocks.NewMockRedisCache(ctrl)

	svc := service.New(repo, carMocks.NewMockCar(ctrl), notifier, lockMocks.NewMockLocker(ctrl),
		&config.Config{}, redisCache, mocks.NewOtel())

	var dropped atomic.Bool

	redisCache.EXPECT().Delete(gomock.Any(), "booking:get:booking-1").
		DoAndReturn(func(context.Context, string) error {
			dropped.Store(true)

			return nil
		})
	redisCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storedBooking(model.BookingStatusConfirmed, model.PaymentStatusPaid), nil)
	repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)

	notified := make(chan struct{})
	notifier.EXPECT().BookingCancelled(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, model.Booking) error {
			close(notified)

			return nil
		})

	_, err := svc.Cancel(context.Background(), renter, "booking-1", dto.CancelBookingRequest{})
	require.NoError(t, err)

	assert.True(t, dropped.Load(), "a read right after the cancel must not see the cached booking")

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("cancellation notification was not sent")
	}
}

func TestBookingService_SetStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		stored     model.Booking
		wantErr    error
		wantNotify bool
	}{
		{
			name:    "unknown status",
			status:  "archived",
			wantErr: model.ErrInvalidStatus,
		},
		{
			name:    "pending is not a target",
			status:  "pending",
			stored:  storedBooking(model.BookingStatusConfirmed, model.PaymentStatusPaid),
			wantErr: model.ErrInvalidStatus,
		},
		{
			name:    "same status",
			status:  "completed",
			stored:  storedBooking(model.BookingStatusCompleted, model.PaymentStatusPaid),
			wantErr: model.ErrAlreadyInStatus,
		},
		{
			name:    "terminal booking",
			status:  "confirmed",
			stored:  storedBooking(model.BookingStatusRejected, model.PaymentStatusPending),
			wantErr: model.ErrTerminalState,
		},
		{
			name:    "confirm an unpaid booking",
			status:  "confirmed",
			stored:  storedBooking(model.BookingStatusPending, model.PaymentStatusPending),
			wantErr: model.ErrPaymentRequired,
		},
		{
			name:   "complete a confirmed booking",
			status: "completed",
			stored: storedBooking(model.BookingStatusConfirmed, model.PaymentStatusPaid),
		},
		{
			name:       "reject a pending booking",
			status:     "rejected",
			stored:     storedBooking(model.BookingStatusPending, model.PaymentStatusPending),
			wantNotify: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			if tt.stored.ID != "" {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.stored, nil)
			}

			if tt.wantErr == nil {
				f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
			}

			notified := make(chan struct{})
			if tt.wantNotify {
				f.notifier.EXPECT().BookingCancelled(gomock.Any(), gomock.Any()).
					DoAndReturn(func(context.Context, model.Booking) error {
						close(notified)

						return nil
					})
			}

			res, err := f.svc.SetStatus(context.Background(), admin, "booking-1", dto.UpdateStatusRequest{Status: tt.status})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.status, res.BookingStatus)

			if tt.wantNotify {
				select {
				case <-notified:
				case <-time.After(time.Second):
					t.Fatal("notification was not sent")
				}
			} else {
				time.Sleep(10 * time.Millisecond)
			}
		})
	}
}

func TestBookingService_CheckAvailability(t *testing.T) {
	req := dto.AvailabilityRequest{PickupDate: daysFromToday(2), DropDate: daysFromToday(5)}

	tests := []struct {
		name      string
		req       dto.AvailabilityRequest
		setupMock func(f fixture)
		want      dto.AvailabilityResponse
		wantErr   error
	}{
		{
			name: "car not found",
			req:  req,
			setupMock: func(f fixture) {
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(carModel.Car{}, nil)
			},
			wantErr: model.ErrCarNotFound,
		},
		{
			name: "car unavailable",
			req:  req,
			setupMock: func(f fixture) {
				car := availableCar()
				car.IsAvailable = false
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(car, nil)
			},
			want: dto.AvailabilityResponse{Available: false, Message: "Car is not available"},
		},
		{
			name: "drop before pickup",
			req:  dto.AvailabilityRequest{PickupDate: daysFromToday(5), DropDate: daysFromToday(2)},
			setupMock: func(f fixture) {
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil)
			},
			wantErr: model.ErrDropBeforePickup,
		},
		{
			name: "booked",
			req:  req,
			setupMock: func(f fixture) {
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			want: dto.AvailabilityResponse{Available: false, Message: "Car is booked for the selected dates"},
		},
		{
			name: "available",
			req:  req,
			setupMock: func(f fixture) {
				f.carRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(availableCar(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			want: dto.AvailabilityResponse{Available: true, Message: "Car is available", TotalDays: 3, TotalAmount: 4500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			tt.setupMock(f)

			res, err := f.svc.CheckAvailability(context.Background(), carID, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}
