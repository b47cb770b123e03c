package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"driveease/config"
	otelMocks "driveease/infras/otel/mocks"
	cacheMocks "driveease/shared/cache/mocks"
	"driveease/shared/constant"
	"driveease/transport/http/middleware"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newLimited(t *testing.T, enable bool) (*cacheMocks.MockRedisCache, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	cache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = enable
	cfg.App.RateLimiter.MaxRequests = 3
	cfg.App.RateLimiter.WindowSeconds = 60

	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, cache)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return cache, app.RateLimit()(ok)
}

func TestRateLimit(t *testing.T) {
	t.Run("within window", func(t *testing.T) {
		cache, handler := newLimited(t, true)
		cache.EXPECT().Incr(gomock.Any(), gomock.Any(), 60).Return(int64(1), nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cars", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Header().Get(constant.RequestHeaderRateLimit))
		assert.Equal(t, "2", rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
	})

	t.Run("over the limit", func(t *testing.T) {
		cache, handler := newLimited(t, true)
		cache.EXPECT().Incr(gomock.Any(), gomock.Any(), 60).Return(int64(4), nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cars", nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})

	t.Run("cache outage lets the request through", func(t *testing.T) {
		cache, handler := newLimited(t, true)
		cache.EXPECT().Incr(gomock.Any(), gomock.Any(), 60).Return(int64(0), errors.New("connection refused"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cars", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		_, handler := newLimited(t, false)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cars", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
