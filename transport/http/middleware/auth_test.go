package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"driveease/config"
	"driveease/infras/jwt"
	jwtMocks "driveease/infras/jwt/mocks"
	otelMocks "driveease/infras/otel/mocks"
	"driveease/permissions"
	"driveease/shared/constant"
	"driveease/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const internalKey = "internal-secret"

func newProtectedRouter(t *testing.T) (*jwtMocks.MockJWT, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	jwtService := jwtMocks.NewMockJWT(ctrl)

	cfg := &config.Config{}
	cfg.App.APIKey = internalKey

	mw := middleware.NewAuthRoleMiddleware(jwtService, otelMocks.NewOtel(), permissions.Get(), cfg)

	echoRole := func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(constant.ContextKeyUserRole).(string)
		w.Header().Set("X-Role", role)
		w.WriteHeader(http.StatusNoContent)
	}

	mux := chi.NewRouter()
	mux.Group(func(r chi.Router) {
		r.Use(mw.APIKey)
		r.Use(mw.Auth)
		r.Use(mw.RBAC)

		r.Route("/v1", func(v1 chi.Router) {
			v1.Get("/cars", echoRole)
			v1.Route("/bookings", func(b chi.Router) {
				b.Post("/", echoRole)
			})
			v1.Patch("/admin/bookings/{id}/status", echoRole)
		})
	})

	return jwtService, mux
}

func serve(handler http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func bearer(token string) map[string]string {
	return map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token}
}

func TestAuthRole_PublicRoute(t *testing.T) {
	_, handler := newProtectedRouter(t)

	rec := serve(handler, http.MethodGet, "/v1/cars", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthRole_MissingOrMalformedHeader(t *testing.T) {
	_, handler := newProtectedRouter(t)

	rec := serve(handler, http.MethodPost, "/v1/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(handler, http.MethodPost, "/v1/bookings", map[string]string{constant.RequestHeaderAuthorization: "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRole_InvalidToken(t *testing.T) {
	jwtService, handler := newProtectedRouter(t)

	jwtService.EXPECT().ValidateToken(gomock.Any(), "expired", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)

	rec := serve(handler, http.MethodPost, "/v1/bookings", bearer("expired"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has expired")
}

func TestAuthRole_ClaimsWithoutSubject(t *testing.T) {
	jwtService, handler := newProtectedRouter(t)

	jwtService.EXPECT().ValidateToken(gomock.Any(), "anon", jwt.AccessToken).Return(&jwt.Claims{Role: constant.RoleUser}, nil)

	rec := serve(handler, http.MethodPost, "/v1/bookings", bearer("anon"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRole_RoleChecks(t *testing.T) {
	jwtService, handler := newProtectedRouter(t)

	renter := &jwt.Claims{UserID: "u-1", Email: "renter@example.com", Role: constant.RoleUser}
	admin := &jwt.Claims{UserID: "u-2", Email: "admin@example.com", Role: constant.RoleAdmin}

	jwtService.EXPECT().ValidateToken(gomock.Any(), "renter", jwt.AccessToken).Return(renter, nil).Times(2)
	jwtService.EXPECT().ValidateToken(gomock.Any(), "admin", jwt.AccessToken).Return(admin, nil)

	t.Run("renter may book", func(t *testing.T) {
		rec := serve(handler, http.MethodPost, "/v1/bookings", bearer("renter"))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, constant.RoleUser, rec.Header().Get("X-Role"))
	})

	t.Run("renter may not change booking status", func(t *testing.T) {
		rec := serve(handler, http.MethodPatch, "/v1/admin/bookings/b-1/status", bearer("renter"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin may change booking status", func(t *testing.T) {
		rec := serve(handler, http.MethodPatch, "/v1/admin/bookings/b-1/status", bearer("admin"))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestAuthRole_APIKey(t *testing.T) {
	_, handler := newProtectedRouter(t)

	t.Run("valid key bypasses token auth", func(t *testing.T) {
		rec := serve(handler, http.MethodPatch, "/v1/admin/bookings/b-1/status", map[string]string{constant.RequestHeaderAPIKey: internalKey})

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("wrong key is refused", func(t *testing.T) {
		rec := serve(handler, http.MethodGet, "/v1/cars", map[string]string{constant.RequestHeaderAPIKey: "guess"})

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
