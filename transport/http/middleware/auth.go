package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"driveease/config"
	"driveease/infras/jwt"
	"driveease/infras/otel"
	"driveease/permissions"
	"driveease/shared/constant"
	"driveease/shared/failure"
	"driveease/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// internalCallKey marks a request already authenticated by the API key.
type internalCallKey struct{}

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

type AuthRole interface {
	Auth
	Role
}

type authRole struct {
	jwtService  jwt.JWT
	otel        otel.Otel
	permissions *permissions.PermissionData
	cfg         *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRole{
		jwtService:  jwtService,
		otel:        otel,
		permissions: permissions,
		cfg:         cfg,
	}
}

var tokenMessages = map[error]string{
	jwt.ErrMissingToken: "Missing authorization header",
	jwt.ErrMalformed:    "Invalid authorization header format",
	jwt.ErrExpiredToken: "Token has expired",
	jwt.ErrInvalidToken: "Invalid token",
	jwt.ErrInvalidClaim: "Invalid token claims",
}

func tokenFailure(err error) error {
	for target, msg := range tokenMessages {
		if errors.Is(err, target) {
			return failure.Unauthorized(msg)
		}
	}

	return failure.Unauthorized("Token validation failed")
}

func isInternalCall(r *http.Request) bool {
	internal, _ := r.Context().Value(internalCallKey{}).(bool)

	return internal
}

// route resolves the chi pattern of the request and the permission entry
// registered for it. Unknown routes get the zero Permission, which admits any
// authenticated caller.
func (m *authRole) route(r *http.Request) (string, permissions.Permission) {
	pattern := r.URL.Path

	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.Routes != nil {
		if found := rctx.Routes.Find(chi.NewRouteContext(), r.Method, r.URL.Path); found != "" {
			pattern = found
		}
	}

	if m.permissions == nil {
		return pattern, permissions.Permission{}
	}

	return pattern, m.permissions.FindPermissions(pattern, r.Method)
}

func reject(w http.ResponseWriter, scope otel.Scope, err error) {
	scope.TraceError(err)
	response.WithError(w, err)
}

// Auth validates the bearer access token and stores its claims in the request
// context. Public routes and API key callers pass through untouched.
func (m *authRole) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "auth.middleware")
		defer scope.End()

		pattern, permission := m.route(r)

		if isInternalCall(r) || permission.Skip {
			next.ServeHTTP(w, r)

			return
		}

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.route":      pattern,
			"http.method":     r.Method,
		})

		token, err := jwt.ExtractTokenFromHeader(r.Header.Get(constant.RequestHeaderAuthorization))
		if err != nil {
			reject(w, scope, tokenFailure(err))

			return
		}

		claims, err := m.jwtService.ValidateToken(ctx, token, jwt.AccessToken)
		if err != nil {
			reject(w, scope, tokenFailure(err))

			return
		}

		if claims.UserID == "" || claims.Email == "" {
			log.Warn().Str("token_id", claims.TokenID).Msg("access token without subject")
			reject(w, scope, tokenFailure(jwt.ErrInvalidClaim))

			return
		}

		ctx = r.Context()
		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RBAC admits the caller when its role is listed for the route. It must run
// after Auth.
func (m *authRole) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "rbac.middleware")
		defer scope.End()

		if isInternalCall(r) {
			next.ServeHTTP(w, r)

			return
		}

		if m.permissions == nil {
			reject(w, scope, failure.ForbiddenError)

			return
		}

		_, permission := m.route(r)
		if m.permissions.Skip || permission.Skip {
			next.ServeHTTP(w, r)

			return
		}

		role, _ := r.Context().Value(constant.ContextKeyUserRole).(string)
		if !permission.Allows(role) {
			scope.SetAttributes(map[string]any{
				"user_role":     role,
				"allowed_roles": permission.Permissions,
			})
			reject(w, scope, failure.ForbiddenError)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// APIKey lets internal services bypass token auth with the shared key. A
// request without the header continues as a regular client call; a wrong key
// is refused outright.
func (m *authRole) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "api_key.middleware")
		defer scope.End()

		key := r.Header.Get(constant.RequestHeaderAPIKey)
		if key == "" {
			scope.SetAttribute("http.source", "client")
			next.ServeHTTP(w, r)

			return
		}

		scope.SetAttribute("http.source", "internal")

		expected := m.cfg.App.APIKey
		if expected == "" || subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
			reject(w, scope, failure.ForbiddenError)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), internalCallKey{}, true)))
	})
}
