package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"driveease/config"
	"driveease/infras/jwt"
	"driveease/infras/otel"
	"driveease/internal/domains/auth/model/dto"
	userModel "driveease/internal/domains/user/model"
	userRepo "driveease/internal/domains/user/repository"
	"driveease/shared"
	"driveease/shared/cache"
	"driveease/shared/constant"
	gDto "driveease/shared/dto"
	"driveease/shared/failure"
	"driveease/shared/password"
	"driveease/shared/timezone"

	"github.com/rs/zerolog/log"
)

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
	Logout(ctx context.Context, userID string, req dto.LogoutRequest) error
}

// cacheRevokedToken prefixes the ids of refresh tokens that were logged out or
// already exchanged. Entries expire together with the token.
const cacheRevokedToken = "auth:revoked"

var (
	errInvalidRefreshToken = failure.Unauthorized("Invalid or expired refresh token")
	errRevokedRefreshToken = failure.Unauthorized("Refresh token has been revoked")
)

type serviceImpl struct {
	userRepo   userRepo.User
	cfg        *config.Config
	otel       otel.Otel
	jwtService jwt.JWT
	cache      cache.RedisCache
}

func New(userRepo userRepo.User, cfg *config.Config, otel otel.Otel, jwt jwt.JWT, cache cache.RedisCache) Auth {
	return &serviceImpl{
		userRepo:   userRepo,
		cfg:        cfg,
		otel:       otel,
		jwtService: jwt,
		cache:      cache,
	}
}

func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (res dto.AuthResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Register")
	defer scope.End()
	defer scope.TraceIfError(err)

	exists, err := s.userRepo.Exist(ctx, byEmail(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return res, fmt.Errorf("failed to check if user exists: %w", err)
	}

	if exists {
		return res, userModel.ErrEmailRegistered // nolint:wrapcheck
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return res, fmt.Errorf("failed to hash password: %w", err)
	}

	user := req.ToUserModel(hashedPassword)

	if err = s.userRepo.Insert(ctx, user); err != nil {
		if errors.Is(err, userModel.ErrEmailRegistered) {
			return res, err
		}

		log.Error().Err(err).Msg("failed to create user")

		return res, fmt.Errorf("failed to create user: %w", err)
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	res.FromTokenPair(user, tokenPair)

	return res, nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.AuthResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := byEmail(req.Email)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		log.Warn().Str("email", req.Email).Msg("login attempt with non-existent email")

		return res, userModel.ErrInvalidCredential // nolint:wrapcheck
	}

	if user.IsBlocked {
		return res, userModel.ErrBlocked // nolint:wrapcheck
	}

	if err = password.Verify(req.Password, user.Password); err != nil {
		if errors.Is(err, password.ErrInvalidPassword) {
			log.Warn().Str("email", req.Email).Msg("login attempt with wrong password")

			return res, userModel.ErrInvalidCredential // nolint:wrapcheck
		}

		return res, fmt.Errorf("failed to verify password: %w", err)
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	now := timezone.Now()

	updatedFields := shared.ChangedFields(struct{}{}, user.ID)
	updatedFields[userModel.FieldLastLogin] = now

	if password.NeedsRehash(user.Password) {
		if rehashed, hashErr := password.Hash(req.Password); hashErr == nil {
			updatedFields[userModel.FieldPassword] = rehashed
		}
	}

	if err = s.userRepo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to update last login")

		return res, fmt.Errorf("failed to update last login: %w", err)
	}

	user.LastLogin = &now

	res.FromTokenPair(user, tokenPair)

	return res, nil
}

// RefreshToken exchanges a valid refresh token for a new pair. The role is
// read again so a demoted or blocked account cannot keep refreshing, and the
// presented token is revoked so it works only once.
func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer scope.TraceIfError(err)

	claims, err := s.activeRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return res, err
	}

	user, err := s.userRepo.Get(ctx, shared.FilterByID(claims.UserID, userModel.FieldID, userModel.TableName),
		userModel.FieldID, userModel.FieldEmail, userModel.FieldRole, userModel.FieldIsBlocked)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.Unauthorized("Invalid refresh token") // nolint:wrapcheck
	}

	if user.IsBlocked {
		return res, userModel.ErrBlocked // nolint:wrapcheck
	}

	if err = s.revoke(ctx, claims); err != nil {
		return res, err
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

// Logout revokes a refresh token of the calling user. Access tokens already
// issued stay valid until they expire.
func (s *serviceImpl) Logout(ctx context.Context, userID string, req dto.LogoutRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Logout")
	defer scope.End()
	defer scope.TraceIfError(err)

	claims, err := s.activeRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return err
	}

	if claims.UserID != userID {
		log.Warn().Str("user_id", userID).Str("token_id", claims.TokenID).Msg("logout with a refresh token of another user")

		return errInvalidRefreshToken
	}

	return s.revoke(ctx, claims)
}

// activeRefreshToken validates token and refuses it once revoked. A denylist
// that cannot be read fails the request.
func (s *serviceImpl) activeRefreshToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtService.ValidateToken(ctx, token, jwt.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to validate refresh token")

		return nil, errInvalidRefreshToken
	}

	var revoked bool

	err = s.cache.Get(ctx, shared.BuildCacheKey(cacheRevokedToken, claims.TokenID), &revoked)

	switch {
	case err == nil:
		log.Warn().Str("token_id", claims.TokenID).Msg("revoked refresh token presented")

		return nil, errRevokedRefreshToken
	case errors.Is(err, cache.Nil):
		return claims, nil
	default:
		log.Error().Err(err).Msg("failed to read revoked tokens")

		return nil, fmt.Errorf("failed to read revoked tokens: %w", err)
	}
}

func (s *serviceImpl) revoke(ctx context.Context, claims *jwt.Claims) error {
	lifetime := time.Duration(s.cfg.JWT.RefreshExpireMin) * time.Minute
	if claims.ExpiresAt != nil {
		lifetime = time.Until(claims.ExpiresAt.Time)
	}

	ttl := max(int(math.Ceil(lifetime.Seconds())), 1)

	if err := s.cache.Save(ctx, shared.BuildCacheKey(cacheRevokedToken, claims.TokenID), true, ttl); err != nil {
		log.Error().Err(err).Str("token_id", claims.TokenID).Msg("failed to revoke refresh token")

		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

func byEmail(email string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    userModel.FieldEmail,
				Operator: gDto.FilterOperatorEq,
				Value:    dto.NormalizeEmail(email),
				Table:    userModel.TableName,
			},
		},
	}
}
