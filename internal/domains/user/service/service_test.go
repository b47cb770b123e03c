package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"driveease/config"
	"driveease/infras/otel/mocks"
	userMocks "driveease/internal/domains/user/mocks"
	"driveease/internal/domains/user/model"
	"driveease/internal/domains/user/model/dto"
	"driveease/internal/domains/user/service"
	cacheMocks "driveease/shared/cache/mocks"
	"driveease/shared/constant"
	gDto "driveease/shared/dto"
	"driveease/shared/failure"
)

const userID = "user-1"

func setup(t *testing.T) (*userMocks.MockUser, *cacheMocks.MockRedisCache, service.User) {
	ctrl := gomock.NewController(t)

	repo := userMocks.NewMockUser(ctrl)
	redisCache := cacheMocks.NewMockRedisCache(ctrl)
	cfg := &config.Config{}

	redisCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	redisCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	redisCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return repo, redisCache, service.New(repo, cfg, redisCache, mocks.NewOtel())
}

func renter() model.User {
	return model.User{ID: userID, Name: "Asha", Email: "asha@driveease.in", Role: constant.RoleUser}
}

func TestUserService_GetAll(t *testing.T) {
	repo, redisCache, svc := setup(t)

	redisCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(21, nil)
	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.User, error) {
			where, args := filter.GetWhereClause()

			assert.Equal(t, dto.DefaultUserLimit, params.Limit)
			assert.Equal(t, "users.created_at", params.SortBy)
			assert.Equal(t, gDto.SortDirDesc, params.SortDir)
			assert.Equal(t, constant.RoleUser, args[model.FieldRole])
			assert.Equal(t, "%asha%", args["search_email"])
			assert.Contains(t, where, " OR ")

			return []model.User{renter()}, nil
		})

	res, err := svc.GetAll(context.Background(), dto.UserQuery{Search: "asha"}, gDto.QueryParams{SortBy: "password"})
	require.NoError(t, err)
	assert.Equal(t, 21, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	assert.Equal(t, 1, res.Page)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "Asha", res.Users[0].Name)

	time.Sleep(10 * time.Millisecond)
}

func TestUserService_Get(t *testing.T) {
	t.Run("cache hit", func(t *testing.T) {
		_, redisCache, svc := setup(t)

		redisCache.EXPECT().Get(gomock.Any(), "user:get:"+userID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any) error {
				res, _ := value.(*dto.UserResponse)
				res.ID = userID

				return nil
			})

		res, err := svc.Get(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, userID, res.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo, redisCache, svc := setup(t)

		redisCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)

		_, err := svc.Get(context.Background(), userID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("repository error", func(t *testing.T) {
		repo, redisCache, svc := setup(t)

		redisCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, errors.New("database error"))

		_, err := svc.Get(context.Background(), userID)
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("empty request", func(t *testing.T) {
		_, _, svc := setup(t)

		_, err := svc.UpdateProfile(context.Background(), dto.UpdateProfileRequest{}, userID)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("updates only given fields", func(t *testing.T) {
		repo, _, svc := setup(t)

		name := "Asha Rao"
		updated := renter()
		updated.Name = name

		gomock.InOrder(
			repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(renter(), nil),
			repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(updated, nil),
		)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, &name, fields[model.FieldName])
				assert.NotContains(t, fields, model.FieldPhone)
				assert.Equal(t, userID, fields[constant.FieldModifiedBy])

				return nil
			})

		res, err := svc.UpdateProfile(context.Background(), dto.UpdateProfileRequest{Name: &name}, userID)
		require.NoError(t, err)
		assert.Equal(t, name, res.Name)

		time.Sleep(10 * time.Millisecond)
	})
}

func TestUserService_ToggleBlock(t *testing.T) {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")

	tests := []struct {
		name        string
		user        model.User
		wantErr     error
		wantBlocked bool
		wantMessage string
	}{
		{
			name:    "missing user",
			user:    model.User{},
			wantErr: model.ErrNotFound,
		},
		{
			name:    "admin cannot be blocked",
			user:    model.User{ID: userID, Role: constant.RoleAdmin},
			wantErr: model.ErrCannotBlockAdmin,
		},
		{
			name:        "block renter",
			user:        renter(),
			wantBlocked: true,
			wantMessage: "User blocked",
		},
		{
			name:        "unblock renter",
			user:        model.User{ID: userID, Role: constant.RoleUser, IsBlocked: true},
			wantMessage: "User unblocked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, svc := setup(t)

			repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.user, nil)

			if tt.wantErr == nil {
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, tt.wantBlocked, fields[model.FieldIsBlocked])
						assert.Equal(t, "admin-1", fields[constant.FieldModifiedBy])

						return nil
					})
			}

			res, err := svc.ToggleBlock(ctx, userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantMessage, res.Message)
			assert.Equal(t, tt.wantBlocked, res.User.IsBlocked)

			time.Sleep(10 * time.Millisecond)
		})
	}
}
