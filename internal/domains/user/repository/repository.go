package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"

	"driveease/infras/otel"
	"driveease/infras/postgres"
	"driveease/internal/domains/user/model"
	"driveease/shared/constant"
	gDto "driveease/shared/dto"
	gRepo "driveease/shared/repository"

	"github.com/lib/pq"
)

type User interface {
	Insert(ctx context.Context, user model.User) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.User, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.User, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type users struct {
	gRepo.Repository[model.User]
}

func New(db *postgres.Connection, otel otel.Otel) User {
	return &users{
		Repository: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// Insert reports a lost race on the case-insensitive email index the same way
// the registration pre-check does.
func (r *users) Insert(ctx context.Context, user model.User) error {
	err := r.Repository.Insert(ctx, user)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == constant.PqErrorCodeUniqueViolation {
		return model.ErrEmailRegistered
	}

	return err //nolint:wrapcheck
}
