package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"driveease/infras/otel"
	"driveease/infras/postgres"
	bookingModel "driveease/internal/domains/booking/model"
	"driveease/internal/domains/dashboard/model"
	"driveease/shared/constant"
	"driveease/shared/logger"

	"github.com/lib/pq"
)

const (
	totalsQuery = `
SELECT
	(SELECT COUNT(id) FROM users WHERE role = $1) AS total_users,
	(SELECT COUNT(id) FROM cars) AS total_cars,
	(SELECT COUNT(id) FROM bookings) AS total_bookings,
	(SELECT COALESCE(SUM(total_amount), 0) FROM bookings WHERE payment_status = $2) AS total_revenue`

	statusQuery = `
SELECT booking_status, COUNT(id) AS count
FROM bookings
GROUP BY booking_status
ORDER BY booking_status`

	mostRentedQuery = `
SELECT cars.id AS car_id, cars.name, cars.brand, cars.city, COUNT(bookings.id) AS bookings
FROM bookings
JOIN cars ON cars.id = bookings.car_id
WHERE bookings.booking_status = ANY($1)
GROUP BY cars.id, cars.name, cars.brand, cars.city
ORDER BY bookings DESC, cars.name
LIMIT 1`

	monthlyRevenueQuery = `
SELECT
	EXTRACT(YEAR FROM created_at)::int AS year,
	EXTRACT(MONTH FROM created_at)::int AS month,
	COALESCE(SUM(total_amount), 0) AS revenue,
	COUNT(id) AS bookings
FROM bookings
WHERE payment_status = $1
GROUP BY 1, 2
ORDER BY 1 DESC, 2 DESC
LIMIT $2`
)

// rentedStatuses are the bookings that count towards a car's popularity.
var rentedStatuses = pq.StringArray{bookingModel.BookingStatusConfirmed.String(), bookingModel.BookingStatusCompleted.String()}

type Dashboard interface {
	Totals(ctx context.Context) (model.Totals, error)
	BookingsByStatus(ctx context.Context) ([]model.StatusCount, error)
	MostRentedCar(ctx context.Context) (*model.RentedCar, error)
	MonthlyRevenue(ctx context.Context, months int) ([]model.MonthlyRevenue, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Dashboard {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

func (r *repositoryImpl) Totals(ctx context.Context) (model.Totals, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".dashboard.Totals")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, totalsQuery)

	var totals model.Totals

	err := r.db.Read.GetContext(ctx, &totals, totalsQuery, constant.RoleUser, bookingModel.PaymentStatusPaid.String())
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return totals, fmt.Errorf("failed to get totals (%s): %w", model.EntityName, err)
	}

	return totals, nil
}

func (r *repositoryImpl) BookingsByStatus(ctx context.Context) ([]model.StatusCount, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".dashboard.BookingsByStatus")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, statusQuery)

	counts := []model.StatusCount{}

	if err := r.db.Read.SelectContext(ctx, &counts, statusQuery); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return counts, fmt.Errorf("failed to count bookings by status (%s): %w", model.EntityName, err)
	}

	return counts, nil
}

// MostRentedCar returns nil when no car has been rented yet.
func (r *repositoryImpl) MostRentedCar(ctx context.Context) (*model.RentedCar, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".dashboard.MostRentedCar")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, mostRentedQuery)

	var car model.RentedCar

	err := r.db.Read.GetContext(ctx, &car, mostRentedQuery, rentedStatuses)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get most rented car (%s): %w", model.EntityName, err)
	}

	return &car, nil
}

func (r *repositoryImpl) MonthlyRevenue(ctx context.Context, months int) ([]model.MonthlyRevenue, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".dashboard.MonthlyRevenue")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, monthlyRevenueQuery)

	revenue := []model.MonthlyRevenue{}

	err := r.db.Read.SelectContext(ctx, &revenue, monthlyRevenueQuery, bookingModel.PaymentStatusPaid.String(), months)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return revenue, fmt.Errorf("failed to get monthly revenue (%s): %w", model.EntityName, err)
	}

	return revenue, nil
}
