//go:build wireinject
// +build wireinject

package di

import (
	"driveease/config"
	"driveease/infras/jwt"
	"driveease/infras/kafka"
	"driveease/infras/otel"
	"driveease/infras/payment"
	"driveease/infras/postgres"
	"driveease/infras/redis"
	"driveease/infras/s3"
	"driveease/permissions"
	"driveease/shared/cache"
	"driveease/shared/lock"
	"driveease/transport/http"
	"driveease/transport/http/middleware"
	"driveease/transport/http/router"

	authService "driveease/internal/domains/auth/service"
	bookingRepository "driveease/internal/domains/booking/repository"
	bookingService "driveease/internal/domains/booking/service"
	carRepository "driveease/internal/domains/car/repository"
	carService "driveease/internal/domains/car/service"
	dashboardRepository "driveease/internal/domains/dashboard/repository"
	dashboardService "driveease/internal/domains/dashboard/service"
	notificationService "driveease/internal/domains/notification/service"
	userRepository "driveease/internal/domains/user/repository"
	userService "driveease/internal/domains/user/service"

	authHandler "driveease/internal/handlers/auth"
	bookingHandler "driveease/internal/handlers/booking"
	carHandler "driveease/internal/handlers/car"
	dashboardHandler "driveease/internal/handlers/dashboard"
	paymentHandler "driveease/internal/handlers/payment"
	userHandler "driveease/internal/handlers/user"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
	payment.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	lock.NewRedisLocker,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
	authService.New,
)

var carDomain = wire.NewSet(
	carRepository.New,
	carService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	notificationService.New,
	bookingService.New,
	bookingService.NewPayment,
)

var dashboardDomain = wire.NewSet(
	dashboardRepository.New,
	dashboardService.New,
)

var domains = wire.NewSet(
	userDomain,
	carDomain,
	bookingDomain,
	dashboardDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	carHandler.New,
	bookingHandler.New,
	paymentHandler.New,
	userHandler.New,
	dashboardHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
