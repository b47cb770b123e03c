package car

import (
	"mime/multipart"
	"net/http"

	"driveease/infras/otel"
	"driveease/internal/domains/car/model/dto"
	"driveease/internal/domains/car/service"
	"driveease/shared/constant"
	gDto "driveease/shared/dto"
	"driveease/shared/failure"
	"driveease/shared/validator"
	"driveease/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

var errCarNotFound = failure.NotFound("car")

type Handler struct {
	service service.Car
	otel    otel.Otel
}

func New(service service.Car, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router registers flat paths so that other handlers can add routes below
// /cars and /admin without mounting over these.
func (handler *Handler) Router(router chi.Router) {
	router.Get("/cars", handler.GetCars)
	router.Get("/cars/cities", handler.GetCities)
	router.Get("/cars/brands", handler.GetBrands)
	router.Get("/cars/{id}", handler.GetCarByID)

	router.Get("/admin/cars", handler.GetAllCars)
	router.Post("/admin/cars", handler.CreateCar)
	router.Patch("/admin/cars/{id}", handler.UpdateCar)
	router.Delete("/admin/cars/{id}", handler.DeleteCar)
	router.Delete("/admin/cars/{id}/image", handler.RemoveCarImage)
}

// GetCars lists the available cars of the catalog.
// @Summary Get cars
// @Description Browse available cars with filters, search, sorting and pagination.
// @Tags Car
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param city query string false "City"
// @Param brand query string false "Brand"
// @Param category query string false "Category"
// @Param fuel_type query string false "Fuel type"
// @Param transmission query string false "Transmission"
// @Param seats query int false "Seats"
// @Param min_price query int false "Minimum price per day"
// @Param max_price query int false "Maximum price per day"
// @Param search query string false "Search in name and brand"
// @Param sort query string false "price_asc, price_desc, rating or newest"
// @Success 200 {object} response.Data[dto.GetCarsResponse] "List of cars"
// @Failure 500 {object} response.Error
// @Router /v1/cars [get]
func (handler *Handler) GetCars(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetCars")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := dto.CarQuery{}
	query.FromRequest(r)

	cars, err := handler.service.GetAll(ctx, query, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get cars")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Cars retrieved successfully")

	response.WithJSON(w, http.StatusOK, cars)
}

// GetCities lists the cities cars can be picked up in.
// @Summary Get cities
// @Tags Car
// @Produce json
// @Success 200 {object} response.Data[[]string] "Cities"
// @Router /v1/cars/cities [get]
func (handler *Handler) GetCities(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetCities")
	defer scope.End()

	cities, err := handler.service.Cities(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get cities")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, cities)
}

// GetBrands lists the brands present in the catalog.
// @Summary Get brands
// @Tags Car
// @Produce json
// @Success 200 {object} response.Data[[]string] "Brands"
// @Router /v1/cars/brands [get]
func (handler *Handler) GetBrands(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBrands")
	defer scope.End()

	brands, err := handler.service.Brands(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get brands")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, brands)
}

// GetCarByID retrieves a car by its ID.
// @Summary Get a car by ID
// @Tags Car
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {object} response.Data[dto.CarResponse] "Car details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/cars/{id} [get]
func (handler *Handler) GetCarByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetCarByID")
	defer scope.End()

	id, ok := carID(r)
	if !ok {
		scope.TraceError(errCarNotFound)
		response.WithError(w, errCarNotFound)

		return
	}

	car, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("car_id", id).Msg("failed to get car by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Car retrieved successfully")

	response.WithJSON(w, http.StatusOK, car)
}

// GetAllCars lists every car, including unavailable ones.
// @Summary Get all cars
// @Tags Admin
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param search query string false "Search in name and brand"
// @Success 200 {object} response.Data[dto.GetCarsResponse] "List of cars"
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/cars [get]
// @Security BearerAuth
func (handler *Handler) GetAllCars(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAllCars")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := dto.CarQuery{}
	query.FromRequest(r)

	cars, err := handler.service.GetAllAdmin(ctx, query, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get cars")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, cars)
}

// CreateCar adds a car to the catalog.
// @Summary Create a car
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Model name"
// @Param brand formData string true "Brand"
// @Param category formData string true "Category"
// @Param city formData string true "City"
// @Param price_per_day formData integer true "Price per day"
// @Param fuel_type formData string true "Fuel type"
// @Param transmission formData string true "Transmission"
// @Param seats formData integer true "Seats"
// @Param features formData string false "Comma separated features"
// @Param description formData string false "Description"
// @Param is_available formData boolean false "Available for booking"
// @Param mileage formData string false "Mileage"
// @Param year formData integer false "Year"
// @Param images formData file false "Images, up to 5"
// @Success 201 {object} response.Data[dto.CarResponse] "Car created"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/cars [post]
// @Security BearerAuth
func (handler *Handler) CreateCar(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateCar")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(w, failure.BadRequest(err))

		return
	}

	req := dto.CreateCarRequest{}
	req.FromForm(r)

	defer closeAll(req.ImageFiles)

	if err := validateCarForm(&req, req.Images); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	car, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create car")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Car created successfully by user " + user)

	response.WithJSON(w, http.StatusCreated, car)
}

// UpdateCar updates the fields present in the form. New images are appended.
// @Summary Update a car
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Car ID"
// @Param name formData string false "Model name"
// @Param price_per_day formData integer false "Price per day"
// @Param is_available formData boolean false "Available for booking"
// @Param images formData file false "Images to append"
// @Success 200 {object} response.Data[dto.CarResponse] "Car updated"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/cars/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateCar")
	defer scope.End()

	id, ok := carID(r)
	if !ok {
		scope.TraceError(errCarNotFound)
		response.WithError(w, errCarNotFound)

		return
	}

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(w, failure.BadRequest(err))

		return
	}

	req := dto.UpdateCarRequest{}
	req.FromForm(r)

	defer closeAll(req.ImageFiles)

	if err := validateCarForm(&req, req.Images); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	car, err := handler.service.Update(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("car_id", id).Msg("failed to update car")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Car updated successfully by user " + user)

	response.WithJSON(w, http.StatusOK, car)
}

// DeleteCar removes a car that has no active bookings.
// @Summary Delete a car
// @Tags Admin
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {object} response.Message "Car deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/cars/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteCar")
	defer scope.End()

	id, ok := carID(r)
	if !ok {
		scope.TraceError(errCarNotFound)
		response.WithError(w, errCarNotFound)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("car_id", id).Msg("failed to delete car")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Car deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Car deleted successfully")
}

// RemoveCarImage detaches one image from a car and deletes it from storage.
// @Summary Remove a car image
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Car ID"
// @Param request body dto.RemoveImageRequest true "Image to remove"
// @Success 200 {object} response.Data[dto.CarResponse] "Car updated"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/cars/{id}/image [delete]
// @Security BearerAuth
func (handler *Handler) RemoveCarImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RemoveCarImage")
	defer scope.End()

	id, ok := carID(r)
	if !ok {
		scope.TraceError(errCarNotFound)
		response.WithError(w, errCarNotFound)

		return
	}

	req := dto.RemoveImageRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	car, err := handler.service.RemoveImage(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("car_id", id).Msg("failed to remove car image")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, car)
}

func carID(r *http.Request) (string, bool) {
	id := chi.URLParam(r, constant.RequestParamID)

	return id, validator.ValidateVar(id, "uuid") == nil
}

func closeAll(files []multipart.File) {
	for _, file := range files {
		if err := file.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close uploaded file")
		}
	}
}

func validateCarForm[T any](req *T, images []*multipart.FileHeader) error {
	if err := validator.ValidateStruct(req); err != nil {
		return err //nolint:wrapcheck
	}

	return validator.ValidateUploads(images, dto.MaxImageBytes, dto.ImageTypes...) //nolint:wrapcheck
}
