package user

import (
	"net/http"

	"driveease/infras/otel"
	"driveease/internal/domains/user/model/dto"
	"driveease/internal/domains/user/service"
	"driveease/shared/constant"
	gDto "driveease/shared/dto"
	"driveease/shared/failure"
	"driveease/shared/validator"
	"driveease/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.User
	otel    otel.Otel
}

func New(service service.User, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/admin/users", handler.GetUsers)
	router.Patch("/admin/users/{id}/block", handler.ToggleBlock)
}

// GetUsers lists users for administrators.
// @Summary Get users
// @Tags Admin
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param search query string false "Search in name and email"
// @Success 200 {object} response.Data[dto.GetUsersResponse] "List of users"
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/users [get]
// @Security BearerAuth
func (handler *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUsers")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := dto.UserQuery{}
	query.FromRequest(r)

	users, err := handler.service.GetAll(ctx, query, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get users")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Users retrieved successfully")

	response.WithJSON(w, http.StatusOK, users)
}

// ToggleBlock blocks or unblocks a user. Administrators cannot be blocked.
// @Summary Toggle user block
// @Tags Admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Data[dto.BlockStatusResponse] "New block status"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/users/{id}/block [patch]
// @Security BearerAuth
func (handler *Handler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ToggleBlock")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := validator.ValidateVar(id, "uuid"); err != nil {
		err = failure.NotFound("user")
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.ToggleBlock(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("user_id", id).Msg("failed to toggle user block")

		response.WithError(w, err)

		return
	}

	admin, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent(res.Message + " by user " + admin)

	response.WithJSON(w, http.StatusOK, res)
}
