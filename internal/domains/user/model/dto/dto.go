package dto

import (
	"net/http"
	"strings"
	"time"

	"driveease/internal/domains/user/model"
	"driveease/shared"
	"driveease/shared/constant"
	gDto "driveease/shared/dto"
)

const (
	querySearch = "search"

	// DefaultUserLimit is the admin user list page size.
	DefaultUserLimit = 20
)

type UserResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     *string    `json:"phone_number,omitempty"`
	Role      string     `json:"role"`
	IsBlocked bool       `json:"is_blocked"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(mod model.User) {
	r.ID = mod.ID
	r.Name = mod.Name
	r.Email = mod.Email
	r.Phone = mod.Phone
	r.Role = mod.Role
	r.IsBlocked = mod.IsBlocked
	r.LastLogin = mod.LastLogin
	r.Metadata.FromModel(mod.Metadata)
}

type UpdateProfileRequest struct {
	Name  *string `db:"name"         json:"name,omitempty"         validate:"omitempty,min=2,max=50"`
	Phone *string `db:"phone_number" json:"phone_number,omitempty" validate:"omitempty,phone"`
}

func (r *UpdateProfileRequest) IsEmpty() bool {
	return r.Name == nil && r.Phone == nil
}

type BlockStatusResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// UserQuery filters the admin user list. Only renters are listed.
type UserQuery struct {
	Search string
}

func (q *UserQuery) FromRequest(r *http.Request) {
	q.Search = strings.TrimSpace(r.URL.Query().Get(querySearch))
}

func (q *UserQuery) Filter() gDto.FilterGroup {
	filters := []any{
		gDto.Filter{Field: model.FieldRole, Value: constant.RoleUser, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	}

	if q.Search != "" {
		filters = append(filters, gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{ArgName: "search_name", Field: model.FieldName, Value: q.Search, Operator: gDto.FilterOperatorLike, Table: model.TableName},
				gDto.Filter{ArgName: "search_email", Field: model.FieldEmail, Value: q.Search, Operator: gDto.FilterOperatorLike, Table: model.TableName},
			},
		})
	}

	return gDto.FilterGroup{Filters: filters, Operator: gDto.FilterGroupOperatorAnd}
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	Page      int            `json:"page"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData int, params gDto.QueryParams) {
	r.TotalData = totalData
	r.Page = params.Page
	r.TotalPage = shared.CalculateTotalPage(totalData, params.Limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}
