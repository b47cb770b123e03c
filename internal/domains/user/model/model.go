package model

import (
	"time"

	"driveease/shared/constant"
	"driveease/shared/model"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID        = "id"
	FieldName      = "name"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldPhone     = "phone_number"
	FieldRole      = "role"
	FieldIsBlocked = "is_blocked"
	FieldLastLogin = "last_login"
	FieldCreatedAt = "created_at"
)

type User struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	Email     string     `db:"email"`
	Password  string     `db:"password"`
	Phone     *string    `db:"phone_number"`
	Role      string     `db:"role"`
	IsBlocked bool       `db:"is_blocked"`
	LastLogin *time.Time `db:"last_login"`
	model.Metadata
}

func (u *User) IsAdmin() bool {
	return u.Role == constant.RoleAdmin || u.Role == constant.RoleSuperAdmin
}
