package model

import (
	"context"

	"driveease/shared/constant"
)

// Requester is the authenticated caller of a booking operation.
type Requester struct {
	ID   string
	Role string
}

func (r Requester) IsAdmin() bool {
	return r.Role == constant.RoleAdmin || r.Role == constant.RoleSuperAdmin
}

// CanAccess reports whether the requester may read or cancel the booking.
func (r Requester) CanAccess(b *Booking) bool {
	return r.IsAdmin() || b.IsOwnedBy(r.ID)
}

// RequesterFromContext reads the caller placed on the context by the auth
// middleware.
func RequesterFromContext(ctx context.Context) Requester {
	id, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return Requester{ID: id, Role: role}
}
