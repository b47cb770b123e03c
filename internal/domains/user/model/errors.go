package model

import (
	"net/http"

	"driveease/shared/failure"
)

const (
	KindNotFound     = "user_not_found"
	KindBlocked      = "user_blocked"
	KindAdminBlocked = "admin_block_refused"
)

var (
	ErrNotFound          = failure.New(http.StatusNotFound, KindNotFound, "User not found")
	ErrBlocked           = failure.New(http.StatusForbidden, KindBlocked, "Your account has been blocked. Contact support.")
	ErrCannotBlockAdmin  = failure.New(http.StatusBadRequest, KindAdminBlocked, "Cannot block an admin")
	ErrEmailRegistered   = failure.BadRequestFromString("Email already registered")
	ErrInvalidCredential = failure.Unauthorized("Invalid email or password")
)
