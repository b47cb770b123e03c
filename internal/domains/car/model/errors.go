package model

import "driveease/shared/failure"

var ErrNotFound = failure.NotFound("car not found")
