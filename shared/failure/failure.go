package failure

import (
	"errors"
	"net/http"
)

// Failure is an error that carries the HTTP status it should be answered
// with. Kind optionally classifies it so callers can match with errors.Is
// regardless of the message.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"-"`
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

func (e *Failure) Error() string {
	return e.Message
}

// Is reports whether target is a Failure of the same kind. Failures without a
// kind only match themselves.
func (e *Failure) Is(target error) bool {
	var fail *Failure
	if !errors.As(target, &fail) {
		return false
	}

	if e.Kind == "" || fail.Kind == "" {
		return e == fail
	}

	return e.Kind == fail.Kind
}

// WithMessage returns a copy of the failure carrying a different message.
func (e *Failure) WithMessage(msg string) error {
	return &Failure{Code: e.Code, Message: msg, Kind: e.Kind}
}

// New returns a classified Failure.
func New(code int, kind, msg string) *Failure {
	return &Failure{Code: code, Message: msg, Kind: kind}
}

// BadRequest wraps err as a client error. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return &Failure{Code: http.StatusBadRequest, Message: err.Error()}
}

func BadRequestFromString(msg string) error {
	return &Failure{Code: http.StatusBadRequest, Message: msg}
}

func Unauthorized(msg string) error {
	return &Failure{Code: http.StatusUnauthorized, Message: msg}
}

// NotFound takes the client-facing message, usually naming the entity.
func NotFound(msg string) error {
	return &Failure{Code: http.StatusNotFound, Message: msg}
}

func Conflict(msg string) error {
	return &Failure{Code: http.StatusConflict, Message: msg}
}

// BadGateway reports a failing upstream such as the payment gateway. Its
// message is shown to clients, unlike other 5xx failures.
func BadGateway(msg string) error {
	return &Failure{Code: http.StatusBadGateway, Message: msg}
}

// GetCode returns the status of the Failure in err's chain, 500 when there is
// none.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the classification of err, empty for unclassified errors.
func GetKind(err error) string {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Kind
	}

	return ""
}
