package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

// messages holds the client-facing text per validation tag. {field} and
// {param} are substituted from the failing field.
var messages = map[string]string{
	"required": "{field} is required",
	"email":    "{field} must be a valid email address",
	"uuid":     "{field} must be a valid UUID",
	"url":      "{field} must be a valid URL",
	"oneof":    "{field} must be one of {param}",
	"min":      "{field} must be greater than or equal to {param}",
	"gte":      "{field} must be greater than or equal to {param}",
	"max":      "{field} must be less than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"isodate":  "{field} must be a date in YYYY-MM-DD format",
	"phone":    "{field} must be a valid 10-digit Indian phone number",
	"password": "{field} must contain at least one uppercase, one lowercase, and one number",
}

// message reports the first validation failure that has a known text, falling
// back to the validator's own description.
func message(err error) string {
	var fieldErrs val.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	for _, fieldErr := range fieldErrs {
		tmpl, ok := messages[fieldErr.Tag()]
		if !ok {
			continue
		}

		return strings.NewReplacer("{field}", fieldErr.Field(), "{param}", fieldErr.Param()).Replace(tmpl)
	}

	return fieldErrs.Error()
}
