package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"regexp"
	"slices"
	"time"

	"driveease/shared/constant"
	"driveease/shared/failure"

	"github.com/gabriel-vasile/mimetype"
	val "github.com/go-playground/validator/v10"
)

var (
	validate *val.Validate

	phonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

// registerISODateValidation accepts calendar dates written as YYYY-MM-DD.
func registerISODateValidation(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := time.Parse(constant.DateOnlyFormat, value)

	return err == nil
}

// registerPhoneValidation accepts 10-digit mobile numbers starting with 6-9.
func registerPhoneValidation(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)

	return ok && phonePattern.MatchString(value)
}

// registerPasswordValidation requires a lowercase letter, an uppercase letter and a digit.
func registerPasswordValidation(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	var lower, upper, digit bool

	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}

	return lower && upper && digit
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	err := validate.RegisterValidation("isodate", registerISODateValidation)
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("empty", func(fl val.FieldLevel) bool {
		empty := fl.Field().IsZero()

		return empty
	})

	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("phone", registerPhoneValidation)
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("password", registerPasswordValidation)
	if err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

// ValidateUploads checks the size of each file and sniffs its leading bytes
// against the allowed MIME types. The client's Content-Type header is ignored.
func ValidateUploads(headers []*multipart.FileHeader, maxBytes int64, allowed ...string) error {
	for _, header := range headers {
		if header.Size > maxBytes {
			return failure.BadRequestFromString(fmt.Sprintf("%s exceeds the %d MB limit", header.Filename, maxBytes>>20)) //nolint:wrapcheck
		}

		detected, err := sniff(header)
		if err != nil {
			return failure.BadRequest(fmt.Errorf("failed to read %s: %w", header.Filename, err)) //nolint:wrapcheck
		}

		if !slices.ContainsFunc(allowed, detected.Is) {
			return failure.BadRequestFromString(fmt.Sprintf("%s has unsupported type %s", header.Filename, detected.String())) //nolint:wrapcheck
		}
	}

	return nil
}

func sniff(header *multipart.FileHeader) (*mimetype.MIME, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	defer file.Close()

	return mimetype.DetectReader(file) //nolint:wrapcheck
}
