package validator_test

import (
	"bytes"
	"mime/multipart"
	"strings"
	"testing"

	"driveease/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingRequest struct {
	CarID      string `json:"car_id"      validate:"required,uuid"`
	PickupDate string `json:"pickup_date" validate:"required,isodate"`
	DropDate   string `json:"drop_date"   validate:"required,isodate"`
	Email      string `json:"email"       validate:"omitempty,email"`
	Status     string `json:"status"      validate:"omitempty,oneof=confirmed cancelled completed rejected"`
}

const carID = "8b2f1f5e-3c1a-4d59-9a55-3f7c2b1e9d10"

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		data    bookingRequest
		wantErr string
	}{
		{
			name: "valid request",
			data: bookingRequest{CarID: carID, PickupDate: "2024-06-10", DropDate: "2024-06-12"},
		},
		{
			name:    "missing car",
			data:    bookingRequest{PickupDate: "2024-06-10", DropDate: "2024-06-12"},
			wantErr: "CarID is required",
		},
		{
			name:    "car id is not a uuid",
			data:    bookingRequest{CarID: "car-1", PickupDate: "2024-06-10", DropDate: "2024-06-12"},
			wantErr: "CarID must be a valid UUID",
		},
		{
			name:    "pickup with time of day",
			data:    bookingRequest{CarID: carID, PickupDate: "2024-06-10T10:00:00Z", DropDate: "2024-06-12"},
			wantErr: "PickupDate must be a date in YYYY-MM-DD format",
		},
		{
			name:    "impossible drop date",
			data:    bookingRequest{CarID: carID, PickupDate: "2024-06-10", DropDate: "2024-02-30"},
			wantErr: "DropDate must be a date in YYYY-MM-DD format",
		},
		{
			name:    "invalid email",
			data:    bookingRequest{CarID: carID, PickupDate: "2024-06-10", DropDate: "2024-06-12", Email: "renter"},
			wantErr: "Email must be a valid email address",
		},
		{
			name:    "pending is not an admin target",
			data:    bookingRequest{CarID: carID, PickupDate: "2024-06-10", DropDate: "2024-06-12", Status: "pending"},
			wantErr: "Status must be one of confirmed cancelled completed rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name    string
		field   any
		tag     string
		wantErr bool
	}{
		{name: "valid date", field: "2024-06-10", tag: "isodate"},
		{name: "invalid date", field: "10-06-2024", tag: "isodate", wantErr: true},
		{name: "valid email", field: "renter@driveease.in", tag: "email"},
		{name: "empty required string", field: "", tag: "required", wantErr: true},
		{name: "seats in range", field: 5, tag: "gte=2,lte=8"},
		{name: "seats out of range", field: 12, tag: "gte=2,lte=8", wantErr: true},
		{name: "mobile number", field: "9876543210", tag: "phone"},
		{name: "mobile number with country code", field: "+919876543210", tag: "phone", wantErr: true},
		{name: "landline prefix", field: "2212345678", tag: "phone", wantErr: true},
		{name: "strong password", field: "Secret123", tag: "password"},
		{name: "password without digit", field: "SecretPass", tag: "password", wantErr: true},
		{name: "password without uppercase", field: "secret123", tag: "password", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			assert.Equal(t, tt.wantErr, err != nil, "error: %v", err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		jsonBody string
		wantErr  bool
	}{
		{
			name:     "valid body",
			jsonBody: `{"car_id":"` + carID + `","pickup_date":"2024-06-10","drop_date":"2024-06-12"}`,
		},
		{
			name:     "invalid field",
			jsonBody: `{"car_id":"` + carID + `","pickup_date":"tomorrow","drop_date":"2024-06-12"}`,
			wantErr:  true,
		},
		{
			name:     "malformed body",
			jsonBody: `{"car_id":}`,
			wantErr:  true,
		},
		{
			name:     "empty body",
			jsonBody: `{}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data bookingRequest

			err := validator.Validate(strings.NewReader(tt.jsonBody), &data)

			assert.Equal(t, tt.wantErr, err != nil, "error: %v", err)
		})
	}
}

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func uploads(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for name, content := range files {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)

		_, err = part.Write(content)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)

	return form.File["images"]
}

func TestValidateUploads(t *testing.T) {
	allowed := []string{"image/png", "image/jpeg", "image/webp"}

	t.Run("png accepted", func(t *testing.T) {
		files := uploads(t, map[string][]byte{"front.png": pngHeader})

		assert.NoError(t, validator.ValidateUploads(files, 1<<20, allowed...))
	})

	t.Run("text renamed to png rejected", func(t *testing.T) {
		files := uploads(t, map[string][]byte{"front.png": []byte("just some text")})

		err := validator.ValidateUploads(files, 1<<20, allowed...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported type")
	})

	t.Run("oversized rejected", func(t *testing.T) {
		files := uploads(t, map[string][]byte{"big.png": append(pngHeader, make([]byte, 2<<20)...)})

		err := validator.ValidateUploads(files, 1<<20, allowed...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds the 1 MB limit")
	})

	t.Run("no files", func(t *testing.T) {
		assert.NoError(t, validator.ValidateUploads(nil, 1<<20, allowed...))
	})
}
