package permissions

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	data := Get()
	require.NotNil(t, data)

	t.Run("public catalog routes skip auth", func(t *testing.T) {
		assert.True(t, data.FindPermissions("/v1/cars", http.MethodGet).Skip)
		assert.True(t, data.FindPermissions("/v1/cars/{id}/availability", http.MethodGet).Skip)
		assert.True(t, data.FindPermissions("/v1/auth/login", http.MethodPost).Skip)
	})

	t.Run("booking routes admit renters", func(t *testing.T) {
		permission := data.FindPermissions("/v1/bookings/", http.MethodPost)

		assert.False(t, permission.Skip)
		assert.True(t, permission.Allows("user"))
		assert.True(t, permission.Allows("admin"))
	})

	t.Run("logout needs a signed in caller", func(t *testing.T) {
		permission := data.FindPermissions("/v1/auth/logout", http.MethodPost)

		assert.False(t, permission.Skip)
		assert.True(t, permission.Allows("user"))
		assert.True(t, permission.Allows("superadmin"))
	})

	t.Run("admin routes refuse renters", func(t *testing.T) {
		permission := data.FindPermissions("/v1/admin/bookings/{id}/status", http.MethodPatch)

		assert.False(t, permission.Skip)
		assert.False(t, permission.Allows("user"))
		assert.True(t, permission.Allows("admin"))
	})

	t.Run("unknown route requires auth only", func(t *testing.T) {
		permission := data.FindPermissions("/v1/unknown", http.MethodGet)

		assert.False(t, permission.Skip)
		assert.True(t, permission.Allows("user"))
	})
}

func TestParseInvalid(t *testing.T) {
	assert.Nil(t, parse([]byte("{")))
}

func TestParseDuplicateKeepsFirst(t *testing.T) {
	data := parse([]byte(`{"endpoints": [
		{"path": "/v1/cars/", "method": "get", "skip": true},
		{"path": "/v1/cars", "method": "GET", "permissions": ["admin"]}
	]}`))

	permission := data.FindPermissions("/v1/cars", http.MethodGet)

	assert.True(t, permission.Skip)
	assert.Empty(t, permission.Permissions)
}
