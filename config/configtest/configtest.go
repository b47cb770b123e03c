// Package configtest seeds the settings config.Get refuses to start without,
// so packages that read the configuration can be tested without a .env file.
package configtest

import (
	"os"
	"testing"
)

var defaults = map[string]string{
	"JWT_ACCESS_SECRET":           "test-access-secret",
	"JWT_REFRESH_SECRET":          "test-refresh-secret",
	"EXTERNAL_PAYMENT_KEY_SECRET": "test-payment-secret",
}

// Main fills in missing required settings and runs the tests. Values already
// present in the environment are kept.
func Main(m *testing.M) {
	for name, value := range defaults {
		if _, ok := os.LookupEnv(name); !ok {
			_ = os.Setenv(name, value)
		}
	}

	os.Exit(m.Run())
}
