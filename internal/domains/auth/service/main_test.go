package service_test

import (
	"testing"

	"driveease/config/configtest"
)

func TestMain(m *testing.M) {
	configtest.Main(m)
}
