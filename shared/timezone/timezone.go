package timezone

import (
	"sync"
	"time"

	"driveease/config"
	"driveease/shared/constant"

	"github.com/rs/zerolog/log"
)

const fallbackZone = "UTC"

var (
	appLocation  *time.Location
	locationOnce sync.Once
)

func location() *time.Location {
	locationOnce.Do(func() {
		appLocation = load(config.Get().App.Timezone)
	})

	return appLocation
}

func load(name string) *time.Location {
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Unknown timezone, falling back to UTC")

		return time.UTC
	}

	log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")

	return loc
}

// Now is the current instant in the application timezone.
func Now() time.Time {
	return time.Now().In(location())
}

// ToAppTime moves t into the application timezone.
func ToAppTime(t time.Time) time.Time {
	return t.In(location())
}

// Location returns the application timezone.
func Location() *time.Location {
	return location()
}

// Format renders t in the application timezone.
func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// Today is the calendar date the application timezone is currently on, as
// midnight UTC. Rental dates are stored the same way, so the two compare directly.
func Today() time.Time {
	return DateOf(Now())
}

// DateOf keeps the calendar date t has in its own location and drops the rest.
func DateOf(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(constant.DateOnlyFormat, value) //nolint:wrapcheck
}

// Zone reports the configured zone name, UTC when none is set.
func Zone() string {
	if loc := location(); loc != nil {
		return loc.String()
	}

	return fallbackZone
}
