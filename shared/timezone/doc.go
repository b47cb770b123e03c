// Package timezone anchors wall-clock time to the configured APP_TIMEZONE.
//
// Instants (created_at, paid_at, cancelled_at) are taken with Now and rendered
// with Format. Rental dates are calendar dates with no time of day: they are
// parsed with ParseDate, compared against Today, and always carried as
// midnight UTC so that date arithmetic never crosses a DST boundary.
package timezone
