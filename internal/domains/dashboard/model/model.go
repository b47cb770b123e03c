package model

const (
	EntityName = "dashboard"

	// RecentBookingLimit is how many of the latest bookings the dashboard shows.
	RecentBookingLimit = 5
	// RevenueMonths bounds the monthly revenue series.
	RevenueMonths = 12
)

type Totals struct {
	Users    int   `db:"total_users"`
	Cars     int   `db:"total_cars"`
	Bookings int   `db:"total_bookings"`
	Revenue  int64 `db:"total_revenue"`
}

type StatusCount struct {
	Status string `db:"booking_status"`
	Count  int    `db:"count"`
}

type RentedCar struct {
	CarID    string `db:"car_id"`
	Name     string `db:"name"`
	Brand    string `db:"brand"`
	City     string `db:"city"`
	Bookings int    `db:"bookings"`
}

type MonthlyRevenue struct {
	Year     int   `db:"year"`
	Month    int   `db:"month"`
	Revenue  int64 `db:"revenue"`
	Bookings int   `db:"bookings"`
}
