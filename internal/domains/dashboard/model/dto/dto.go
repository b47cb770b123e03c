package dto

import (
	bookingModel "driveease/internal/domains/booking/model"
	bookingDto "driveease/internal/domains/booking/model/dto"
	"driveease/internal/domains/dashboard/model"
)

type RentedCarResponse struct {
	CarID    string `json:"car_id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	City     string `json:"city"`
	Bookings int    `json:"bookings"`
}

type MonthlyRevenueResponse struct {
	Year     int   `json:"year"`
	Month    int   `json:"month"`
	Revenue  int64 `json:"revenue"`
	Bookings int   `json:"bookings"`
}

type StatsResponse struct {
	TotalUsers       int                          `json:"total_users"`
	TotalCars        int                          `json:"total_cars"`
	TotalBookings    int                          `json:"total_bookings"`
	TotalRevenue     int64                        `json:"total_revenue"`
	BookingsByStatus map[string]int               `json:"bookings_by_status"`
	RecentBookings   []bookingDto.BookingResponse `json:"recent_bookings"`
	MostRentedCar    *RentedCarResponse           `json:"most_rented_car"`
	MonthlyRevenue   []MonthlyRevenueResponse     `json:"monthly_revenue"`
}

func (s *StatsResponse) FromTotals(totals model.Totals) {
	s.TotalUsers = totals.Users
	s.TotalCars = totals.Cars
	s.TotalBookings = totals.Bookings
	s.TotalRevenue = totals.Revenue
}

// FromStatusCounts lists every booking status, including the ones without bookings.
func (s *StatsResponse) FromStatusCounts(counts []model.StatusCount) {
	s.BookingsByStatus = make(map[string]int, len(bookingModel.BookingStatuses))
	for _, status := range bookingModel.BookingStatuses {
		s.BookingsByStatus[status.String()] = 0
	}

	for _, count := range counts {
		s.BookingsByStatus[count.Status] = count.Count
	}
}

func (s *StatsResponse) FromRecent(details []bookingModel.BookingDetail) {
	s.RecentBookings = make([]bookingDto.BookingResponse, len(details))
	for i, detail := range details {
		s.RecentBookings[i].FromDetail(detail)
	}
}

func (s *StatsResponse) FromRentedCar(car *model.RentedCar) {
	if car == nil {
		s.MostRentedCar = nil

		return
	}

	s.MostRentedCar = &RentedCarResponse{
		CarID:    car.CarID,
		Name:     car.Name,
		Brand:    car.Brand,
		City:     car.City,
		Bookings: car.Bookings,
	}
}

func (s *StatsResponse) FromMonthlyRevenue(months []model.MonthlyRevenue) {
	s.MonthlyRevenue = make([]MonthlyRevenueResponse, len(months))
	for i, month := range months {
		s.MonthlyRevenue[i] = MonthlyRevenueResponse(month)
	}
}
