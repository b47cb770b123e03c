package model

import (
	"slices"

	"driveease/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "cars"
	EntityName = "car"

	FieldID           = "id"
	FieldName         = "name"
	FieldBrand        = "brand"
	FieldCategory     = "category"
	FieldCity         = "city"
	FieldPricePerDay  = "price_per_day"
	FieldFuelType     = "fuel_type"
	FieldTransmission = "transmission"
	FieldSeats        = "seats"
	FieldImages       = "images"
	FieldFeatures     = "features"
	FieldRating       = "rating"
	FieldIsAvailable  = "is_available"
	FieldCreatedAt    = "created_at"
)

const (
	DefaultRating = 4.0
	MinPrice      = 500
)

var (
	Brands        = []string{"Maruti Suzuki", "Hyundai", "Tata", "Mahindra", "Kia", "Toyota", "Honda", "MG", "Volkswagen", "Skoda", "BMW", "Mercedes-Benz", "Audi"}
	Categories    = []string{"Hatchback", "Sedan", "SUV", "Luxury", "Electric"}
	Cities        = []string{"Delhi", "Mumbai", "Bengaluru", "Chennai", "Hyderabad", "Pune", "Chandigarh", "Jaipur", "Kolkata"}
	FuelTypes     = []string{"Petrol", "Diesel", "CNG", "Electric"}
	Transmissions = []string{"Manual", "Automatic"}
)

type Car struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Brand        string         `db:"brand"`
	Category     string         `db:"category"`
	City         string         `db:"city"`
	PricePerDay  int64          `db:"price_per_day"`
	FuelType     string         `db:"fuel_type"`
	Transmission string         `db:"transmission"`
	Seats        int            `db:"seats"`
	Images       pq.StringArray `db:"images"`
	Features     pq.StringArray `db:"features"`
	Rating       float64        `db:"rating"`
	TotalRatings int            `db:"total_ratings"`
	Description  string         `db:"description"`
	IsAvailable  bool           `db:"is_available"`
	Mileage      string         `db:"mileage"`
	Year         int            `db:"year"`
	model.Metadata
}

// DisplayName is how the car is named to renters, e.g. "Hyundai Creta".
func (c *Car) DisplayName() string {
	if c.Brand == "" {
		return c.Name
	}

	return c.Brand + " " + c.Name
}

func (c *Car) HasImage(url string) bool {
	return slices.Contains(c.Images, url)
}

// WithoutImage returns the images minus url, keeping their order.
func (c *Car) WithoutImage(url string) pq.StringArray {
	images := make(pq.StringArray, 0, len(c.Images))

	for _, image := range c.Images {
		if image != url {
			images = append(images, image)
		}
	}

	return images
}
