package dto

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"driveease/infras/s3"
	"driveease/internal/domains/car/model"
	"driveease/shared"
	gDto "driveease/shared/dto"
	gModel "driveease/shared/model"
	"driveease/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	MaxImages     = 5
	MaxImageBytes = 5 << 20

	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortNewest    = "newest"

	queryCity         = "city"
	queryBrand        = "brand"
	queryCategory     = "category"
	queryFuelType     = "fuel_type"
	queryTransmission = "transmission"
	querySeats        = "seats"
	queryMinPrice     = "min_price"
	queryMaxPrice     = "max_price"
	querySearch       = "search"
	querySort         = "sort"

	formName         = "name"
	formBrand        = "brand"
	formCategory     = "category"
	formCity         = "city"
	formPricePerDay  = "price_per_day"
	formFuelType     = "fuel_type"
	formTransmission = "transmission"
	formSeats        = "seats"
	formFeatures     = "features"
	formDescription  = "description"
	formIsAvailable  = "is_available"
	formMileage      = "mileage"
	formYear         = "year"
	FormImages       = "images"

	featureSeparator = ","
)

// ImageTypes are the formats accepted for car photos.
var ImageTypes = []string{"image/png", "image/jpeg", "image/webp"}

var sortColumns = map[string]struct{ column, dir string }{
	SortPriceAsc:  {model.FieldPricePerDay, gDto.SortDirAsc},
	SortPriceDesc: {model.FieldPricePerDay, gDto.SortDirDesc},
	SortRating:    {model.FieldRating, gDto.SortDirDesc},
	SortNewest:    {model.FieldCreatedAt, gDto.SortDirDesc},
}

// CarQuery holds the catalog filters of a list request.
type CarQuery struct {
	City         string
	Brand        string
	Category     string
	FuelType     string
	Transmission string
	Seats        int
	MinPrice     int64
	MaxPrice     int64
	Search       string
	Sort         string
}

func (q *CarQuery) FromRequest(r *http.Request) {
	query := r.URL.Query()

	q.City = strings.TrimSpace(query.Get(queryCity))
	q.Brand = strings.TrimSpace(query.Get(queryBrand))
	q.Category = strings.TrimSpace(query.Get(queryCategory))
	q.FuelType = strings.TrimSpace(query.Get(queryFuelType))
	q.Transmission = strings.TrimSpace(query.Get(queryTransmission))
	q.Search = strings.TrimSpace(query.Get(querySearch))
	q.Sort = query.Get(querySort)

	if seats, err := strconv.Atoi(query.Get(querySeats)); err == nil && seats > 0 {
		q.Seats = seats
	}

	if price, err := strconv.ParseInt(query.Get(queryMinPrice), 10, 64); err == nil && price > 0 {
		q.MinPrice = price
	}

	if price, err := strconv.ParseInt(query.Get(queryMaxPrice), 10, 64); err == nil && price > 0 {
		q.MaxPrice = price
	}
}

// Filter renders the query. Only available cars are listed unless
// includeUnavailable is set.
func (q *CarQuery) Filter(includeUnavailable bool) gDto.FilterGroup {
	filters := []any{}

	if !includeUnavailable {
		filters = append(filters, eq(model.FieldIsAvailable, true))
	}

	for _, attr := range [][2]string{
		{model.FieldCity, q.City},
		{model.FieldBrand, q.Brand},
		{model.FieldCategory, q.Category},
		{model.FieldFuelType, q.FuelType},
		{model.FieldTransmission, q.Transmission},
	} {
		if attr[1] != "" {
			filters = append(filters, eq(attr[0], attr[1]))
		}
	}

	if q.Seats > 0 {
		filters = append(filters, eq(model.FieldSeats, q.Seats))
	}

	if q.MinPrice > 0 {
		filters = append(filters, gDto.Filter{
			ArgName: "min_price", Field: model.FieldPricePerDay, Value: q.MinPrice,
			Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName,
		})
	}

	if q.MaxPrice > 0 {
		filters = append(filters, gDto.Filter{
			ArgName: "max_price", Field: model.FieldPricePerDay, Value: q.MaxPrice,
			Operator: gDto.FilterOperatorLessEq, Table: model.TableName,
		})
	}

	if q.Search != "" {
		filters = append(filters, gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{ArgName: "search_name", Field: model.FieldName, Value: q.Search, Operator: gDto.FilterOperatorLike, Table: model.TableName},
				gDto.Filter{ArgName: "search_brand", Field: model.FieldBrand, Value: q.Search, Operator: gDto.FilterOperatorLike, Table: model.TableName},
			},
		})
	}

	return gDto.FilterGroup{Filters: filters, Operator: gDto.FilterGroupOperatorAnd}
}

// Params replaces any client supplied ordering with a known column.
func (q *CarQuery) Params(params gDto.QueryParams) gDto.QueryParams {
	sort, ok := sortColumns[q.Sort]
	if !ok {
		sort = sortColumns[SortNewest]
	}

	params.SortBy = model.TableName + "." + sort.column
	params.SortDir = sort.dir

	return params
}

func eq(field string, value any) gDto.Filter {
	return gDto.Filter{Field: field, Value: value, Operator: gDto.FilterOperatorEq, Table: model.TableName}
}

type CreateCarRequest struct {
	Name         string                  `validate:"required,max=100"`
	Brand        string                  `validate:"required,max=50"`
	Category     string                  `validate:"required,oneof=Hatchback Sedan SUV Luxury Electric"`
	City         string                  `validate:"required,oneof=Delhi Mumbai Bengaluru Chennai Hyderabad Pune Chandigarh Jaipur Kolkata"`
	PricePerDay  int64                   `validate:"required,min=500"`
	FuelType     string                  `validate:"required,oneof=Petrol Diesel CNG Electric"`
	Transmission string                  `validate:"required,oneof=Manual Automatic"`
	Seats        int                     `validate:"required,min=2,max=8"`
	Features     []string                `validate:"omitempty,max=20,dive,max=50"`
	Description  string                  `validate:"omitempty,max=1000"`
	IsAvailable  *bool                   `validate:"omitempty"`
	Mileage      string                  `validate:"omitempty,max=20"`
	Year         int                     `validate:"omitempty,min=2000,max=2100"`
	Images       []*multipart.FileHeader `validate:"omitempty,max=5"`
	ImageFiles   []multipart.File        `validate:"-"`
}

// FromForm reads the request from an already parsed multipart form.
func (c *CreateCarRequest) FromForm(r *http.Request) {
	c.Name = strings.TrimSpace(r.FormValue(formName))
	c.Brand = strings.TrimSpace(r.FormValue(formBrand))
	c.Category = r.FormValue(formCategory)
	c.City = r.FormValue(formCity)
	c.PricePerDay, _ = strconv.ParseInt(r.FormValue(formPricePerDay), 10, 64)
	c.FuelType = r.FormValue(formFuelType)
	c.Transmission = r.FormValue(formTransmission)
	c.Seats, _ = shared.ParseInt(r.FormValue(formSeats))
	c.Features = splitFeatures(r.FormValue(formFeatures))
	c.Description = strings.TrimSpace(r.FormValue(formDescription))
	c.IsAvailable = shared.ParseOptionalBool(r.FormValue(formIsAvailable))
	c.Mileage = r.FormValue(formMileage)
	c.Year, _ = shared.ParseInt(r.FormValue(formYear))
	c.Images, c.ImageFiles = formImages(r)
}

func (c *CreateCarRequest) Files() []s3.File {
	return files(c.Images, c.ImageFiles)
}

func (c *CreateCarRequest) ToModel(user string, images []string) model.Car {
	available := true
	if c.IsAvailable != nil {
		available = *c.IsAvailable
	}

	return model.Car{
		ID:           uuid.NewString(),
		Name:         c.Name,
		Brand:        c.Brand,
		Category:     c.Category,
		City:         c.City,
		PricePerDay:  c.PricePerDay,
		FuelType:     c.FuelType,
		Transmission: c.Transmission,
		Seats:        c.Seats,
		Images:       pq.StringArray(images),
		Features:     pq.StringArray(c.Features),
		Rating:       model.DefaultRating,
		Description:  c.Description,
		IsAvailable:  available,
		Mileage:      c.Mileage,
		Year:         c.Year,
		Metadata:     gModel.NewMetadata(user, timezone.Now()),
	}
}

// UpdateCarRequest carries only the fields present in the form. New images
// are appended to the existing ones.
type UpdateCarRequest struct {
	Name         string                  `db:"name"          validate:"omitempty,max=100"`
	Brand        string                  `db:"brand"         validate:"omitempty,max=50"`
	Category     string                  `db:"category"      validate:"omitempty,oneof=Hatchback Sedan SUV Luxury Electric"`
	City         string                  `db:"city"          validate:"omitempty,oneof=Delhi Mumbai Bengaluru Chennai Hyderabad Pune Chandigarh Jaipur Kolkata"`
	PricePerDay  int64                   `db:"price_per_day" validate:"omitempty,min=500"`
	FuelType     string                  `db:"fuel_type"     validate:"omitempty,oneof=Petrol Diesel CNG Electric"`
	Transmission string                  `db:"transmission"  validate:"omitempty,oneof=Manual Automatic"`
	Seats        int                     `db:"seats"         validate:"omitempty,min=2,max=8"`
	Features     pq.StringArray          `db:"features"      validate:"omitempty,max=20,dive,max=50"`
	Description  string                  `db:"description"   validate:"omitempty,max=1000"`
	IsAvailable  *bool                   `db:"is_available"  validate:"omitempty"`
	Mileage      string                  `db:"mileage"       validate:"omitempty,max=20"`
	Year         int                     `db:"year"          validate:"omitempty,min=2000,max=2100"`
	Images       []*multipart.FileHeader `validate:"omitempty,max=5"`
	ImageFiles   []multipart.File        `validate:"-"`
}

func (u *UpdateCarRequest) FromForm(r *http.Request) {
	u.Name = strings.TrimSpace(r.FormValue(formName))
	u.Brand = strings.TrimSpace(r.FormValue(formBrand))
	u.Category = r.FormValue(formCategory)
	u.City = r.FormValue(formCity)
	u.PricePerDay, _ = strconv.ParseInt(r.FormValue(formPricePerDay), 10, 64)
	u.FuelType = r.FormValue(formFuelType)
	u.Transmission = r.FormValue(formTransmission)
	u.Seats, _ = shared.ParseInt(r.FormValue(formSeats))
	u.Description = strings.TrimSpace(r.FormValue(formDescription))
	u.IsAvailable = shared.ParseOptionalBool(r.FormValue(formIsAvailable))
	u.Mileage = r.FormValue(formMileage)
	u.Year, _ = shared.ParseInt(r.FormValue(formYear))
	u.Images, u.ImageFiles = formImages(r)

	if features := splitFeatures(r.FormValue(formFeatures)); len(features) > 0 {
		u.Features = features
	}
}

func (u *UpdateCarRequest) Files() []s3.File {
	return files(u.Images, u.ImageFiles)
}

func (u *UpdateCarRequest) IsEmpty() bool {
	return u.Name == "" && u.Brand == "" && u.Category == "" && u.City == "" && u.PricePerDay == 0 &&
		u.FuelType == "" && u.Transmission == "" && u.Seats == 0 && len(u.Features) == 0 &&
		u.Description == "" && u.IsAvailable == nil && u.Mileage == "" && u.Year == 0 && len(u.Images) == 0
}

type RemoveImageRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
}

type CarResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Brand        string   `json:"brand"`
	Category     string   `json:"category"`
	City         string   `json:"city"`
	PricePerDay  int64    `json:"price_per_day"`
	FuelType     string   `json:"fuel_type"`
	Transmission string   `json:"transmission"`
	Seats        int      `json:"seats"`
	Images       []string `json:"images"`
	Features     []string `json:"features"`
	Rating       float64  `json:"rating"`
	TotalRatings int      `json:"total_ratings"`
	Description  string   `json:"description"`
	IsAvailable  bool     `json:"is_available"`
	Mileage      string   `json:"mileage,omitempty"`
	Year         int      `json:"year,omitempty"`
	gDto.Metadata
}

func (r *CarResponse) FromModel(mod model.Car) {
	r.ID = mod.ID
	r.Name = mod.Name
	r.Brand = mod.Brand
	r.Category = mod.Category
	r.City = mod.City
	r.PricePerDay = mod.PricePerDay
	r.FuelType = mod.FuelType
	r.Transmission = mod.Transmission
	r.Seats = mod.Seats
	r.Images = nonNil(mod.Images)
	r.Features = nonNil(mod.Features)
	r.Rating = mod.Rating
	r.TotalRatings = mod.TotalRatings
	r.Description = mod.Description
	r.IsAvailable = mod.IsAvailable
	r.Mileage = mod.Mileage
	r.Year = mod.Year
	r.Metadata.FromModel(mod.Metadata)
}

type GetCarsResponse struct {
	Cars      []CarResponse `json:"cars"`
	TotalPage int           `json:"total_page"`
	TotalData int           `json:"total_data"`
}

func (r *GetCarsResponse) FromModels(models []model.Car, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Cars = make([]CarResponse, len(models))
	for i, mod := range models {
		r.Cars[i].FromModel(mod)
	}
}

func splitFeatures(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	features := []string{}

	for feature := range strings.SplitSeq(value, featureSeparator) {
		if feature = strings.TrimSpace(feature); feature != "" {
			features = append(features, feature)
		}
	}

	return features
}

func formImages(r *http.Request) ([]*multipart.FileHeader, []multipart.File) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File[FormImages]
	files := make([]multipart.File, 0, len(headers))
	opened := make([]*multipart.FileHeader, 0, len(headers))

	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			continue
		}

		opened = append(opened, header)
		files = append(files, file)
	}

	return opened, files
}

func files(headers []*multipart.FileHeader, bodies []multipart.File) []s3.File {
	out := make([]s3.File, 0, len(headers))
	for i := range min(len(headers), len(bodies)) {
		out = append(out, s3.File{Header: headers[i], Body: bodies[i]})
	}

	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
