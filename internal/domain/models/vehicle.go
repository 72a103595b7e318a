package models

import (
	"time"

	"locacar/internal/domain"

	"github.com/shopspring/decimal"
)

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "AVAILABLE"
	VehicleRented      VehicleStatus = "RENTED"
	VehicleMaintenance VehicleStatus = "MAINTENANCE"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleAvailable, VehicleRented, VehicleMaintenance:
		return true
	}
	return false
}

type Category string

const (
	CategoryEconomy      Category = "ECONOMY"
	CategoryIntermediate Category = "INTERMEDIATE"
	CategoryExecutive    Category = "EXECUTIVE"
	CategoryLuxury       Category = "LUXURY"
	CategorySUV          Category = "SUV"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryEconomy, CategoryIntermediate, CategoryExecutive, CategoryLuxury, CategorySUV:
		return true
	}
	return false
}

type FuelType string

const (
	FuelGasoline FuelType = "GASOLINE"
	FuelEthanol  FuelType = "ETHANOL"
	FuelFlex     FuelType = "FLEX"
	FuelDiesel   FuelType = "DIESEL"
	FuelElectric FuelType = "ELECTRIC"
)

func (f FuelType) Valid() bool {
	switch f {
	case FuelGasoline, FuelEthanol, FuelFlex, FuelDiesel, FuelElectric:
		return true
	}
	return false
}

type Transmission string

const (
	TransmissionAutomatic Transmission = "AUTOMATIC"
	TransmissionManual    Transmission = "MANUAL"
)

func (t Transmission) Valid() bool {
	return t == TransmissionAutomatic || t == TransmissionManual
}

type Vehicle struct {
	ID           string          `json:"id"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	Year         int             `json:"year"`
	Color        string          `json:"color"`
	LicensePlate string          `json:"license_plate"`
	Category     Category        `json:"category"`
	DailyRate    decimal.Decimal `json:"daily_rate"`
	Mileage      int             `json:"mileage"`
	Status       VehicleStatus   `json:"status"`
	FuelType     FuelType        `json:"fuel_type"`
	Transmission Transmission    `json:"transmission"`
	Passengers   int             `json:"passengers"`
	Features     []string        `json:"features"`
	Images       []string        `json:"images"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// VehicleInput is used for create and full replace.
type VehicleInput struct {
	Brand        string          `json:"brand" binding:"required,max=50"`
	Model        string          `json:"model" binding:"required,max=50"`
	Year         int             `json:"year" binding:"required,min=1900,max=2100"`
	Color        string          `json:"color" binding:"required,max=30"`
	LicensePlate string          `json:"license_plate" binding:"required,plate"`
	Category     Category        `json:"category"`
	DailyRate    decimal.Decimal `json:"daily_rate"`
	Mileage      int             `json:"mileage" binding:"min=0"`
	Status       VehicleStatus   `json:"status"`
	FuelType     FuelType        `json:"fuel_type"`
	Transmission Transmission    `json:"transmission"`
	Passengers   int             `json:"passengers"`
	Features     []string        `json:"features"`
	Images       []string        `json:"images"`
}

type VehiclePatch struct {
	Brand        domain.Field[string]          `json:"brand"`
	Model        domain.Field[string]          `json:"model"`
	Year         domain.Field[int]             `json:"year"`
	Color        domain.Field[string]          `json:"color"`
	LicensePlate domain.Field[string]          `json:"license_plate"`
	Category     domain.Field[Category]        `json:"category"`
	DailyRate    domain.Field[decimal.Decimal] `json:"daily_rate"`
	Mileage      domain.Field[int]             `json:"mileage"`
	Status       domain.Field[VehicleStatus]   `json:"status"`
	FuelType     domain.Field[FuelType]        `json:"fuel_type"`
	Transmission domain.Field[Transmission]    `json:"transmission"`
	Passengers   domain.Field[int]             `json:"passengers"`
	Features     domain.Field[[]string]        `json:"features"`
	Images       domain.Field[[]string]        `json:"images"`
}

// Apply merges the present fields into v.
func (p VehiclePatch) Apply(v *Vehicle) {
	p.Brand.Apply(&v.Brand)
	p.Model.Apply(&v.Model)
	p.Year.Apply(&v.Year)
	p.Color.Apply(&v.Color)
	p.LicensePlate.Apply(&v.LicensePlate)
	p.Category.Apply(&v.Category)
	p.DailyRate.Apply(&v.DailyRate)
	p.Mileage.Apply(&v.Mileage)
	p.Status.Apply(&v.Status)
	p.FuelType.Apply(&v.FuelType)
	p.Transmission.Apply(&v.Transmission)
	p.Passengers.Apply(&v.Passengers)
	p.Features.Apply(&v.Features)
	p.Images.Apply(&v.Images)
}

type VehicleFilter struct {
	Status   VehicleStatus
	Category Category
}
