package domain

import "time"

type CarStatus string

const (
	CarStatusAvailable   CarStatus = "AVAILABLE"
	CarStatusBooked      CarStatus = "BOOKED"
	CarStatusMaintenance CarStatus = "MAINTENANCE"
)

type Transmission string

const (
	TransmissionManual        Transmission = "MANUAL"
	TransmissionAutomatic     Transmission = "AUTOMATIC"
	TransmissionSemiAutomatic Transmission = "SEMI_AUTOMATIC"
)

type FuelType string

const (
	FuelTypePetrol   FuelType = "PETROL"
	FuelTypeDiesel   FuelType = "DIESEL"
	FuelTypeElectric FuelType = "ELECTRIC"
	FuelTypeHybrid   FuelType = "HYBRID"
)

type Car struct {
	ID               int32        `json:"id"`
	Brand            string       `json:"brand"`
	Model            string       `json:"model"`
	Year             int32        `json:"year"`
	Transmission     Transmission `json:"transmission"`
	FuelType         FuelType     `json:"fuel_type"`
	SeatingCapacity  int32        `json:"seating_capacity"`
	PricePerDayCents int64        `json:"price_per_day_cents"`
	Status           CarStatus    `json:"status"`
	Color            string       `json:"color"`
	PlateNumber      string       `json:"plate_number"`
	Mileage          int32        `json:"mileage"`
	Description      string       `json:"description"`
	CreatedOn        time.Time    `json:"created_on"`
	UpdatedOn        time.Time    `json:"updated_on"`
}

// CarFilter narrows catalog listings. Zero values mean "no filter".
type CarFilter struct {
	Brand         string
	FuelType      FuelType
	Transmission  Transmission
	MaxPriceCents int64
	Status        CarStatus
}
