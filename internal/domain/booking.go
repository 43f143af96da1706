package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusActive    BookingStatus = "ACTIVE"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// IsTerminal reports whether no further lifecycle transition is permitted.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// HoldingStatuses are the statuses that hold a car's calendar. Only bookings
// in one of these states participate in the overlap check.
func HoldingStatuses() []BookingStatus {
	return []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusActive}
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type FuelLevel string

const (
	FuelLevelEmpty        FuelLevel = "EMPTY"
	FuelLevelQuarter      FuelLevel = "QUARTER"
	FuelLevelHalf         FuelLevel = "HALF"
	FuelLevelThreeQuarter FuelLevel = "THREE_QUARTER"
	FuelLevelFull         FuelLevel = "FULL"
)

type Booking struct {
	ID         int32     `json:"id"`
	Reference  string    `json:"reference"`
	CustomerID int32     `json:"customer_id"`
	CarID      int32     `json:"car_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	PickupTime string    `json:"pickup_time"`
	TotalDays  int32     `json:"total_days"`
	// Price snapshot fields — copied from the car at booking creation time.
	// Later car price changes never alter an existing booking.
	PricePerDayCents int64 `json:"price_per_day_cents"`
	TotalPriceCents  int64 `json:"total_price_cents"`

	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	Purpose             string `json:"purpose,omitempty"`
	SpecialRequirements string `json:"special_requirements,omitempty"`
	PickupLocation      string `json:"pickup_location"`
	ReturnLocation      string `json:"return_location"`
	DriverLicense       string `json:"driver_license,omitempty"`

	ActualPickupDate *time.Time `json:"actual_pickup_date,omitempty"`
	ActualReturnDate *time.Time `json:"actual_return_date,omitempty"`
	MileageAtPickup  *int32     `json:"mileage_at_pickup,omitempty"`
	MileageAtReturn  *int32     `json:"mileage_at_return,omitempty"`
	FuelAtPickup     FuelLevel  `json:"fuel_at_pickup,omitempty"`
	FuelAtReturn     FuelLevel  `json:"fuel_at_return,omitempty"`
	PickupNotes      string     `json:"pickup_notes,omitempty"`
	ReturnNotes      string     `json:"return_notes,omitempty"`
	DamageReported   bool       `json:"damage_reported"`

	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledBy        *int32     `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// BookingStats is the admin dashboard aggregate.
type BookingStats struct {
	TotalBookings     int32 `json:"total_bookings"`
	PendingBookings   int32 `json:"pending_bookings"`
	ActiveBookings    int32 `json:"active_bookings"`
	CompletedBookings int32 `json:"completed_bookings"`
	CancelledBookings int32 `json:"cancelled_bookings"`
	// Revenue counts completed bookings whose payment status is PAID.
	TotalRevenueCents int64 `json:"total_revenue_cents"`
}
