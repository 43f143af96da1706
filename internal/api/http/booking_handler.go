package http

import (
	"net/http"
	"strconv"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
	"carrental-backend/internal/utils"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

type createBookingRequest struct {
	CustomerID          int32  `json:"customer_id"`
	CarID               int32  `json:"car_id" validate:"required"`
	StartDate           string `json:"start_date" validate:"required"`
	EndDate             string `json:"end_date" validate:"required"`
	PickupTime          string `json:"pickup_time"`
	Purpose             string `json:"purpose"`
	SpecialRequirements string `json:"special_requirements"`
	PickupLocation      string `json:"pickup_location"`
	ReturnLocation      string `json:"return_location"`
	DriverLicense       string `json:"driver_license"`
}

type pickupRequest struct {
	Mileage   int32  `json:"mileage" validate:"gte=0"`
	FuelLevel string `json:"fuel_level" validate:"omitempty,oneof=EMPTY QUARTER HALF THREE_QUARTER FULL"`
	Notes     string `json:"notes"`
}

type returnRequest struct {
	Mileage        int32  `json:"mileage" validate:"gte=0"`
	FuelLevel      string `json:"fuel_level" validate:"omitempty,oneof=EMPTY QUARTER HALF THREE_QUARTER FULL"`
	Notes          string `json:"notes"`
	DamageReported bool   `json:"damage_reported"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type paymentRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=PENDING PAID REFUNDED"`
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	var req createBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	booking, err := h.bookingSvc.CreateBooking(r.Context(), actor, service.CreateBookingInput{
		CustomerID:          req.CustomerID,
		CarID:               req.CarID,
		StartDate:           start,
		EndDate:             end,
		PickupTime:          req.PickupTime,
		Purpose:             req.Purpose,
		SpecialRequirements: req.SpecialRequirements,
		PickupLocation:      req.PickupLocation,
		ReturnLocation:      req.ReturnLocation,
		DriverLicense:       req.DriverLicense,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// CheckAvailability answers an unlocked advisory check for the given car and
// date range. Registered before the /{id} routes so "availability" is not
// parsed as an id.
func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	carID, err := strconv.ParseInt(q.Get("car_id"), 10, 32)
	if err != nil || carID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "car_id query parameter is required"})
		return
	}
	start, err := utils.ParseDate(q.Get("start_date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	end, err := utils.ParseDate(q.Get("end_date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var excludeID int32
	if v := q.Get("exclude_booking_id"); v != "" {
		parsed, _ := strconv.ParseInt(v, 10, 32)
		excludeID = int32(parsed)
	}

	available, err := h.bookingSvc.CheckAvailability(r.Context(), int32(carID), start, end, excludeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Available: available})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.bookingSvc.GetBooking(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// List returns the actor's own bookings, or every booking for admins.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	status := domain.BookingStatus(r.URL.Query().Get("status"))
	page, pageSize := pagination(r)

	bookings, total, err := h.bookingSvc.ListBookings(r.Context(), actor, status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: bookings, Total: total, Page: page})
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.bookingSvc.ConfirmBooking(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req pickupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.bookingSvc.StartRental(r.Context(), actor, id, service.PickupDetails{
		Mileage:   req.Mileage,
		FuelLevel: domain.FuelLevel(req.FuelLevel),
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Return(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req returnRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.bookingSvc.CompleteRental(r.Context(), actor, id, service.ReturnDetails{
		Mileage:        req.Mileage,
		FuelLevel:      domain.FuelLevel(req.FuelLevel),
		Notes:          req.Notes,
		DamageReported: req.DamageReported,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req cancelRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.bookingSvc.CancelBooking(r.Context(), actor, id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req paymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.bookingSvc.UpdatePaymentStatus(r.Context(), actor, id, domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
