package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

type CarHandler struct {
	carSvc service.CarService
}

func NewCarHandler(carSvc service.CarService) *CarHandler {
	return &CarHandler{carSvc: carSvc}
}

type carRequest struct {
	Brand            string `json:"brand" validate:"required"`
	Model            string `json:"model" validate:"required"`
	Year             int32  `json:"year" validate:"required,gte=1980"`
	Transmission     string `json:"transmission" validate:"omitempty,oneof=MANUAL AUTOMATIC SEMI_AUTOMATIC"`
	FuelType         string `json:"fuel_type" validate:"omitempty,oneof=PETROL DIESEL ELECTRIC HYBRID"`
	SeatingCapacity  int32  `json:"seating_capacity"`
	PricePerDayCents int64  `json:"price_per_day_cents" validate:"required,gt=0"`
	Color            string `json:"color"`
	PlateNumber      string `json:"plate_number" validate:"required"`
	Mileage          int32  `json:"mileage"`
	Description      string `json:"description"`
}

func (req *carRequest) toDomain() *domain.Car {
	return &domain.Car{
		Brand:            req.Brand,
		Model:            req.Model,
		Year:             req.Year,
		Transmission:     domain.Transmission(req.Transmission),
		FuelType:         domain.FuelType(req.FuelType),
		SeatingCapacity:  req.SeatingCapacity,
		PricePerDayCents: req.PricePerDayCents,
		Color:            req.Color,
		PlateNumber:      req.PlateNumber,
		Mileage:          req.Mileage,
		Description:      req.Description,
	}
}

type listResponse struct {
	Items any   `json:"items"`
	Total int32 `json:"total"`
	Page  int32 `json:"page"`
}

// List is public: browsing the catalog requires no account.
func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.CarFilter{
		Brand:        q.Get("brand"),
		FuelType:     domain.FuelType(q.Get("fuel_type")),
		Transmission: domain.Transmission(q.Get("transmission")),
		Status:       domain.CarStatus(q.Get("status")),
	}
	if v := q.Get("max_price_cents"); v != "" {
		filter.MaxPriceCents, _ = strconv.ParseInt(v, 10, 64)
	}
	page, pageSize := pagination(r)

	cars, total, err := h.carSvc.ListCars(r.Context(), filter, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: cars, Total: total, Page: page})
}

func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	car, err := h.carSvc.GetCar(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	var req carRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	car := req.toDomain()
	if err := h.carSvc.AddCar(r.Context(), actor, car); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, car)
}

func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req carRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	car := req.toDomain()
	car.ID = id
	if err := h.carSvc.UpdateCar(r.Context(), actor, car); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.carSvc.DeleteCar(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CarHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=AVAILABLE BOOKED MAINTENANCE"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.carSvc.SetCarStatus(r.Context(), actor, id, domain.CarStatus(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + name + " path parameter"})
		return 0, false
	}
	return int32(id), true
}

func pagination(r *http.Request) (page, pageSize int32) {
	page, pageSize = 1, 20
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}
