package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
)

// RouterDeps bundles everything the router needs; the mains construct it once.
type RouterDeps struct {
	Tokens          security.TokenManager
	AuthService     service.AuthService
	UserService     service.UserService
	CarService      service.CarService
	BookingService  service.BookingService
	NotificationSvc service.NotificationService
	IssueService    service.IssueService
	AdminService    service.AdminService
}

// NewRouter assembles the full API surface. Catalog reads and auth endpoints
// are public; everything else requires a valid access token. Admin-only
// enforcement lives in the services, keyed off the actor.
func NewRouter(deps RouterDeps) *mux.Router {
	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	carHandler := NewCarHandler(deps.CarService)
	bookingHandler := NewBookingHandler(deps.BookingService)
	noteHandler := NewNotificationHandler(deps.NotificationSvc)
	issueHandler := NewIssueHandler(deps.IssueService)
	adminHandler := NewAdminHandler(deps.AdminService)

	r := mux.NewRouter()
	r.Use(LoggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Public endpoints
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/cars", carHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/cars/{id:[0-9]+}", carHandler.Get).Methods(http.MethodGet)

	// Authenticated endpoints
	auth := api.PathPrefix("").Subrouter()
	auth.Use(AuthMiddleware(deps.Tokens))

	auth.HandleFunc("/users/me", userHandler.GetProfile).Methods(http.MethodGet)
	auth.HandleFunc("/users/me", userHandler.UpdateProfile).Methods(http.MethodPut)

	auth.HandleFunc("/cars", carHandler.Create).Methods(http.MethodPost)
	auth.HandleFunc("/cars/{id:[0-9]+}", carHandler.Update).Methods(http.MethodPut)
	auth.HandleFunc("/cars/{id:[0-9]+}", carHandler.Delete).Methods(http.MethodDelete)
	auth.HandleFunc("/cars/{id:[0-9]+}/status", carHandler.SetStatus).Methods(http.MethodPatch)

	auth.HandleFunc("/bookings/availability", bookingHandler.CheckAvailability).Methods(http.MethodGet)
	auth.HandleFunc("/bookings", bookingHandler.Create).Methods(http.MethodPost)
	auth.HandleFunc("/bookings", bookingHandler.List).Methods(http.MethodGet)
	auth.HandleFunc("/bookings/{id:[0-9]+}", bookingHandler.Get).Methods(http.MethodGet)
	auth.HandleFunc("/bookings/{id:[0-9]+}/confirm", bookingHandler.Confirm).Methods(http.MethodPatch)
	auth.HandleFunc("/bookings/{id:[0-9]+}/pickup", bookingHandler.Pickup).Methods(http.MethodPatch)
	auth.HandleFunc("/bookings/{id:[0-9]+}/return", bookingHandler.Return).Methods(http.MethodPatch)
	auth.HandleFunc("/bookings/{id:[0-9]+}/cancel", bookingHandler.Cancel).Methods(http.MethodPatch)
	auth.HandleFunc("/bookings/{id:[0-9]+}/payment", bookingHandler.UpdatePayment).Methods(http.MethodPatch)

	auth.HandleFunc("/issues", issueHandler.Create).Methods(http.MethodPost)
	auth.HandleFunc("/issues", issueHandler.List).Methods(http.MethodGet)
	auth.HandleFunc("/issues/stats", issueHandler.Stats).Methods(http.MethodGet)
	auth.HandleFunc("/issues/{id:[0-9]+}", issueHandler.Get).Methods(http.MethodGet)
	auth.HandleFunc("/issues/{id:[0-9]+}", issueHandler.Delete).Methods(http.MethodDelete)
	auth.HandleFunc("/issues/{id:[0-9]+}/respond", issueHandler.Respond).Methods(http.MethodPatch)
	auth.HandleFunc("/issues/{id:[0-9]+}/status", issueHandler.SetStatus).Methods(http.MethodPatch)
	auth.HandleFunc("/issues/{id:[0-9]+}/priority", issueHandler.SetPriority).Methods(http.MethodPatch)
	auth.HandleFunc("/issues/{id:[0-9]+}/cost", issueHandler.SetCost).Methods(http.MethodPatch)
	auth.HandleFunc("/issues/{id:[0-9]+}/updates", issueHandler.AddUpdate).Methods(http.MethodPost)

	auth.HandleFunc("/notifications", noteHandler.List).Methods(http.MethodGet)
	auth.HandleFunc("/notifications/read-all", noteHandler.MarkAllAsRead).Methods(http.MethodPost)
	auth.HandleFunc("/notifications/{id:[0-9]+}/read", noteHandler.MarkAsRead).Methods(http.MethodPost)

	auth.HandleFunc("/admin/stats", adminHandler.BookingStats).Methods(http.MethodGet)
	auth.HandleFunc("/admin/audit-logs", adminHandler.AuditLogs).Methods(http.MethodGet)
	auth.HandleFunc("/admin/users", adminHandler.ListUsers).Methods(http.MethodGet)
	auth.HandleFunc("/admin/users/{id:[0-9]+}/role", adminHandler.UpdateUserRole).Methods(http.MethodPatch)

	return r
}
