package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/security"
	"autofleet-backoffice/internal/service"
)

// RouterConfig carries the services the API exposes.
type RouterConfig struct {
	Tokens       security.TokenManager
	Auth         service.AuthService
	Vehicles     service.VehicleService
	Clients      service.ClientService
	Reservations service.ReservationService
	Dashboard    service.DashboardService
}

// NewRouter builds the full API surface under /api/v1. Everything except
// login and the health check requires a valid bearer token; destructive
// endpoints are restricted by role.
func NewRouter(cfg RouterConfig) *mux.Router {
	authHandler := NewAuthHandler(cfg.Auth)
	vehicleHandler := NewVehicleHandler(cfg.Vehicles)
	clientHandler := NewClientHandler(cfg.Clients)
	reservationHandler := NewReservationHandler(cfg.Reservations)
	dashboardHandler := NewDashboardHandler(cfg.Dashboard)

	root := mux.NewRouter()
	root.Use(requestIDMiddleware, loggingMiddleware)

	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := root.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware(cfg.Tokens))

	adminOnly := requireRoles(domain.UserRoleAdmin)
	adminOrManager := requireRoles(domain.UserRoleAdmin, domain.UserRoleManager)

	authed.Handle("/auth/register", adminOnly(http.HandlerFunc(authHandler.Register))).Methods(http.MethodPost)
	authed.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	authed.HandleFunc("/auth/change-password", authHandler.ChangePassword).Methods(http.MethodPost)

	authed.HandleFunc("/vehicles", vehicleHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/vehicles", vehicleHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/vehicles/{id:[0-9]+}", vehicleHandler.Get).Methods(http.MethodGet)
	authed.HandleFunc("/vehicles/{id:[0-9]+}", vehicleHandler.Update).Methods(http.MethodPut)
	authed.Handle("/vehicles/{id:[0-9]+}", adminOnly(http.HandlerFunc(vehicleHandler.Delete))).Methods(http.MethodDelete)
	authed.HandleFunc("/vehicles/{id:[0-9]+}/availability", vehicleHandler.CheckAvailability).Methods(http.MethodGet)
	authed.HandleFunc("/vehicles/{id:[0-9]+}/documents", vehicleHandler.UpdateDocuments).Methods(http.MethodPut)

	authed.HandleFunc("/clients", clientHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/clients", clientHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/clients/{id:[0-9]+}", clientHandler.Get).Methods(http.MethodGet)
	authed.HandleFunc("/clients/{id:[0-9]+}", clientHandler.Update).Methods(http.MethodPut)
	authed.Handle("/clients/{id:[0-9]+}", adminOnly(http.HandlerFunc(clientHandler.Delete))).Methods(http.MethodDelete)
	authed.Handle("/clients/{id:[0-9]+}/blacklist", adminOrManager(http.HandlerFunc(clientHandler.Blacklist))).Methods(http.MethodPut)
	authed.HandleFunc("/clients/{id:[0-9]+}/rentals", clientHandler.RentalHistory).Methods(http.MethodGet)

	// Fixed paths registered before the {id} routes so mux does not try to
	// parse "calendar" as an id.
	authed.HandleFunc("/reservations/calendar", reservationHandler.Calendar).Methods(http.MethodGet)
	authed.HandleFunc("/reservations/overdue", reservationHandler.Overdue).Methods(http.MethodGet)
	authed.HandleFunc("/reservations", reservationHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/reservations", reservationHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/reservations/{id:[0-9]+}", reservationHandler.Get).Methods(http.MethodGet)
	authed.HandleFunc("/reservations/{id:[0-9]+}", reservationHandler.Update).Methods(http.MethodPut)
	authed.Handle("/reservations/{id:[0-9]+}", adminOnly(http.HandlerFunc(reservationHandler.Delete))).Methods(http.MethodDelete)
	authed.HandleFunc("/reservations/{id:[0-9]+}/status", reservationHandler.ChangeStatus).Methods(http.MethodPatch)

	authed.HandleFunc("/dashboard/stats", dashboardHandler.Stats).Methods(http.MethodGet)
	authed.HandleFunc("/dashboard/revenue", dashboardHandler.Revenue).Methods(http.MethodGet)
	authed.HandleFunc("/dashboard/alerts", dashboardHandler.Alerts).Methods(http.MethodGet)

	return root
}
