package service

import (
	"context"
	"time"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string, role domain.UserRole) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error) // user, access token
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
}

type VehicleService interface {
	AddVehicle(ctx context.Context, vehicle *domain.Vehicle) error
	GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, vehicle *domain.Vehicle) error
	DeleteVehicle(ctx context.Context, id int64) error
	ListVehicles(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, int, error)
	// CheckAvailability reports whether the vehicle can be booked for the
	// interval, returning the blocking reservation when it cannot.
	CheckAvailability(ctx context.Context, vehicleID int64, start, end time.Time) (bool, *domain.Reservation, error)
	UpdateDocuments(ctx context.Context, id int64, docs domain.VehicleDocuments) (*domain.Vehicle, error)
}

type ClientService interface {
	AddClient(ctx context.Context, client *domain.Client) error
	GetClient(ctx context.Context, id int64) (*domain.Client, error)
	UpdateClient(ctx context.Context, client *domain.Client) error
	DeleteClient(ctx context.Context, id int64) error
	ListClients(ctx context.Context, filter repository.ClientFilter) ([]domain.Client, int, error)
	Blacklist(ctx context.Context, id int64, reason string) (*domain.Client, error)
	Reinstate(ctx context.Context, id int64) (*domain.Client, error)
	RentalHistory(ctx context.Context, clientID int64, page, pageSize int) ([]domain.Reservation, int, error)
}

// CreateReservationInput is the creation payload; amounts and the
// reservation number are computed, never accepted from the caller.
type CreateReservationInput struct {
	ClientID       int64
	VehicleID      int64
	StartDate      time.Time
	EndDate        time.Time
	AdditionalFees []domain.AdditionalFee
	Deposit        domain.Deposit
	PickupLocation string
	ReturnLocation string
	Notes          string
}

// UpdateReservationInput carries the editable fields of a reservation.
type UpdateReservationInput struct {
	StartDate      *time.Time
	EndDate        *time.Time
	AdditionalFees []domain.AdditionalFee
	Deposit        *domain.Deposit
	PickupLocation *string
	ReturnLocation *string
	Notes          *string
}

// TransitionInput carries the optional side-effect data of a status change.
type TransitionInput struct {
	Mileage            *int64
	FuelLevel          domain.FuelLevel
	CancellationReason string
	CancelledBy        domain.CancelledBy
}

type ReservationService interface {
	CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)
	GetReservation(ctx context.Context, id int64) (*domain.Reservation, error)
	UpdateReservation(ctx context.Context, id int64, input UpdateReservationInput) (*domain.Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
	ListReservations(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, int, error)
	ChangeStatus(ctx context.Context, id int64, to domain.ReservationStatus, input TransitionInput) (*domain.Reservation, error)
	Calendar(ctx context.Context, start, end time.Time) ([]domain.Reservation, error)
	ListOverdue(ctx context.Context) ([]domain.Reservation, error)
}

// DashboardStats is the aggregate snapshot behind the stats endpoint.
type DashboardStats struct {
	Vehicles struct {
		Total    int                          `json:"total"`
		ByStatus map[domain.VehicleStatus]int `json:"by_status"`
	} `json:"vehicles"`
	Clients struct {
		Active      int `json:"active"`
		Blacklisted int `json:"blacklisted"`
	} `json:"clients"`
	Reservations struct {
		Pending   int `json:"pending"`
		Confirmed int `json:"confirmed"`
		Active    int `json:"active"`
		Completed int `json:"completed"`
		Overdue   int `json:"overdue"`
	} `json:"reservations"`
	Revenue struct {
		Total   float64                     `json:"total"`
		Monthly []repository.MonthlyRevenue `json:"monthly"`
	} `json:"revenue"`
	Deposits   repository.DepositSummary `json:"deposits"`
	TopClients []domain.Client           `json:"top_clients"`
	Recent     []domain.Reservation      `json:"recent_reservations"`
}

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	Revenue(ctx context.Context, period string, year int) ([]repository.RevenueBucket, error)
	Alerts(ctx context.Context) ([]domain.Alert, error)
}

// EmailService delivers operational mail; implementations must not block
// request handling on delivery failures.
type EmailService interface {
	SendAlertDigest(ctx context.Context, recipient string, alerts []domain.Alert) error
}
