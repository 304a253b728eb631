package repository

import (
	"context"
	"time"

	"autofleet-backoffice/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	RecordLogin(ctx context.Context, id int64, at time.Time) error
}

type VehicleFilter struct {
	Status   domain.VehicleStatus
	FuelType domain.FuelType
	Search   string // matches brand, model or license plate
	Page     int
	PageSize int
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter VehicleFilter) ([]domain.Vehicle, int, error)
	StatusCounts(ctx context.Context) (map[domain.VehicleStatus]int, error)
	ListExpiringDocuments(ctx context.Context, cutoff time.Time) ([]domain.Vehicle, error)
}

type ClientFilter struct {
	Status   domain.ClientStatus
	Search   string // matches name, email, national id or license number
	Page     int
	PageSize int
}

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ClientFilter) ([]domain.Client, int, error)
	// ApplyCompletedRental bumps the client aggregates with a single atomic
	// increment; callers never read-modify-write the counters.
	ApplyCompletedRental(ctx context.Context, id int64, amount float64) error
	ListExpiringLicenses(ctx context.Context, cutoff time.Time) ([]domain.Client, error)
	TopBySpent(ctx context.Context, limit int) ([]domain.Client, error)
}

type ReservationFilter struct {
	Status    domain.ReservationStatus
	ClientID  int64
	VehicleID int64
	StartFrom *time.Time
	StartTo   *time.Time
	Page      int
	PageSize  int
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	Update(ctx context.Context, reservation *domain.Reservation) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, int, error)
	// FindConflict returns a blocking reservation on the vehicle whose
	// closed interval overlaps [start, end], or nil when there is none.
	// excludeID ignores the reservation being edited; pass 0 for creation.
	FindConflict(ctx context.Context, vehicleID int64, start, end time.Time, excludeID int64) (*domain.Reservation, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]domain.Reservation, error)
	CountBlockingByClient(ctx context.Context, clientID int64) (int, error)
	CountBlockingByVehicle(ctx context.Context, vehicleID int64) (int, error)
}

// SequenceRepository hands out collision-free reservation numbers from an
// atomically incremented per-year counter row.
type SequenceRepository interface {
	NextReservationNumber(ctx context.Context, year int) (int64, error)
}

type MonthlyRevenue struct {
	Month   int     `json:"month"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

type RevenueBucket struct {
	Bucket     int     `json:"bucket"`
	Revenue    float64 `json:"revenue"`
	Count      int     `json:"count"`
	AvgRevenue float64 `json:"avg_revenue"`
}

type DepositSummary struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// DashboardRepository serves the read-only aggregation queries behind the
// dashboard endpoints.
type DashboardRepository interface {
	CountVehicles(ctx context.Context) (int, error)
	CountClientsByStatus(ctx context.Context, status domain.ClientStatus) (int, error)
	CountReservationsByStatus(ctx context.Context, status domain.ReservationStatus) (int, error)
	CountOverdue(ctx context.Context, now time.Time) (int, error)
	RevenueTotal(ctx context.Context, statuses []domain.ReservationStatus) (float64, error)
	MonthlyRevenue(ctx context.Context, year int) ([]MonthlyRevenue, error)
	RevenueByPeriod(ctx context.Context, period string, year int) ([]RevenueBucket, error)
	HeldDeposits(ctx context.Context) (DepositSummary, error)
	RecentReservations(ctx context.Context, limit int) ([]domain.Reservation, error)
}

// Store bundles the repositories together with transactional execution.
// Lifecycle transitions write reservation, vehicle and client rows as one
// atomic unit through WithinTransaction.
type Store interface {
	Users() UserRepository
	Vehicles() VehicleRepository
	Clients() ClientRepository
	Reservations() ReservationRepository
	Sequences() SequenceRepository
	Dashboard() DashboardRepository
	WithinTransaction(ctx context.Context, fn func(Store) error) error
}
