package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"

	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// against the pool or inside a transaction unchanged.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB // nil when this store wraps an open transaction
	q  DBTX

	users        repository.UserRepository
	vehicles     repository.VehicleRepository
	clients      repository.ClientRepository
	reservations repository.ReservationRepository
	sequences    repository.SequenceRepository
	dashboard    repository.DashboardRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(db *sql.DB, q DBTX) *Store {
	return &Store{
		db:           db,
		q:            q,
		users:        NewUserRepository(q),
		vehicles:     NewVehicleRepository(q),
		clients:      NewClientRepository(q),
		reservations: NewReservationRepository(q),
		sequences:    NewSequenceRepository(q),
		dashboard:    NewDashboardRepository(q),
	}
}

func (s *Store) Users() repository.UserRepository               { return s.users }
func (s *Store) Vehicles() repository.VehicleRepository         { return s.vehicles }
func (s *Store) Clients() repository.ClientRepository           { return s.clients }
func (s *Store) Reservations() repository.ReservationRepository { return s.reservations }
func (s *Store) Sequences() repository.SequenceRepository       { return s.sequences }
func (s *Store) Dashboard() repository.DashboardRepository      { return s.dashboard }

// WithinTransaction runs fn against a store bound to a single transaction,
// committing on success and rolling back on error. Nested calls reuse the
// enclosing transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(repository.Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	txStore := newStore(nil, tx)
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// uniqueField maps unique-constraint names onto the user-facing field that
// collided, so a 23505 surfaces as a domain error instead of a driver error.
var uniqueField = map[string]string{
	"users_email_key":                     "email",
	"vehicles_license_plate_key":          "license plate",
	"clients_email_key":                   "email",
	"clients_national_id_key":             "national id",
	"clients_license_number_key":          "license number",
	"reservations_reservation_number_key": "reservation number",
}

func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		if field, ok := uniqueField[pqErr.Constraint]; ok {
			return &domain.DuplicateError{Field: field}
		}
		return &domain.DuplicateError{Field: "record"}
	}
	return err
}
