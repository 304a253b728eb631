package service

import (
	"context"
	"errors"
	"time"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"
)

// fakeStore is an in-memory repository.Store for service tests. Transactions
// are a straight pass-through; rollback behavior is covered by the postgres
// layer tests.
type fakeStore struct {
	clients      map[int64]*domain.Client
	vehicles     map[int64]*domain.Vehicle
	reservations map[int64]*domain.Reservation
	sequences    map[int]int64
	nextID       int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:      make(map[int64]*domain.Client),
		vehicles:     make(map[int64]*domain.Vehicle),
		reservations: make(map[int64]*domain.Reservation),
		sequences:    make(map[int]int64),
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addClient(c *domain.Client) *domain.Client {
	c.ID = s.id()
	s.clients[c.ID] = c
	return c
}

func (s *fakeStore) addVehicle(v *domain.Vehicle) *domain.Vehicle {
	v.ID = s.id()
	s.vehicles[v.ID] = v
	return v
}

func (s *fakeStore) Users() repository.UserRepository       { return nil }
func (s *fakeStore) Vehicles() repository.VehicleRepository { return &fakeVehicleRepo{s} }
func (s *fakeStore) Clients() repository.ClientRepository   { return &fakeClientRepo{s} }
func (s *fakeStore) Reservations() repository.ReservationRepository {
	return &fakeReservationRepo{s}
}
func (s *fakeStore) Sequences() repository.SequenceRepository  { return &fakeSequenceRepo{s} }
func (s *fakeStore) Dashboard() repository.DashboardRepository { return nil }

func (s *fakeStore) WithinTransaction(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

var errNotImplemented = errors.New("not implemented in fake")

type fakeClientRepo struct{ s *fakeStore }

func (r *fakeClientRepo) Create(ctx context.Context, c *domain.Client) error {
	r.s.addClient(c)
	return nil
}

func (r *fakeClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	c, ok := r.s.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeClientRepo) Update(ctx context.Context, c *domain.Client) error {
	if _, ok := r.s.clients[c.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *c
	r.s.clients[c.ID] = &copied
	return nil
}

func (r *fakeClientRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.clients[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.clients, id)
	return nil
}

func (r *fakeClientRepo) List(ctx context.Context, filter repository.ClientFilter) ([]domain.Client, int, error) {
	return nil, 0, errNotImplemented
}

func (r *fakeClientRepo) ApplyCompletedRental(ctx context.Context, id int64, amount float64) error {
	c, ok := r.s.clients[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.TotalRentals++
	c.TotalSpent += amount
	return nil
}

func (r *fakeClientRepo) ListExpiringLicenses(ctx context.Context, cutoff time.Time) ([]domain.Client, error) {
	var out []domain.Client
	for _, c := range r.s.clients {
		if c.Status == domain.ClientStatusActive && !c.LicenseExpiryDate.After(cutoff) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) TopBySpent(ctx context.Context, limit int) ([]domain.Client, error) {
	return nil, errNotImplemented
}

type fakeVehicleRepo struct{ s *fakeStore }

func (r *fakeVehicleRepo) Create(ctx context.Context, v *domain.Vehicle) error {
	r.s.addVehicle(v)
	return nil
}

func (r *fakeVehicleRepo) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	v, ok := r.s.vehicles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *fakeVehicleRepo) Update(ctx context.Context, v *domain.Vehicle) error {
	if _, ok := r.s.vehicles[v.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *v
	r.s.vehicles[v.ID] = &copied
	return nil
}

func (r *fakeVehicleRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.vehicles[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.vehicles, id)
	return nil
}

func (r *fakeVehicleRepo) List(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, int, error) {
	return nil, 0, errNotImplemented
}

func (r *fakeVehicleRepo) StatusCounts(ctx context.Context) (map[domain.VehicleStatus]int, error) {
	return nil, errNotImplemented
}

func (r *fakeVehicleRepo) ListExpiringDocuments(ctx context.Context, cutoff time.Time) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for _, v := range r.s.vehicles {
		if len(v.ExpiringDocuments(cutoff.Add(-domain.DefaultExpiryWindow), domain.DefaultExpiryWindow)) > 0 {
			out = append(out, *v)
		}
	}
	return out, nil
}

type fakeReservationRepo struct{ s *fakeStore }

func (r *fakeReservationRepo) Create(ctx context.Context, rv *domain.Reservation) error {
	rv.ID = r.s.id()
	rv.CreatedOn = time.Now()
	rv.UpdatedOn = rv.CreatedOn
	copied := *rv
	r.s.reservations[rv.ID] = &copied
	return nil
}

func (r *fakeReservationRepo) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	rv, ok := r.s.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *rv
	return &copied, nil
}

func (r *fakeReservationRepo) Update(ctx context.Context, rv *domain.Reservation) error {
	if _, ok := r.s.reservations[rv.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *rv
	r.s.reservations[rv.ID] = &copied
	return nil
}

func (r *fakeReservationRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.reservations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.reservations, id)
	return nil
}

func (r *fakeReservationRepo) List(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, int, error) {
	var out []domain.Reservation
	for _, rv := range r.s.reservations {
		if filter.ClientID != 0 && rv.ClientID != filter.ClientID {
			continue
		}
		if filter.VehicleID != 0 && rv.VehicleID != filter.VehicleID {
			continue
		}
		if filter.Status != "" && rv.Status != filter.Status {
			continue
		}
		out = append(out, *rv)
	}
	return out, len(out), nil
}

func (r *fakeReservationRepo) FindConflict(ctx context.Context, vehicleID int64, start, end time.Time, excludeID int64) (*domain.Reservation, error) {
	for _, rv := range r.s.reservations {
		if rv.VehicleID != vehicleID || rv.ID == excludeID || !rv.Status.IsBlocking() {
			continue
		}
		if !rv.StartDate.After(end) && !rv.EndDate.Before(start) {
			copied := *rv
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeReservationRepo) ListOverdue(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, rv := range r.s.reservations {
		if rv.IsOverdue(now) {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) ListBetween(ctx context.Context, start, end time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, rv := range r.s.reservations {
		if rv.Status.IsBlocking() && !rv.StartDate.After(end) && !rv.EndDate.Before(start) {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) CountBlockingByClient(ctx context.Context, clientID int64) (int, error) {
	count := 0
	for _, rv := range r.s.reservations {
		if rv.ClientID == clientID && rv.Status.IsBlocking() {
			count++
		}
	}
	return count, nil
}

func (r *fakeReservationRepo) CountBlockingByVehicle(ctx context.Context, vehicleID int64) (int, error) {
	count := 0
	for _, rv := range r.s.reservations {
		if rv.VehicleID == vehicleID && rv.Status.IsBlocking() {
			count++
		}
	}
	return count, nil
}

type fakeSequenceRepo struct{ s *fakeStore }

func (r *fakeSequenceRepo) NextReservationNumber(ctx context.Context, year int) (int64, error) {
	r.s.sequences[year]++
	return r.s.sequences[year], nil
}
