package service

import (
	"context"
	"time"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/logger"
	"autofleet-backoffice/internal/repository"
)

type clientService struct {
	clientRepo      repository.ClientRepository
	reservationRepo repository.ReservationRepository
}

func NewClientService(clientRepo repository.ClientRepository, reservationRepo repository.ReservationRepository) ClientService {
	return &clientService{
		clientRepo:      clientRepo,
		reservationRepo: reservationRepo,
	}
}

func validateClient(c *domain.Client) error {
	verr := &domain.ValidationError{}
	if c.FirstName == "" {
		verr.Add("first_name", "is required")
	}
	if c.LastName == "" {
		verr.Add("last_name", "is required")
	}
	if c.Email == "" {
		verr.Add("email", "is required")
	}
	if c.NationalID == "" {
		verr.Add("national_id", "is required")
	}
	if c.LicenseNumber == "" {
		verr.Add("license_number", "is required")
	}
	if c.Age(time.Now()) < domain.MinimumRentalAge {
		verr.Add("date_of_birth", "client must be at least 21 years old")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (s *clientService) AddClient(ctx context.Context, client *domain.Client) error {
	if client.Status == "" {
		client.Status = domain.ClientStatusActive
	}
	if err := validateClient(client); err != nil {
		return err
	}
	return s.clientRepo.Create(ctx, client)
}

func (s *clientService) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	return s.clientRepo.GetByID(ctx, id)
}

func (s *clientService) UpdateClient(ctx context.Context, client *domain.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}
	return s.clientRepo.Update(ctx, client)
}

func (s *clientService) DeleteClient(ctx context.Context, id int64) error {
	blocking, err := s.reservationRepo.CountBlockingByClient(ctx, id)
	if err != nil {
		return err
	}
	if blocking > 0 {
		return domain.ErrHasActiveReservations
	}
	return s.clientRepo.Delete(ctx, id)
}

func (s *clientService) ListClients(ctx context.Context, filter repository.ClientFilter) ([]domain.Client, int, error) {
	return s.clientRepo.List(ctx, filter)
}

func (s *clientService) Blacklist(ctx context.Context, id int64, reason string) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	client.Status = domain.ClientStatusBlacklisted
	client.BlacklistReason = reason
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	logger.Warn("client blacklisted", "client_id", id, "reason", reason)
	return client, nil
}

func (s *clientService) Reinstate(ctx context.Context, id int64) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	client.Status = domain.ClientStatusActive
	client.BlacklistReason = ""
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) RentalHistory(ctx context.Context, clientID int64, page, pageSize int) ([]domain.Reservation, int, error) {
	if _, err := s.clientRepo.GetByID(ctx, clientID); err != nil {
		return nil, 0, err
	}
	return s.reservationRepo.List(ctx, repository.ReservationFilter{
		ClientID: clientID,
		Page:     page,
		PageSize: pageSize,
	})
}
