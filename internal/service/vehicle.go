package service

import (
	"context"
	"time"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"
)

type vehicleService struct {
	vehicleRepo     repository.VehicleRepository
	reservationRepo repository.ReservationRepository
}

func NewVehicleService(vehicleRepo repository.VehicleRepository, reservationRepo repository.ReservationRepository) VehicleService {
	return &vehicleService{
		vehicleRepo:     vehicleRepo,
		reservationRepo: reservationRepo,
	}
}

func validateVehicle(v *domain.Vehicle) error {
	verr := &domain.ValidationError{}
	if v.Brand == "" {
		verr.Add("brand", "is required")
	}
	if v.Model == "" {
		verr.Add("model", "is required")
	}
	if v.LicensePlate == "" {
		verr.Add("license_plate", "is required")
	}
	if v.Year < 1980 || v.Year > time.Now().Year()+1 {
		verr.Add("year", "is out of range")
	}
	if v.DailyRate < domain.MinimumDailyRate {
		verr.Add("daily_rate", "is below the minimum daily rate")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (s *vehicleService) AddVehicle(ctx context.Context, vehicle *domain.Vehicle) error {
	if vehicle.Status == "" {
		vehicle.Status = domain.VehicleStatusAvailable
	}
	if err := validateVehicle(vehicle); err != nil {
		return err
	}
	return s.vehicleRepo.Create(ctx, vehicle)
}

func (s *vehicleService) GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, id)
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, vehicle *domain.Vehicle) error {
	if err := validateVehicle(vehicle); err != nil {
		return err
	}
	return s.vehicleRepo.Update(ctx, vehicle)
}

func (s *vehicleService) DeleteVehicle(ctx context.Context, id int64) error {
	blocking, err := s.reservationRepo.CountBlockingByVehicle(ctx, id)
	if err != nil {
		return err
	}
	if blocking > 0 {
		return domain.ErrHasActiveReservations
	}
	return s.vehicleRepo.Delete(ctx, id)
}

func (s *vehicleService) ListVehicles(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, int, error) {
	return s.vehicleRepo.List(ctx, filter)
}

func (s *vehicleService) CheckAvailability(ctx context.Context, vehicleID int64, start, end time.Time) (bool, *domain.Reservation, error) {
	if !end.After(start) {
		return false, nil, domain.ErrStartAfterEnd
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return false, nil, err
	}
	if vehicle.Status == domain.VehicleStatusMaintenance || vehicle.Status == domain.VehicleStatusOutOfService {
		return false, nil, nil
	}
	conflict, err := s.reservationRepo.FindConflict(ctx, vehicleID, start, end, 0)
	if err != nil {
		return false, nil, err
	}
	return conflict == nil, conflict, nil
}

func (s *vehicleService) UpdateDocuments(ctx context.Context, id int64, docs domain.VehicleDocuments) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	vehicle.Documents = docs
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}
