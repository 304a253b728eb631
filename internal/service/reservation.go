package service

import (
	"context"
	"fmt"
	"time"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/logger"
	"autofleet-backoffice/internal/repository"
	"autofleet-backoffice/internal/utils"
)

type reservationService struct {
	store repository.Store
}

func NewReservationService(store repository.Store) ReservationService {
	return &reservationService{store: store}
}

// startOfDay drops the time-of-day component so date comparisons work on
// calendar days, not instants.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func validateInterval(start, end time.Time, forbidPast bool) error {
	if !end.After(start) {
		return domain.ErrStartAfterEnd
	}
	if forbidPast && start.Before(startOfDay(time.Now())) {
		return domain.ErrStartInPast
	}
	return nil
}

func (s *reservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error) {
	if err := validateInterval(input.StartDate, input.EndDate, true); err != nil {
		return nil, err
	}

	var created *domain.Reservation
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		client, err := tx.Clients().GetByID(ctx, input.ClientID)
		if err != nil {
			return fmt.Errorf("load client: %w", err)
		}
		if reasons := client.EligibilityReasons(time.Now()); len(reasons) > 0 {
			return &domain.EligibilityError{Reasons: reasons}
		}

		vehicle, err := tx.Vehicles().GetByID(ctx, input.VehicleID)
		if err != nil {
			return fmt.Errorf("load vehicle: %w", err)
		}
		if vehicle.Status != domain.VehicleStatusAvailable {
			return &domain.VehicleUnavailableError{Status: vehicle.Status}
		}

		conflict, err := tx.Reservations().FindConflict(ctx, vehicle.ID, input.StartDate, input.EndDate, 0)
		if err != nil {
			return fmt.Errorf("conflict check: %w", err)
		}
		if conflict != nil {
			return &domain.ConflictError{ReservationNumber: conflict.ReservationNumber}
		}

		year := time.Now().Year()
		seq, err := tx.Sequences().NextReservationNumber(ctx, year)
		if err != nil {
			return fmt.Errorf("reservation number: %w", err)
		}

		reservation := &domain.Reservation{
			ReservationNumber: fmt.Sprintf("RES-%d-%06d", year, seq),
			ClientID:          client.ID,
			VehicleID:         vehicle.ID,
			StartDate:         input.StartDate,
			EndDate:           input.EndDate,
			Status:            domain.ReservationStatusPending,
			DailyRate:         vehicle.DailyRate,
			AdditionalFees:    input.AdditionalFees,
			Deposit:           input.Deposit,
			PickupLocation:    input.PickupLocation,
			ReturnLocation:    input.ReturnLocation,
			Notes:             input.Notes,
		}
		utils.Reprice(reservation)

		if err := tx.Reservations().Create(ctx, reservation); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}

		vehicle.Status = domain.VehicleStatusRented
		if err := tx.Vehicles().Update(ctx, vehicle); err != nil {
			return fmt.Errorf("mark vehicle rented: %w", err)
		}

		created = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("reservation created",
		"reservation_number", created.ReservationNumber,
		"client_id", created.ClientID,
		"vehicle_id", created.VehicleID,
		"total_amount", created.TotalAmount)
	return created, nil
}

func (s *reservationService) GetReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	reservation, err := s.store.Reservations().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Populate the references the detail view displays.
	if client, err := s.store.Clients().GetByID(ctx, reservation.ClientID); err == nil {
		reservation.Client = client
	}
	if vehicle, err := s.store.Vehicles().GetByID(ctx, reservation.VehicleID); err == nil {
		reservation.Vehicle = vehicle
	}
	return reservation, nil
}

func (s *reservationService) UpdateReservation(ctx context.Context, id int64, input UpdateReservationInput) (*domain.Reservation, error) {
	var updated *domain.Reservation
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		reservation, err := tx.Reservations().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if reservation.Status.IsTerminal() {
			return &domain.StateError{From: reservation.Status, To: reservation.Status}
		}

		datesChanged := false
		if input.StartDate != nil {
			reservation.StartDate = *input.StartDate
			datesChanged = true
		}
		if input.EndDate != nil {
			reservation.EndDate = *input.EndDate
			datesChanged = true
		}
		if datesChanged {
			if err := validateInterval(reservation.StartDate, reservation.EndDate, false); err != nil {
				return err
			}
			conflict, err := tx.Reservations().FindConflict(ctx,
				reservation.VehicleID, reservation.StartDate, reservation.EndDate, reservation.ID)
			if err != nil {
				return fmt.Errorf("conflict check: %w", err)
			}
			if conflict != nil {
				return &domain.ConflictError{ReservationNumber: conflict.ReservationNumber}
			}
		}

		if input.AdditionalFees != nil {
			reservation.AdditionalFees = input.AdditionalFees
		}
		if input.Deposit != nil {
			reservation.Deposit = *input.Deposit
		}
		if input.PickupLocation != nil {
			reservation.PickupLocation = *input.PickupLocation
		}
		if input.ReturnLocation != nil {
			reservation.ReturnLocation = *input.ReturnLocation
		}
		if input.Notes != nil {
			reservation.Notes = *input.Notes
		}

		utils.Reprice(reservation)
		if err := tx.Reservations().Update(ctx, reservation); err != nil {
			return err
		}
		updated = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ChangeStatus applies one step of the lifecycle. The status write and its
// side effects on the vehicle and client rows commit or roll back together.
func (s *reservationService) ChangeStatus(ctx context.Context, id int64, to domain.ReservationStatus, input TransitionInput) (*domain.Reservation, error) {
	var updated *domain.Reservation
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		reservation, err := tx.Reservations().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !domain.CanTransition(reservation.Status, to) {
			return &domain.StateError{From: reservation.Status, To: to}
		}

		now := time.Now()
		from := reservation.Status
		reservation.Status = to

		switch to {
		case domain.ReservationStatusConfirmed:
			// No side effects beyond the status itself.

		case domain.ReservationStatusActive:
			reservation.ActualStartDate = &now
			if input.Mileage != nil {
				reservation.MileageStart = input.Mileage
				if err := s.recordVehicleMileage(ctx, tx, reservation.VehicleID, *input.Mileage); err != nil {
					return err
				}
			}
			if input.FuelLevel != "" {
				reservation.FuelLevelStart = input.FuelLevel
			}

		case domain.ReservationStatusCompleted:
			reservation.ActualEndDate = &now
			if input.Mileage != nil {
				reservation.MileageEnd = input.Mileage
			}
			if input.FuelLevel != "" {
				reservation.FuelLevelEnd = input.FuelLevel
			}
			utils.RepriceActual(reservation)
			if err := s.releaseVehicle(ctx, tx, reservation.VehicleID, input.Mileage); err != nil {
				return err
			}
			if err := tx.Clients().ApplyCompletedRental(ctx, reservation.ClientID, reservation.TotalAmount); err != nil {
				return fmt.Errorf("update client aggregates: %w", err)
			}

		case domain.ReservationStatusCancelled:
			reservation.CancelledDate = &now
			reservation.CancellationReason = input.CancellationReason
			reservation.CancelledBy = input.CancelledBy
			if reservation.CancelledBy == "" {
				reservation.CancelledBy = domain.CancelledByCompany
			}
			if err := s.releaseVehicle(ctx, tx, reservation.VehicleID, nil); err != nil {
				return err
			}
		}

		if err := tx.Reservations().Update(ctx, reservation); err != nil {
			return err
		}
		logger.Info("reservation status changed",
			"reservation_number", reservation.ReservationNumber,
			"from", from, "to", to)
		updated = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// recordVehicleMileage copies the odometer reading taken at handover onto
// the vehicle row, so the fleet view reflects it while the rental runs.
func (s *reservationService) recordVehicleMileage(ctx context.Context, tx repository.Store, vehicleID, mileage int64) error {
	vehicle, err := tx.Vehicles().GetByID(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("load vehicle: %w", err)
	}
	vehicle.Mileage = mileage
	if err := tx.Vehicles().Update(ctx, vehicle); err != nil {
		return fmt.Errorf("record vehicle mileage: %w", err)
	}
	return nil
}

// releaseVehicle puts a rented vehicle back in the available pool,
// optionally recording the returned mileage.
func (s *reservationService) releaseVehicle(ctx context.Context, tx repository.Store, vehicleID int64, mileage *int64) error {
	vehicle, err := tx.Vehicles().GetByID(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("load vehicle: %w", err)
	}
	if vehicle.Status == domain.VehicleStatusRented {
		vehicle.Status = domain.VehicleStatusAvailable
	}
	if mileage != nil && *mileage > vehicle.Mileage {
		vehicle.Mileage = *mileage
	}
	if err := tx.Vehicles().Update(ctx, vehicle); err != nil {
		return fmt.Errorf("release vehicle: %w", err)
	}
	return nil
}

func (s *reservationService) DeleteReservation(ctx context.Context, id int64) error {
	return s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		reservation, err := tx.Reservations().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !reservation.Status.Deletable() {
			return domain.ErrNotDeletable
		}
		// A pending reservation still holds the vehicle it was created on.
		if reservation.Status == domain.ReservationStatusPending {
			if err := s.releaseVehicle(ctx, tx, reservation.VehicleID, nil); err != nil {
				return err
			}
		}
		return tx.Reservations().Delete(ctx, reservation.ID)
	})
}

func (s *reservationService) ListReservations(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, int, error) {
	return s.store.Reservations().List(ctx, filter)
}

func (s *reservationService) Calendar(ctx context.Context, start, end time.Time) ([]domain.Reservation, error) {
	if !end.After(start) {
		return nil, domain.ErrStartAfterEnd
	}
	return s.store.Reservations().ListBetween(ctx, start, end)
}

func (s *reservationService) ListOverdue(ctx context.Context) ([]domain.Reservation, error) {
	return s.store.Reservations().ListOverdue(ctx, time.Now())
}
