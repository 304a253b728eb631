package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"autofleet-backoffice/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *domain.Client {
	return &domain.Client{
		FirstName:         "Karim",
		LastName:          "El Fassi",
		Email:             "karim@example.com",
		DateOfBirth:       time.Now().AddDate(-30, 0, 0),
		NationalID:        "AB123456",
		LicenseNumber:     "DL-998877",
		LicenseExpiryDate: time.Now().AddDate(3, 0, 0),
		Status:            domain.ClientStatusActive,
	}
}

func testVehicle() *domain.Vehicle {
	return &domain.Vehicle{
		Brand:        "Dacia",
		Model:        "Duster",
		Year:         2024,
		LicensePlate: "12345-A-6",
		FuelType:     domain.FuelTypeDiesel,
		DailyRate:    200,
		Mileage:      42000,
		Status:       domain.VehicleStatusAvailable,
	}
}

// futureInterval returns a clean [start, start+days) window well in the
// future so the past-date guard never trips.
func futureInterval(days int) (time.Time, time.Time) {
	start := time.Now().AddDate(0, 0, 7).Truncate(24 * time.Hour)
	return start, start.Add(time.Duration(days) * 24 * time.Hour)
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := newFakeStore()
		client := store.addClient(testClient())
		vehicle := store.addVehicle(testVehicle())
		svc := NewReservationService(store)

		start, end := futureInterval(3)
		reservation, err := svc.CreateReservation(ctx, CreateReservationInput{
			ClientID:  client.ID,
			VehicleID: vehicle.ID,
			StartDate: start,
			EndDate:   end,
		})
		require.NoError(t, err)

		assert.Equal(t, fmt.Sprintf("RES-%d-000001", time.Now().Year()), reservation.ReservationNumber)
		assert.Equal(t, domain.ReservationStatusPending, reservation.Status)
		assert.Equal(t, 200.0, reservation.DailyRate)
		assert.Equal(t, 3, reservation.TotalDays)
		assert.Equal(t, 600.0, reservation.BaseAmount)
		assert.Equal(t, 600.0, reservation.TotalAmount)
		assert.Equal(t, domain.VehicleStatusRented, store.vehicles[vehicle.ID].Status)
	})

	t.Run("Rate snapshot survives vehicle price change", func(t *testing.T) {
		store := newFakeStore()
		client := store.addClient(testClient())
		vehicle := store.addVehicle(testVehicle())
		svc := NewReservationService(store)

		start, end := futureInterval(2)
		reservation, err := svc.CreateReservation(ctx, CreateReservationInput{
			ClientID: client.ID, VehicleID: vehicle.ID, StartDate: start, EndDate: end,
		})
		require.NoError(t, err)

		store.vehicles[vehicle.ID].DailyRate = 999
		got, err := svc.GetReservation(ctx, reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, 200.0, got.DailyRate)
	})

	t.Run("Sequence numbers increment", func(t *testing.T) {
		store := newFakeStore()
		client := store.addClient(testClient())
		v1 := store.addVehicle(testVehicle())
		v2Raw := testVehicle()
		v2Raw.LicensePlate = "67890-B-1"
		v2 := store.addVehicle(v2Raw)
		svc := NewReservationService(store)

		start, end := futureInterval(2)
		first, err := svc.CreateReservation(ctx, CreateReservationInput{
			ClientID: client.ID, VehicleID: v1.ID, StartDate: start, EndDate: end,
		})
		require.NoError(t, err)
		second, err := svc.CreateReservation(ctx, CreateReservationInput{
			ClientID: client.ID, VehicleID: v2.ID, StartDate: start, EndDate: end,
		})
		require.NoError(t, err)

		year := time.Now().Year()
		assert.Equal(t, fmt.Sprintf("RES-%d-000001", year), first.ReservationNumber)
		assert.Equal(t, fmt.Sprintf("RES-%d-000002", year), second.ReservationNumber)
	})

	t.Run("Ineligible client", func(t *testing.T) {
		store := newFakeStore()
		clientRaw := testClient()
		clientRaw.Status = domain.ClientStatusBlacklisted
		clientRaw.LicenseExpiryDate = time.Now().AddDate(0, -1, 0)
		client := store.addClient(clientRaw)
		vehicle := store.addVehicle(testVehicle())
		svc := NewReservationService(store)

		start, end := futureInterval(3)
		_, err := svc.CreateReservation(ctx, CreateReservationInput{
			ClientID: client.ID, VehicleID: vehicle.ID, StartDate: start, EndDate: end,
		})
		var eligibilityErr *domain.EligibilityError
		require.ErrorAs(t, err, &eligibilityErr)
		assert.Contains(t, eligibilityErr.Reasons, "client status: blacklisted")
		assert.Contains(t, eligibilityErr.Reasons, "license expired")
		// Nothing persisted, vehicle untouched.
		assert.Empty(t, store.reservations)
		assert.Equal(t, domain.VehicleStatusAvailable, store.vehicles[vehicle.ID].Status)
	})

	t.Run("Vehicle not available", func(t *testing.T) {
		store := newFakeStore()
		client := store.addClient(testClient())
		vehicleRaw := testVehicle()
		vehicleRaw.Status = domain.VehicleStatusMaintenance
		vehicle := store.addVehicle(vehicleRaw)
		svc := NewReservationService(store)

		start, end := futureInterval(3)
		_, err := svc.CreateReservation(ctx, CreateReservationInput{
			ClientID: client.ID, VehicleID: vehicle.ID, StartDate: start, EndDate: end,
		})
		var unavailableErr *domain.VehicleUnavailableError
		require.ErrorAs(t, err, &unavailableErr)
		assert.Equal(t, domain.VehicleStatusMaintenance, unavailableErr.Status)
	})

	t.Run("Overlapping reservation conflicts", func(t *testing.T) {
		store := newFakeStore()
		client := store.addClient(testClient())
		vehicle := store.addVehicle(testVehicle())
		svc := NewReservationService(store)

		start, end := futureInterval(3)
		store.reservations[99] = &domain.Reservation{
			ID:                99,
			ReservationNumber: "RES-2026-000042",
			VehicleID:         vehicle.ID,
			ClientID:          client.ID,
			StartDate:         start,
			EndDate:           end,
			Status:            domain.ReservationStatusConfirmed,
		}

		// Starting on the existing end date still conflicts: boundaries
		// are inclusive, the handover day is not shared.
		_, err := svc.CreateReservation(ctx, CreateReservationInput{
			ClientID: client.ID, VehicleID: vehicle.ID,
			StartDate: end, EndDate: end.Add(48 * time.Hour),
		})
		var conflictErr *domain.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, "RES-2026-000042", conflictErr.ReservationNumber)
	})

	t.Run("Reversed interval", func(t *testing.T) {
		store := newFakeStore()
		client := store.addClient(testClient())
		vehicle := store.addVehicle(testVehicle())
		svc := NewReservationService(store)

		start, end := futureInterval(3)
		_, err := svc.CreateReservation(ctx, CreateReservationInput{
			ClientID: client.ID, VehicleID: vehicle.ID, StartDate: end, EndDate: start,
		})
		assert.ErrorIs(t, err, domain.ErrStartAfterEnd)
	})

	t.Run("Start in the past", func(t *testing.T) {
		store := newFakeStore()
		client := store.addClient(testClient())
		vehicle := store.addVehicle(testVehicle())
		svc := NewReservationService(store)

		_, err := svc.CreateReservation(ctx, CreateReservationInput{
			ClientID:  client.ID,
			VehicleID: vehicle.ID,
			StartDate: time.Now().AddDate(0, 0, -2),
			EndDate:   time.Now().AddDate(0, 0, 2),
		})
		assert.ErrorIs(t, err, domain.ErrStartInPast)
	})
}

// createPendingReservation seeds a store with a client, a vehicle and a
// freshly created reservation.
func createPendingReservation(t *testing.T, store *fakeStore, svc ReservationService) *domain.Reservation {
	t.Helper()
	client := store.addClient(testClient())
	vehicle := store.addVehicle(testVehicle())
	start, end := futureInterval(3)
	reservation, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		ClientID: client.ID, VehicleID: vehicle.ID, StartDate: start, EndDate: end,
	})
	require.NoError(t, err)
	return reservation
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Full lifecycle to completion", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReservationService(store)
		reservation := createPendingReservation(t, store, svc)

		confirmed, err := svc.ChangeStatus(ctx, reservation.ID, domain.ReservationStatusConfirmed, TransitionInput{})
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusConfirmed, confirmed.Status)

		mileageOut := int64(42100)
		active, err := svc.ChangeStatus(ctx, reservation.ID, domain.ReservationStatusActive, TransitionInput{
			Mileage:   &mileageOut,
			FuelLevel: domain.FuelLevelFull,
		})
		require.NoError(t, err)
		assert.NotNil(t, active.ActualStartDate)
		assert.Equal(t, mileageOut, *active.MileageStart)
		assert.Equal(t, domain.FuelLevelFull, active.FuelLevelStart)

		// Checkout copies the odometer reading onto the vehicle row.
		assert.Equal(t, mileageOut, store.vehicles[reservation.VehicleID].Mileage)

		mileageIn := int64(42900)
		completed, err := svc.ChangeStatus(ctx, reservation.ID, domain.ReservationStatusCompleted, TransitionInput{
			Mileage:   &mileageIn,
			FuelLevel: domain.FuelLevelHalf,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusCompleted, completed.Status)
		assert.NotNil(t, completed.ActualEndDate)
		assert.Equal(t, mileageIn, *completed.MileageEnd)

		// Vehicle released with the returned mileage.
		vehicle := store.vehicles[reservation.VehicleID]
		assert.Equal(t, domain.VehicleStatusAvailable, vehicle.Status)
		assert.Equal(t, mileageIn, vehicle.Mileage)

		// Client aggregates bumped once by the completed amount.
		client := store.clients[reservation.ClientID]
		assert.Equal(t, int32(1), client.TotalRentals)
		assert.Equal(t, completed.TotalAmount, client.TotalSpent)
	})

	t.Run("Activation writes the start mileage to the vehicle", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReservationService(store)
		reservation := createPendingReservation(t, store, svc)

		_, err := svc.ChangeStatus(ctx, reservation.ID, domain.ReservationStatusConfirmed, TransitionInput{})
		require.NoError(t, err)

		mileageOut := int64(50000)
		_, err = svc.ChangeStatus(ctx, reservation.ID, domain.ReservationStatusActive, TransitionInput{Mileage: &mileageOut})
		require.NoError(t, err)
		assert.Equal(t, mileageOut, store.vehicles[reservation.VehicleID].Mileage)

		// Without a reading the odometer is left alone.
		other := createPendingReservation(t, store, svc)
		_, err = svc.ChangeStatus(ctx, other.ID, domain.ReservationStatusConfirmed, TransitionInput{})
		require.NoError(t, err)
		before := store.vehicles[other.VehicleID].Mileage
		_, err = svc.ChangeStatus(ctx, other.ID, domain.ReservationStatusActive, TransitionInput{})
		require.NoError(t, err)
		assert.Equal(t, before, store.vehicles[other.VehicleID].Mileage)
	})

	t.Run("Illegal transitions rejected", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReservationService(store)
		reservation := createPendingReservation(t, store, svc)

		for _, to := range []domain.ReservationStatus{
			domain.ReservationStatusActive,
			domain.ReservationStatusCompleted,
		} {
			_, err := svc.ChangeStatus(ctx, reservation.ID, to, TransitionInput{})
			var stateErr *domain.StateError
			require.ErrorAs(t, err, &stateErr, "pending -> %s", to)
			assert.Equal(t, domain.ReservationStatusPending, stateErr.From)
		}
	})

	t.Run("Cancellation releases the vehicle", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReservationService(store)
		reservation := createPendingReservation(t, store, svc)

		cancelled, err := svc.ChangeStatus(ctx, reservation.ID, domain.ReservationStatusCancelled, TransitionInput{
			CancellationReason: "client changed plans",
			CancelledBy:        domain.CancelledByClient,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusCancelled, cancelled.Status)
		assert.NotNil(t, cancelled.CancelledDate)
		assert.Equal(t, "client changed plans", cancelled.CancellationReason)
		assert.Equal(t, domain.CancelledByClient, cancelled.CancelledBy)
		assert.Equal(t, domain.VehicleStatusAvailable, store.vehicles[reservation.VehicleID].Status)

		// Terminal: nothing further is allowed.
		_, err = svc.ChangeStatus(ctx, reservation.ID, domain.ReservationStatusConfirmed, TransitionInput{})
		var stateErr *domain.StateError
		assert.ErrorAs(t, err, &stateErr)
	})

	t.Run("Cancelled by defaults to company", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReservationService(store)
		reservation := createPendingReservation(t, store, svc)

		cancelled, err := svc.ChangeStatus(ctx, reservation.ID, domain.ReservationStatusCancelled, TransitionInput{})
		require.NoError(t, err)
		assert.Equal(t, domain.CancelledByCompany, cancelled.CancelledBy)
	})
}

func TestUpdateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("Date change reprices", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReservationService(store)
		reservation := createPendingReservation(t, store, svc)

		newEnd := reservation.StartDate.Add(5 * 24 * time.Hour)
		updated, err := svc.UpdateReservation(ctx, reservation.ID, UpdateReservationInput{
			EndDate: &newEnd,
		})
		require.NoError(t, err)
		assert.Equal(t, 5, updated.TotalDays)
		assert.Equal(t, 1000.0, updated.TotalAmount)
	})

	t.Run("Adding fees reprices", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReservationService(store)
		reservation := createPendingReservation(t, store, svc)

		updated, err := svc.UpdateReservation(ctx, reservation.ID, UpdateReservationInput{
			AdditionalFees: []domain.AdditionalFee{
				{Type: domain.FeeTypeInsurance, Description: "full coverage", Amount: 90},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, reservation.BaseAmount+90, updated.TotalAmount)
	})

	t.Run("Date change excludes itself from the conflict check", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReservationService(store)
		reservation := createPendingReservation(t, store, svc)

		// Manually mark blocking so the window registers in FindConflict.
		store.reservations[reservation.ID].Status = domain.ReservationStatusConfirmed

		newEnd := reservation.StartDate.Add(4 * 24 * time.Hour)
		_, err := svc.UpdateReservation(ctx, reservation.ID, UpdateReservationInput{EndDate: &newEnd})
		assert.NoError(t, err)
	})

	t.Run("Terminal reservations cannot be edited", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReservationService(store)
		reservation := createPendingReservation(t, store, svc)
		store.reservations[reservation.ID].Status = domain.ReservationStatusCompleted

		notes := "late edit"
		_, err := svc.UpdateReservation(ctx, reservation.ID, UpdateReservationInput{Notes: &notes})
		var stateErr *domain.StateError
		assert.ErrorAs(t, err, &stateErr)
	})
}

func TestDeleteReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("Pending delete releases the vehicle", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReservationService(store)
		reservation := createPendingReservation(t, store, svc)

		require.NoError(t, svc.DeleteReservation(ctx, reservation.ID))
		assert.NotContains(t, store.reservations, reservation.ID)
		assert.Equal(t, domain.VehicleStatusAvailable, store.vehicles[reservation.VehicleID].Status)
	})

	t.Run("Blocking statuses cannot be deleted", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReservationService(store)
		reservation := createPendingReservation(t, store, svc)

		for _, status := range []domain.ReservationStatus{
			domain.ReservationStatusConfirmed,
			domain.ReservationStatusActive,
		} {
			store.reservations[reservation.ID].Status = status
			err := svc.DeleteReservation(ctx, reservation.ID)
			assert.True(t, errors.Is(err, domain.ErrNotDeletable), "delete in %s", status)
		}
	})

	t.Run("Cancelled delete", func(t *testing.T) {
		store := newFakeStore()
		svc := NewReservationService(store)
		reservation := createPendingReservation(t, store, svc)

		_, err := svc.ChangeStatus(ctx, reservation.ID, domain.ReservationStatusCancelled, TransitionInput{})
		require.NoError(t, err)
		assert.NoError(t, svc.DeleteReservation(ctx, reservation.ID))
	})
}
