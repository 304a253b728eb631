package postgres

import (
	"context"
	"testing"
	"time"

	"autofleet-backoffice/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reservationRows = []string{
	"id", "reservation_number", "client_id", "vehicle_id",
	"start_date", "end_date", "actual_start_date", "actual_end_date", "status",
	"daily_rate", "total_days", "base_amount", "total_amount",
	"deposit_amount", "deposit_paid", "deposit_paid_date",
	"pickup_location", "return_location", "mileage_start", "mileage_end",
	"fuel_level_start", "fuel_level_end", "notes",
	"cancellation_reason", "cancelled_by", "cancelled_date",
	"created_on", "updated_on",
}

func addReservationRow(rows *sqlmock.Rows, id int64, number string, status domain.ReservationStatus, start, end time.Time) {
	now := time.Now()
	rows.AddRow(id, number, int64(1), int64(2),
		start, end, nil, nil, string(status),
		200.0, 3, 600.0, 600.0,
		0.0, false, nil,
		"", "", nil, nil,
		nil, nil, "",
		"", nil, nil,
		now, now)
}

func TestReservationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(3 * 24 * time.Hour)
	reservation := &domain.Reservation{
		ReservationNumber: "RES-2026-000001",
		ClientID:          1,
		VehicleID:         2,
		StartDate:         start,
		EndDate:           end,
		Status:            domain.ReservationStatusPending,
		DailyRate:         200,
		TotalDays:         3,
		BaseAmount:        600,
		TotalAmount:       650,
		AdditionalFees: []domain.AdditionalFee{
			{Type: domain.FeeTypeFuel, Description: "missing fuel", Amount: 50},
		},
	}

	now := time.Now()
	mock.ExpectQuery("INSERT INTO reservations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(7, now, now))
	mock.ExpectExec("DELETE FROM reservation_fees").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO reservation_fees").
		WithArgs(int64(7), 0, domain.FeeTypeFuel, "missing fuel", 50.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(ctx, reservation))
	assert.Equal(t, int64(7), reservation.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_FindConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(db)
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(3 * 24 * time.Hour)

	t.Run("Conflict found", func(t *testing.T) {
		rows := sqlmock.NewRows(reservationRows)
		addReservationRow(rows, 5, "RES-2026-000042", domain.ReservationStatusConfirmed, start, end)

		mock.ExpectQuery("SELECT (.+) FROM reservations r").
			WithArgs(int64(2), domain.ReservationStatusConfirmed, domain.ReservationStatusActive, end, start, int64(0)).
			WillReturnRows(rows)

		conflict, err := repo.FindConflict(ctx, 2, start, end, 0)
		require.NoError(t, err)
		require.NotNil(t, conflict)
		assert.Equal(t, "RES-2026-000042", conflict.ReservationNumber)
	})

	t.Run("No conflict returns nil", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM reservations r").
			WithArgs(int64(2), domain.ReservationStatusConfirmed, domain.ReservationStatusActive, end, start, int64(9)).
			WillReturnRows(sqlmock.NewRows(reservationRows))

		conflict, err := repo.FindConflict(ctx, 2, start, end, 9)
		require.NoError(t, err)
		assert.Nil(t, conflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReservationRepository(db)
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Success with fees", func(t *testing.T) {
		rows := sqlmock.NewRows(reservationRows)
		addReservationRow(rows, 11, "RES-2026-000011", domain.ReservationStatusActive, start, start.Add(72*time.Hour))

		mock.ExpectQuery("SELECT (.+) FROM reservations r WHERE r.id").
			WithArgs(int64(11)).
			WillReturnRows(rows)
		mock.ExpectQuery("SELECT fee_type, description, amount FROM reservation_fees").
			WithArgs(int64(11)).
			WillReturnRows(sqlmock.NewRows([]string{"fee_type", "description", "amount"}).
				AddRow("cleaning", "interior cleaning", 30.0))

		reservation, err := repo.GetByID(ctx, 11)
		require.NoError(t, err)
		assert.Equal(t, "RES-2026-000011", reservation.ReservationNumber)
		require.Len(t, reservation.AdditionalFees, 1)
		assert.Equal(t, domain.FeeTypeCleaning, reservation.AdditionalFees[0].Type)
		assert.Equal(t, 30.0, reservation.AdditionalFees[0].Amount)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM reservations r WHERE r.id").
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows(reservationRows))

		_, err := repo.GetByID(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
