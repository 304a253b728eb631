package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"
)

type reservationRepository struct {
	db DBTX
}

func NewReservationRepository(db DBTX) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `r.id, r.reservation_number, r.client_id, r.vehicle_id,
       r.start_date, r.end_date, r.actual_start_date, r.actual_end_date, r.status,
       r.daily_rate, r.total_days, r.base_amount, r.total_amount,
       r.deposit_amount, r.deposit_paid, r.deposit_paid_date,
       r.pickup_location, r.return_location, r.mileage_start, r.mileage_end,
       r.fuel_level_start, r.fuel_level_end, r.notes,
       r.cancellation_reason, r.cancelled_by, r.cancelled_date,
       r.created_on, r.updated_on`

func (r *reservationRepository) Create(ctx context.Context, rv *domain.Reservation) error {
	query := `INSERT INTO reservations (reservation_number, client_id, vehicle_id,
	              start_date, end_date, actual_start_date, actual_end_date, status,
	              daily_rate, total_days, base_amount, total_amount,
	              deposit_amount, deposit_paid, deposit_paid_date,
	              pickup_location, return_location, mileage_start, mileage_end,
	              fuel_level_start, fuel_level_end, notes,
	              cancellation_reason, cancelled_by, cancelled_date, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	                  $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	          RETURNING id, created_on, updated_on`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		rv.ReservationNumber, rv.ClientID, rv.VehicleID,
		rv.StartDate, rv.EndDate, rv.ActualStartDate, rv.ActualEndDate, rv.Status,
		rv.DailyRate, rv.TotalDays, rv.BaseAmount, rv.TotalAmount,
		rv.Deposit.Amount, rv.Deposit.Paid, rv.Deposit.PaidDate,
		rv.PickupLocation, rv.ReturnLocation, rv.MileageStart, rv.MileageEnd,
		nullIfEmpty(string(rv.FuelLevelStart)), nullIfEmpty(string(rv.FuelLevelEnd)), rv.Notes,
		rv.CancellationReason, nullIfEmpty(string(rv.CancelledBy)), rv.CancelledDate, now, now,
	).Scan(&rv.ID, &rv.CreatedOn, &rv.UpdatedOn)
	if err != nil {
		return mapStorageError(err)
	}
	return r.replaceFees(ctx, rv.ID, rv.AdditionalFees)
}

func (r *reservationRepository) Update(ctx context.Context, rv *domain.Reservation) error {
	query := `UPDATE reservations SET
	              start_date=$1, end_date=$2, actual_start_date=$3, actual_end_date=$4, status=$5,
	              daily_rate=$6, total_days=$7, base_amount=$8, total_amount=$9,
	              deposit_amount=$10, deposit_paid=$11, deposit_paid_date=$12,
	              pickup_location=$13, return_location=$14, mileage_start=$15, mileage_end=$16,
	              fuel_level_start=$17, fuel_level_end=$18, notes=$19,
	              cancellation_reason=$20, cancelled_by=$21, cancelled_date=$22, updated_on=$23
	          WHERE id=$24`
	res, err := r.db.ExecContext(ctx, query,
		rv.StartDate, rv.EndDate, rv.ActualStartDate, rv.ActualEndDate, rv.Status,
		rv.DailyRate, rv.TotalDays, rv.BaseAmount, rv.TotalAmount,
		rv.Deposit.Amount, rv.Deposit.Paid, rv.Deposit.PaidDate,
		rv.PickupLocation, rv.ReturnLocation, rv.MileageStart, rv.MileageEnd,
		nullIfEmpty(string(rv.FuelLevelStart)), nullIfEmpty(string(rv.FuelLevelEnd)), rv.Notes,
		rv.CancellationReason, nullIfEmpty(string(rv.CancelledBy)), rv.CancelledDate, time.Now(), rv.ID)
	if err != nil {
		return mapStorageError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return r.replaceFees(ctx, rv.ID, rv.AdditionalFees)
}

// replaceFees rewrites the ordered fee list for a reservation. Fee lists are
// short, so delete-and-reinsert keeps positions consistent without diffing.
func (r *reservationRepository) replaceFees(ctx context.Context, reservationID int64, fees []domain.AdditionalFee) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reservation_fees WHERE reservation_id = $1`, reservationID); err != nil {
		return mapStorageError(err)
	}
	for i, fee := range fees {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO reservation_fees (reservation_id, position, fee_type, description, amount)
			 VALUES ($1, $2, $3, $4, $5)`,
			reservationID, i, fee.Type, fee.Description, fee.Amount)
		if err != nil {
			return mapStorageError(err)
		}
	}
	return nil
}

func (r *reservationRepository) loadFees(ctx context.Context, rv *domain.Reservation) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fee_type, description, amount FROM reservation_fees
		 WHERE reservation_id = $1 ORDER BY position`, rv.ID)
	if err != nil {
		return mapStorageError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var fee domain.AdditionalFee
		if err := rows.Scan(&fee.Type, &fee.Description, &fee.Amount); err != nil {
			return err
		}
		rv.AdditionalFees = append(rv.AdditionalFees, fee)
	}
	return rows.Err()
}

func scanReservation(s interface{ Scan(...any) error }) (*domain.Reservation, error) {
	rv := &domain.Reservation{}
	var fuelStart, fuelEnd, cancelledBy sql.NullString
	err := s.Scan(&rv.ID, &rv.ReservationNumber, &rv.ClientID, &rv.VehicleID,
		&rv.StartDate, &rv.EndDate, &rv.ActualStartDate, &rv.ActualEndDate, &rv.Status,
		&rv.DailyRate, &rv.TotalDays, &rv.BaseAmount, &rv.TotalAmount,
		&rv.Deposit.Amount, &rv.Deposit.Paid, &rv.Deposit.PaidDate,
		&rv.PickupLocation, &rv.ReturnLocation, &rv.MileageStart, &rv.MileageEnd,
		&fuelStart, &fuelEnd, &rv.Notes,
		&rv.CancellationReason, &cancelledBy, &rv.CancelledDate,
		&rv.CreatedOn, &rv.UpdatedOn)
	if err != nil {
		return nil, mapStorageError(err)
	}
	rv.FuelLevelStart = domain.FuelLevel(fuelStart.String)
	rv.FuelLevelEnd = domain.FuelLevel(fuelEnd.String)
	rv.CancelledBy = domain.CancelledBy(cancelledBy.String)
	return rv, nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = $1`
	rv, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadFees(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *reservationRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return mapStorageError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// listQuery joins the client and vehicle summaries the way the admin console
// displays reservations.
const listQuery = `SELECT ` + reservationColumns + `,
       c.first_name, c.last_name, c.email, c.phone,
       v.brand, v.model, v.license_plate, v.daily_rate
  FROM reservations r
  JOIN clients c ON c.id = r.client_id
  JOIN vehicles v ON v.id = r.vehicle_id`

func scanReservationWithRefs(s interface{ Scan(...any) error }) (*domain.Reservation, error) {
	rv := &domain.Reservation{}
	var fuelStart, fuelEnd, cancelledBy sql.NullString
	client := &domain.Client{}
	vehicle := &domain.Vehicle{}
	err := s.Scan(&rv.ID, &rv.ReservationNumber, &rv.ClientID, &rv.VehicleID,
		&rv.StartDate, &rv.EndDate, &rv.ActualStartDate, &rv.ActualEndDate, &rv.Status,
		&rv.DailyRate, &rv.TotalDays, &rv.BaseAmount, &rv.TotalAmount,
		&rv.Deposit.Amount, &rv.Deposit.Paid, &rv.Deposit.PaidDate,
		&rv.PickupLocation, &rv.ReturnLocation, &rv.MileageStart, &rv.MileageEnd,
		&fuelStart, &fuelEnd, &rv.Notes,
		&rv.CancellationReason, &cancelledBy, &rv.CancelledDate,
		&rv.CreatedOn, &rv.UpdatedOn,
		&client.FirstName, &client.LastName, &client.Email, &client.Phone,
		&vehicle.Brand, &vehicle.Model, &vehicle.LicensePlate, &vehicle.DailyRate)
	if err != nil {
		return nil, mapStorageError(err)
	}
	rv.FuelLevelStart = domain.FuelLevel(fuelStart.String)
	rv.FuelLevelEnd = domain.FuelLevel(fuelEnd.String)
	rv.CancelledBy = domain.CancelledBy(cancelledBy.String)
	client.ID = rv.ClientID
	vehicle.ID = rv.VehicleID
	rv.Client = client
	rv.Vehicle = vehicle
	return rv, nil
}

func (r *reservationRepository) List(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, int, error) {
	query := listQuery + ` WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND r.status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.ClientID != 0 {
		query += fmt.Sprintf(" AND r.client_id = $%d", argIdx)
		args = append(args, filter.ClientID)
		argIdx++
	}
	if filter.VehicleID != 0 {
		query += fmt.Sprintf(" AND r.vehicle_id = $%d", argIdx)
		args = append(args, filter.VehicleID)
		argIdx++
	}
	if filter.StartFrom != nil && filter.StartTo != nil {
		query += fmt.Sprintf(" AND r.start_date >= $%d AND r.start_date <= $%d", argIdx, argIdx+1)
		args = append(args, *filter.StartFrom, *filter.StartTo)
		argIdx += 2
	}

	var count int
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, mapStorageError(err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY r.created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	reservations, err := r.queryWithRefs(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return reservations, count, nil
}

func (r *reservationRepository) queryWithRefs(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		rv, err := scanReservationWithRefs(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range reservations {
		if err := r.loadFees(ctx, &reservations[i]); err != nil {
			return nil, err
		}
	}
	return reservations, nil
}

func (r *reservationRepository) FindConflict(ctx context.Context, vehicleID int64, start, end time.Time, excludeID int64) (*domain.Reservation, error) {
	// Closed-interval overlap: a reservation ending on day D blocks another
	// starting on day D.
	query := `SELECT ` + reservationColumns + ` FROM reservations r
	          WHERE r.vehicle_id = $1
	            AND r.status IN ($2, $3)
	            AND r.start_date <= $4
	            AND r.end_date >= $5
	            AND ($6 = 0 OR r.id <> $6)
	          LIMIT 1`
	rv, err := scanReservation(r.db.QueryRowContext(ctx, query,
		vehicleID, domain.ReservationStatusConfirmed, domain.ReservationStatusActive,
		end, start, excludeID))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *reservationRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	query := listQuery + ` WHERE r.status = $1 AND r.end_date < $2 ORDER BY r.end_date`
	return r.queryWithRefs(ctx, query, domain.ReservationStatusActive, now)
}

func (r *reservationRepository) ListBetween(ctx context.Context, start, end time.Time) ([]domain.Reservation, error) {
	query := listQuery + ` WHERE r.status IN ($1, $2)
	            AND r.start_date <= $3 AND r.end_date >= $4
	          ORDER BY r.start_date`
	return r.queryWithRefs(ctx, query,
		domain.ReservationStatusConfirmed, domain.ReservationStatusActive, end, start)
}

func (r *reservationRepository) CountBlockingByClient(ctx context.Context, clientID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM reservations WHERE client_id = $1 AND status IN ($2, $3)`,
		clientID, domain.ReservationStatusConfirmed, domain.ReservationStatusActive).Scan(&count)
	return count, mapStorageError(err)
}

func (r *reservationRepository) CountBlockingByVehicle(ctx context.Context, vehicleID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM reservations WHERE vehicle_id = $1 AND status IN ($2, $3)`,
		vehicleID, domain.ReservationStatusConfirmed, domain.ReservationStatusActive).Scan(&count)
	return count, mapStorageError(err)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
