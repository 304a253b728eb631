package postgres

import (
	"context"
	"fmt"
	"time"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"
)

type vehicleRepository struct {
	db DBTX
}

func NewVehicleRepository(db DBTX) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

const vehicleColumns = `id, brand, model, year, license_plate, fuel_type, daily_rate, mileage, status,
       color, transmission, seats,
       registration_name, registration_expiry, insurance_name, insurance_expiry,
       inspection_name, inspection_expiry, notes, created_on, updated_on`

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `INSERT INTO vehicles (brand, model, year, license_plate, fuel_type, daily_rate, mileage, status,
	              color, transmission, seats,
	              registration_name, registration_expiry, insurance_name, insurance_expiry,
	              inspection_name, inspection_expiry, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	          RETURNING id, created_on, updated_on`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		v.Brand, v.Model, v.Year, v.LicensePlate, v.FuelType, v.DailyRate, v.Mileage, v.Status,
		v.Color, v.Transmission, v.Seats,
		v.Documents.Registration.Name, v.Documents.Registration.ExpiryDate,
		v.Documents.Insurance.Name, v.Documents.Insurance.ExpiryDate,
		v.Documents.Inspection.Name, v.Documents.Inspection.ExpiryDate,
		v.Notes, now, now,
	).Scan(&v.ID, &v.CreatedOn, &v.UpdatedOn)
	return mapStorageError(err)
}

func scanVehicle(s interface{ Scan(...any) error }) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	err := s.Scan(&v.ID, &v.Brand, &v.Model, &v.Year, &v.LicensePlate, &v.FuelType, &v.DailyRate,
		&v.Mileage, &v.Status, &v.Color, &v.Transmission, &v.Seats,
		&v.Documents.Registration.Name, &v.Documents.Registration.ExpiryDate,
		&v.Documents.Insurance.Name, &v.Documents.Insurance.ExpiryDate,
		&v.Documents.Inspection.Name, &v.Documents.Inspection.ExpiryDate,
		&v.Notes, &v.CreatedOn, &v.UpdatedOn)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return v, nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	return scanVehicle(r.db.QueryRowContext(ctx, query, id))
}

func (r *vehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	query := `UPDATE vehicles SET brand=$1, model=$2, year=$3, license_plate=$4, fuel_type=$5,
	              daily_rate=$6, mileage=$7, status=$8, color=$9, transmission=$10, seats=$11,
	              registration_name=$12, registration_expiry=$13, insurance_name=$14, insurance_expiry=$15,
	              inspection_name=$16, inspection_expiry=$17, notes=$18, updated_on=$19
	          WHERE id=$20`
	res, err := r.db.ExecContext(ctx, query,
		v.Brand, v.Model, v.Year, v.LicensePlate, v.FuelType,
		v.DailyRate, v.Mileage, v.Status, v.Color, v.Transmission, v.Seats,
		v.Documents.Registration.Name, v.Documents.Registration.ExpiryDate,
		v.Documents.Insurance.Name, v.Documents.Insurance.ExpiryDate,
		v.Documents.Inspection.Name, v.Documents.Inspection.ExpiryDate,
		v.Notes, time.Now(), v.ID)
	if err != nil {
		return mapStorageError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return mapStorageError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *vehicleRepository) List(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, int, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.FuelType != "" {
		query += fmt.Sprintf(" AND fuel_type = $%d", argIdx)
		args = append(args, filter.FuelType)
		argIdx++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (brand ILIKE $%d OR model ILIKE $%d OR license_plate ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	var count int
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, mapStorageError(err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapStorageError(err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, count, rows.Err()
}

func (r *vehicleRepository) StatusCounts(ctx context.Context) (map[domain.VehicleStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, count(*) FROM vehicles GROUP BY status`)
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	counts := make(map[domain.VehicleStatus]int)
	for rows.Next() {
		var status domain.VehicleStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *vehicleRepository) ListExpiringDocuments(ctx context.Context, cutoff time.Time) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles
	          WHERE registration_expiry <= $1 OR insurance_expiry <= $1 OR inspection_expiry <= $1
	          ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}
