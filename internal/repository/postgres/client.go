package postgres

import (
	"context"
	"fmt"
	"time"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"
)

type clientRepository struct {
	db DBTX
}

func NewClientRepository(db DBTX) repository.ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `id, first_name, last_name, email, phone, date_of_birth, national_id,
       license_number, license_expiry_date, status, blacklist_reason, notes,
       total_rentals, total_spent, created_on, updated_on`

func (r *clientRepository) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (first_name, last_name, email, phone, date_of_birth, national_id,
	              license_number, license_expiry_date, status, blacklist_reason, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id, total_rentals, total_spent, created_on, updated_on`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		c.FirstName, c.LastName, c.Email, c.Phone, c.DateOfBirth, c.NationalID,
		c.LicenseNumber, c.LicenseExpiryDate, c.Status, c.BlacklistReason, c.Notes, now, now,
	).Scan(&c.ID, &c.TotalRentals, &c.TotalSpent, &c.CreatedOn, &c.UpdatedOn)
	return mapStorageError(err)
}

func scanClient(s interface{ Scan(...any) error }) (*domain.Client, error) {
	c := &domain.Client{}
	err := s.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.DateOfBirth, &c.NationalID,
		&c.LicenseNumber, &c.LicenseExpiryDate, &c.Status, &c.BlacklistReason, &c.Notes,
		&c.TotalRentals, &c.TotalSpent, &c.CreatedOn, &c.UpdatedOn)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return c, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(r.db.QueryRowContext(ctx, query, id))
}

func (r *clientRepository) Update(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET first_name=$1, last_name=$2, email=$3, phone=$4, date_of_birth=$5,
	              national_id=$6, license_number=$7, license_expiry_date=$8, status=$9,
	              blacklist_reason=$10, notes=$11, updated_on=$12
	          WHERE id=$13`
	res, err := r.db.ExecContext(ctx, query,
		c.FirstName, c.LastName, c.Email, c.Phone, c.DateOfBirth,
		c.NationalID, c.LicenseNumber, c.LicenseExpiryDate, c.Status,
		c.BlacklistReason, c.Notes, time.Now(), c.ID)
	if err != nil {
		return mapStorageError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return mapStorageError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *clientRepository) List(ctx context.Context, filter repository.ClientFilter) ([]domain.Client, int, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR national_id ILIKE $%d OR license_number ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx, argIdx)
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

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, *c)
	}
	return clients, count, rows.Err()
}

func (r *clientRepository) ApplyCompletedRental(ctx context.Context, id int64, amount float64) error {
	query := `UPDATE clients
	          SET total_rentals = total_rentals + 1,
	              total_spent = total_spent + $1,
	              updated_on = $2
	          WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, amount, time.Now(), id)
	if err != nil {
		return mapStorageError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *clientRepository) ListExpiringLicenses(ctx context.Context, cutoff time.Time) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients
	          WHERE status = $1 AND license_expiry_date <= $2
	          ORDER BY license_expiry_date`
	rows, err := r.db.QueryContext(ctx, query, domain.ClientStatusActive, cutoff)
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

func (r *clientRepository) TopBySpent(ctx context.Context, limit int) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients
	          WHERE status = $1 ORDER BY total_spent DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, domain.ClientStatusActive, limit)
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}
