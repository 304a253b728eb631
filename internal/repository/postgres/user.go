package postgres

import (
	"context"
	"time"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, active, last_login, created_on, updated_on`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (name, email, password_hash, role, active, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_on, updated_on`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.Active, now, now,
	).Scan(&user.ID, &user.CreatedOn, &user.UpdatedOn)
	return mapStorageError(err)
}

func scanUser(s interface{ Scan(...any) error }) (*domain.User, error) {
	user := &domain.User{}
	err := s.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&user.Active, &user.LastLogin, &user.CreatedOn, &user.UpdatedOn)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET name=$1, email=$2, role=$3, active=$4, updated_on=$5 WHERE id=$6`
	res, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.Role, user.Active, time.Now(), user.ID)
	if err != nil {
		return mapStorageError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash=$1, updated_on=$2 WHERE id=$3`,
		passwordHash, time.Now(), id)
	if err != nil {
		return mapStorageError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login=$1 WHERE id=$2`, at, id)
	return mapStorageError(err)
}
