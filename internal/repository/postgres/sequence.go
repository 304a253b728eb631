package postgres

import (
	"context"

	"autofleet-backoffice/internal/repository"
)

type sequenceRepository struct {
	db DBTX
}

func NewSequenceRepository(db DBTX) repository.SequenceRepository {
	return &sequenceRepository{db: db}
}

// NextReservationNumber increments the per-year counter row in a single
// statement, so concurrent creations never observe the same value.
func (r *sequenceRepository) NextReservationNumber(ctx context.Context, year int) (int64, error) {
	query := `INSERT INTO reservation_sequences (year, last_value)
	          VALUES ($1, 1)
	          ON CONFLICT (year)
	          DO UPDATE SET last_value = reservation_sequences.last_value + 1
	          RETURNING last_value`
	var value int64
	if err := r.db.QueryRowContext(ctx, query, year).Scan(&value); err != nil {
		return 0, mapStorageError(err)
	}
	return value, nil
}
