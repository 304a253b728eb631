package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"
)

type dashboardRepository struct {
	db DBTX
}

func NewDashboardRepository(db DBTX) repository.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) CountVehicles(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM vehicles`).Scan(&count)
	return count, mapStorageError(err)
}

func (r *dashboardRepository) CountClientsByStatus(ctx context.Context, status domain.ClientStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM clients WHERE status = $1`, status).Scan(&count)
	return count, mapStorageError(err)
}

func (r *dashboardRepository) CountReservationsByStatus(ctx context.Context, status domain.ReservationStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM reservations WHERE status = $1`, status).Scan(&count)
	return count, mapStorageError(err)
}

func (r *dashboardRepository) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM reservations WHERE status = $1 AND end_date < $2`,
		domain.ReservationStatusActive, now).Scan(&count)
	return count, mapStorageError(err)
}

func (r *dashboardRepository) RevenueTotal(ctx context.Context, statuses []domain.ReservationStatus) (float64, error) {
	query := `SELECT COALESCE(sum(total_amount), 0) FROM reservations WHERE status = ANY($1)`
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	var total float64
	err := r.db.QueryRowContext(ctx, query, pq.Array(names)).Scan(&total)
	return total, mapStorageError(err)
}

func (r *dashboardRepository) MonthlyRevenue(ctx context.Context, year int) ([]repository.MonthlyRevenue, error) {
	query := `SELECT EXTRACT(MONTH FROM start_date)::int AS month,
	                 COALESCE(sum(total_amount), 0), count(*)
	            FROM reservations
	           WHERE status = $1 AND EXTRACT(YEAR FROM start_date) = $2
	           GROUP BY month ORDER BY month`
	rows, err := r.db.QueryContext(ctx, query, domain.ReservationStatusCompleted, year)
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	var result []repository.MonthlyRevenue
	for rows.Next() {
		var m repository.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Revenue, &m.Count); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// RevenueByPeriod buckets completed-reservation revenue by month, quarter or
// year. The period selector is validated by the service layer before it
// reaches the query text.
func (r *dashboardRepository) RevenueByPeriod(ctx context.Context, period string, year int) ([]repository.RevenueBucket, error) {
	var bucketExpr, where string
	switch period {
	case "month":
		bucketExpr = "EXTRACT(MONTH FROM start_date)::int"
		where = "AND EXTRACT(YEAR FROM start_date) = $2"
	case "quarter":
		bucketExpr = "EXTRACT(QUARTER FROM start_date)::int"
		where = "AND EXTRACT(YEAR FROM start_date) = $2"
	case "year":
		bucketExpr = "EXTRACT(YEAR FROM start_date)::int"
		where = "AND EXTRACT(YEAR FROM start_date) >= $2 - 4"
	default:
		return nil, fmt.Errorf("unsupported revenue period %q", period)
	}
	query := fmt.Sprintf(`SELECT %s AS bucket,
	                 COALESCE(sum(total_amount), 0), count(*),
	                 COALESCE(avg(total_amount), 0)
	            FROM reservations
	           WHERE status = $1 %s
	           GROUP BY bucket ORDER BY bucket`, bucketExpr, where)
	rows, err := r.db.QueryContext(ctx, query, domain.ReservationStatusCompleted, year)
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	var result []repository.RevenueBucket
	for rows.Next() {
		var b repository.RevenueBucket
		if err := rows.Scan(&b.Bucket, &b.Revenue, &b.Count, &b.AvgRevenue); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *dashboardRepository) HeldDeposits(ctx context.Context) (repository.DepositSummary, error) {
	query := `SELECT COALESCE(sum(deposit_amount), 0), count(*)
	            FROM reservations
	           WHERE deposit_paid AND status IN ($1, $2)`
	var summary repository.DepositSummary
	err := r.db.QueryRowContext(ctx, query,
		domain.ReservationStatusConfirmed, domain.ReservationStatusActive,
	).Scan(&summary.Total, &summary.Count)
	return summary, mapStorageError(err)
}

func (r *dashboardRepository) RecentReservations(ctx context.Context, limit int) ([]domain.Reservation, error) {
	if limit <= 0 {
		limit = 5
	}
	reservations := &reservationRepository{db: r.db}
	query := listQuery + ` ORDER BY r.created_on DESC LIMIT $1`
	return reservations.queryWithRefs(ctx, query, limit)
}
