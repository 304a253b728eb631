package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"
)

type dashboardService struct {
	dashboardRepo   repository.DashboardRepository
	vehicleRepo     repository.VehicleRepository
	clientRepo      repository.ClientRepository
	reservationRepo repository.ReservationRepository
}

func NewDashboardService(
	dashboardRepo repository.DashboardRepository,
	vehicleRepo repository.VehicleRepository,
	clientRepo repository.ClientRepository,
	reservationRepo repository.ReservationRepository,
) DashboardService {
	return &dashboardService{
		dashboardRepo:   dashboardRepo,
		vehicleRepo:     vehicleRepo,
		clientRepo:      clientRepo,
		reservationRepo: reservationRepo,
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := time.Now()

	total, err := s.dashboardRepo.CountVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vehicles: %w", err)
	}
	stats.Vehicles.Total = total
	if stats.Vehicles.ByStatus, err = s.vehicleRepo.StatusCounts(ctx); err != nil {
		return nil, fmt.Errorf("vehicle status counts: %w", err)
	}

	if stats.Clients.Active, err = s.dashboardRepo.CountClientsByStatus(ctx, domain.ClientStatusActive); err != nil {
		return nil, err
	}
	if stats.Clients.Blacklisted, err = s.dashboardRepo.CountClientsByStatus(ctx, domain.ClientStatusBlacklisted); err != nil {
		return nil, err
	}

	counts := []struct {
		status domain.ReservationStatus
		dest   *int
	}{
		{domain.ReservationStatusPending, &stats.Reservations.Pending},
		{domain.ReservationStatusConfirmed, &stats.Reservations.Confirmed},
		{domain.ReservationStatusActive, &stats.Reservations.Active},
		{domain.ReservationStatusCompleted, &stats.Reservations.Completed},
	}
	for _, c := range counts {
		if *c.dest, err = s.dashboardRepo.CountReservationsByStatus(ctx, c.status); err != nil {
			return nil, err
		}
	}
	if stats.Reservations.Overdue, err = s.dashboardRepo.CountOverdue(ctx, now); err != nil {
		return nil, err
	}

	if stats.Revenue.Total, err = s.dashboardRepo.RevenueTotal(ctx, []domain.ReservationStatus{domain.ReservationStatusCompleted}); err != nil {
		return nil, err
	}
	if stats.Revenue.Monthly, err = s.dashboardRepo.MonthlyRevenue(ctx, now.Year()); err != nil {
		return nil, err
	}
	if stats.Deposits, err = s.dashboardRepo.HeldDeposits(ctx); err != nil {
		return nil, err
	}
	if stats.TopClients, err = s.clientRepo.TopBySpent(ctx, 5); err != nil {
		return nil, err
	}
	if stats.Recent, err = s.dashboardRepo.RecentReservations(ctx, 5); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *dashboardService) Revenue(ctx context.Context, period string, year int) ([]repository.RevenueBucket, error) {
	switch period {
	case "":
		period = "month"
	case "month", "quarter", "year":
	default:
		verr := &domain.ValidationError{}
		verr.Add("period", "must be month, quarter or year")
		return nil, verr
	}
	if year == 0 {
		year = time.Now().Year()
	}
	return s.dashboardRepo.RevenueByPeriod(ctx, period, year)
}

// Alerts recomputes the operational warnings from live data. Nothing here
// mutates state; the same scan backs the dashboard endpoint and the nightly
// email sweep.
func (s *dashboardService) Alerts(ctx context.Context) ([]domain.Alert, error) {
	now := time.Now()
	var alerts []domain.Alert

	overdue, err := s.reservationRepo.ListOverdue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("overdue scan: %w", err)
	}
	for _, r := range overdue {
		daysLate := int(now.Sub(r.EndDate).Hours() / 24)
		alert := domain.Alert{
			Type:     domain.AlertTypeOverdue,
			Priority: domain.AlertPriorityHigh,
			Title:    "Overdue rental " + r.ReservationNumber,
			Message:  fmt.Sprintf("Reservation %s was due back on %s (%d day(s) late)", r.ReservationNumber, r.EndDate.Format("2006-01-02"), daysLate),
			Data: map[string]string{
				"reservation_id": strconv.FormatInt(r.ID, 10),
				"vehicle_id":     strconv.FormatInt(r.VehicleID, 10),
				"client_id":      strconv.FormatInt(r.ClientID, 10),
			},
		}
		if r.Client != nil {
			alert.Data["client"] = r.Client.FullName()
		}
		if r.Vehicle != nil {
			alert.Data["vehicle"] = r.Vehicle.FullName()
		}
		alerts = append(alerts, alert)
	}

	vehicles, err := s.vehicleRepo.ListExpiringDocuments(ctx, now.Add(domain.DefaultExpiryWindow))
	if err != nil {
		return nil, fmt.Errorf("document expiry scan: %w", err)
	}
	for _, v := range vehicles {
		for _, doc := range v.ExpiringDocuments(now, domain.DefaultExpiryWindow) {
			alerts = append(alerts, domain.Alert{
				Type:     domain.AlertTypeDocumentExpiry,
				Priority: expiryPriority(now, doc.ExpiryDate),
				Title:    fmt.Sprintf("%s expiring for %s", doc.Type, v.FullName()),
				Message:  fmt.Sprintf("The %s document of %s expires on %s", doc.Type, v.FullName(), doc.ExpiryDate.Format("2006-01-02")),
				Data: map[string]string{
					"vehicle_id":    strconv.FormatInt(v.ID, 10),
					"document_type": string(doc.Type),
				},
			})
		}
	}

	clients, err := s.clientRepo.ListExpiringLicenses(ctx, now.Add(domain.DefaultExpiryWindow))
	if err != nil {
		return nil, fmt.Errorf("license expiry scan: %w", err)
	}
	for _, c := range clients {
		alerts = append(alerts, domain.Alert{
			Type:     domain.AlertTypeLicenseExpiry,
			Priority: expiryPriority(now, c.LicenseExpiryDate),
			Title:    "License expiring for " + c.FullName(),
			Message:  fmt.Sprintf("The driving license of %s expires on %s", c.FullName(), c.LicenseExpiryDate.Format("2006-01-02")),
			Data: map[string]string{
				"client_id": strconv.FormatInt(c.ID, 10),
			},
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].PriorityWeight() > alerts[j].PriorityWeight()
	})
	return alerts, nil
}

// expiryPriority grades a looming expiry: high within a week, medium inside
// the warning window, low once already handled elsewhere.
func expiryPriority(now, expiry time.Time) domain.AlertPriority {
	if !expiry.After(now.Add(7 * 24 * time.Hour)) {
		return domain.AlertPriorityHigh
	}
	return domain.AlertPriorityMedium
}
