package utils

import (
	"math"
	"time"

	"autofleet-backoffice/internal/domain"
)

const day = 24 * time.Hour

// RentalDays computes the billable day count for an interval: the elapsed
// time rounded up to whole days, never less than one. The absolute value of
// the difference is used, so callers must enforce start < end themselves.
func RentalDays(start, end time.Time) int {
	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(float64(diff) / float64(day)))
	if days < 1 {
		days = 1
	}
	return days
}

// BaseAmount is the rental charge excluding additional fees.
func BaseAmount(dailyRate float64, totalDays int) float64 {
	return dailyRate * float64(totalDays)
}

// TotalAmount is the base amount plus the sum of all additional fees.
func TotalAmount(baseAmount float64, fees []domain.AdditionalFee) float64 {
	total := baseAmount
	for _, fee := range fees {
		total += fee.Amount
	}
	return total
}

// Reprice recomputes TotalDays, BaseAmount and TotalAmount on a reservation
// from its planned interval. Called before every persist so the stored
// amounts always satisfy total = base + fees.
func Reprice(r *domain.Reservation) {
	r.TotalDays = RentalDays(r.StartDate, r.EndDate)
	r.BaseAmount = BaseAmount(r.DailyRate, r.TotalDays)
	r.TotalAmount = TotalAmount(r.BaseAmount, r.AdditionalFees)
}

// RepriceActual recomputes the amounts from the actual rental interval,
// used when a rental completes early or late. Falls back to the planned
// start when no actual start was recorded.
func RepriceActual(r *domain.Reservation) {
	if r.ActualEndDate == nil {
		Reprice(r)
		return
	}
	start := r.StartDate
	if r.ActualStartDate != nil {
		start = *r.ActualStartDate
	}
	r.TotalDays = RentalDays(start, *r.ActualEndDate)
	r.BaseAmount = BaseAmount(r.DailyRate, r.TotalDays)
	r.TotalAmount = TotalAmount(r.BaseAmount, r.AdditionalFees)
}
