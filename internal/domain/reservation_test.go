package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to ReservationStatus
	}{
		{ReservationStatusPending, ReservationStatusConfirmed},
		{ReservationStatusPending, ReservationStatusCancelled},
		{ReservationStatusConfirmed, ReservationStatusActive},
		{ReservationStatusConfirmed, ReservationStatusCancelled},
		{ReservationStatusActive, ReservationStatusCompleted},
		{ReservationStatusActive, ReservationStatusCancelled},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	forbidden := []struct {
		from, to ReservationStatus
	}{
		{ReservationStatusPending, ReservationStatusActive},
		{ReservationStatusPending, ReservationStatusCompleted},
		{ReservationStatusConfirmed, ReservationStatusCompleted},
		{ReservationStatusConfirmed, ReservationStatusPending},
		{ReservationStatusActive, ReservationStatusConfirmed},
		{ReservationStatusCompleted, ReservationStatusActive},
		{ReservationStatusCompleted, ReservationStatusCancelled},
		{ReservationStatusCancelled, ReservationStatusPending},
		{ReservationStatusCancelled, ReservationStatusConfirmed},
	}
	for _, tt := range forbidden {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s should be rejected", tt.from, tt.to)
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, ReservationStatusCompleted.IsTerminal())
	assert.True(t, ReservationStatusCancelled.IsTerminal())
	assert.False(t, ReservationStatusPending.IsTerminal())
	assert.False(t, ReservationStatusActive.IsTerminal())

	assert.True(t, ReservationStatusConfirmed.IsBlocking())
	assert.True(t, ReservationStatusActive.IsBlocking())
	assert.False(t, ReservationStatusPending.IsBlocking())
	assert.False(t, ReservationStatusCompleted.IsBlocking())
	assert.False(t, ReservationStatusCancelled.IsBlocking())

	assert.True(t, ReservationStatusPending.Deletable())
	assert.True(t, ReservationStatusCancelled.Deletable())
	assert.True(t, ReservationStatusCompleted.Deletable())
	assert.False(t, ReservationStatusConfirmed.Deletable())
	assert.False(t, ReservationStatusActive.Deletable())
}

func TestFeesTotal(t *testing.T) {
	r := &Reservation{
		AdditionalFees: []AdditionalFee{
			{Type: FeeTypeFuel, Amount: 40},
			{Type: FeeTypeDamage, Amount: 120.5},
		},
	}
	assert.Equal(t, 160.5, r.FeesTotal())

	empty := &Reservation{}
	assert.Equal(t, 0.0, empty.FeesTotal())
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("Active past end date", func(t *testing.T) {
		r := &Reservation{Status: ReservationStatusActive, EndDate: now.Add(-24 * time.Hour)}
		assert.True(t, r.IsOverdue(now))
	})

	t.Run("Active before end date", func(t *testing.T) {
		r := &Reservation{Status: ReservationStatusActive, EndDate: now.Add(24 * time.Hour)}
		assert.False(t, r.IsOverdue(now))
	})

	t.Run("Completed rentals are never overdue", func(t *testing.T) {
		r := &Reservation{Status: ReservationStatusCompleted, EndDate: now.Add(-24 * time.Hour)}
		assert.False(t, r.IsOverdue(now))
	})
}
