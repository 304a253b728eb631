package service

import (
	"context"
	"testing"
	"time"

	"autofleet-backoffice/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddClient(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults to active", func(t *testing.T) {
		store := newFakeStore()
		svc := NewClientService(store.Clients(), store.Reservations())

		client := testClient()
		client.Status = ""
		require.NoError(t, svc.AddClient(ctx, client))
		assert.Equal(t, domain.ClientStatusActive, client.Status)
	})

	t.Run("Rejects clients under the minimum age", func(t *testing.T) {
		store := newFakeStore()
		svc := NewClientService(store.Clients(), store.Reservations())

		client := testClient()
		client.DateOfBirth = time.Now().AddDate(-19, 0, 0)
		err := svc.AddClient(ctx, client)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "date_of_birth", verr.Fields[0].Field)
	})
}

func TestBlacklist(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	client := store.addClient(testClient())
	svc := NewClientService(store.Clients(), store.Reservations())

	blacklisted, err := svc.Blacklist(ctx, client.ID, "repeated damage")
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusBlacklisted, blacklisted.Status)
	assert.Equal(t, "repeated damage", blacklisted.BlacklistReason)

	reinstated, err := svc.Reinstate(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusActive, reinstated.Status)
	assert.Empty(t, reinstated.BlacklistReason)
}

func TestDeleteClient(t *testing.T) {
	ctx := context.Background()

	t.Run("Blocked by active reservation", func(t *testing.T) {
		store := newFakeStore()
		client := store.addClient(testClient())
		store.reservations[1] = &domain.Reservation{
			ID:       1,
			ClientID: client.ID,
			Status:   domain.ReservationStatusActive,
		}
		svc := NewClientService(store.Clients(), store.Reservations())

		err := svc.DeleteClient(ctx, client.ID)
		assert.ErrorIs(t, err, domain.ErrHasActiveReservations)
	})

	t.Run("Client with only history deleted", func(t *testing.T) {
		store := newFakeStore()
		client := store.addClient(testClient())
		store.reservations[1] = &domain.Reservation{
			ID:       1,
			ClientID: client.ID,
			Status:   domain.ReservationStatusCompleted,
		}
		svc := NewClientService(store.Clients(), store.Reservations())

		require.NoError(t, svc.DeleteClient(ctx, client.ID))
		assert.NotContains(t, store.clients, client.ID)
	})
}
