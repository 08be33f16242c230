package common

import (
	"sync"
	"testing"

	"tixgate/src/types"
	"tixgate/src/utils"

	"github.com/stretchr/testify/assert"
)

func TestReserveRejectsZeroQuantity(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 10, types.EVENT_PUBLISHED)

	err := Reserve(d, event.ID, 0)
	assert.ErrorIs(t, err, types.ErrInvalidQuantity)

	after := reloadEvent(t, d, event.ID)
	assert.Equal(t, uint(10), after.AvailableTickets)
	assert.Equal(t, uint(0), after.SoldTickets)
}

func TestReserveOutOfStock(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 3, types.EVENT_PUBLISHED)

	err := Reserve(d, event.ID, 4)
	assert.ErrorIs(t, err, types.ErrOutOfStock)

	after := reloadEvent(t, d, event.ID)
	assert.Equal(t, uint(3), after.AvailableTickets)
	assert.Equal(t, uint(0), after.SoldTickets)
}

func TestReserveUnknownEvent(t *testing.T) {
	d := newTestDB(t)

	err := Reserve(d, 999, 1)
	assert.ErrorIs(t, err, types.ErrEventNotFound)
}

func TestReserveOnDraftEvent(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 5, types.EVENT_DRAFT)

	err := Reserve(d, event.ID, 1)
	assert.ErrorIs(t, err, types.ErrEventNotOpen)
}

func TestReserveOnArchivedEvent(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 5, types.EVENT_PUBLISHED)
	assert.NoError(t, utils.ArchiveEvent(event.ID))

	// The soft-deleted row is still visible to the ledger.
	err := Reserve(d, event.ID, 1)
	assert.ErrorIs(t, err, types.ErrEventNotOpen)
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 10, types.EVENT_PUBLISHED)

	assert.NoError(t, Reserve(d, event.ID, 4))
	mid := reloadEvent(t, d, event.ID)
	assert.Equal(t, uint(6), mid.AvailableTickets)
	assert.Equal(t, uint(4), mid.SoldTickets)
	assert.Equal(t, mid.TotalTickets, mid.AvailableTickets+mid.SoldTickets)

	assert.NoError(t, Release(d, event.ID, 4))
	after := reloadEvent(t, d, event.ID)
	assert.Equal(t, uint(10), after.AvailableTickets)
	assert.Equal(t, uint(0), after.SoldTickets)
}

func TestReleaseCannotExceedSold(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 10, types.EVENT_PUBLISHED)
	assert.NoError(t, Reserve(d, event.ID, 2))

	err := Release(d, event.ID, 3)
	assert.ErrorIs(t, err, types.ErrInvalidQuantity)

	after := reloadEvent(t, d, event.ID)
	assert.Equal(t, uint(8), after.AvailableTickets)
	assert.Equal(t, uint(2), after.SoldTickets)
}

func TestConcurrentReserveNoOversell(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 5, types.EVENT_PUBLISHED)

	const attempts = 20
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- Reserve(d, event.ID, 1)
		}()
	}
	wg.Wait()
	close(results)

	granted, refused := 0, 0
	for err := range results {
		if err == nil {
			granted++
			continue
		}
		assert.ErrorIs(t, err, types.ErrOutOfStock)
		refused++
	}
	assert.Equal(t, 5, granted)
	assert.Equal(t, 15, refused)

	after := reloadEvent(t, d, event.ID)
	assert.Equal(t, uint(0), after.AvailableTickets)
	assert.Equal(t, uint(5), after.SoldTickets)
}
