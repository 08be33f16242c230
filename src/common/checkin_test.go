package common

import (
	"sync"
	"testing"
	"time"

	"tixgate/src/models"
	"tixgate/src/types"
	"tixgate/src/utils"

	"github.com/stretchr/testify/assert"
)

func seedBooking(t *testing.T, eventId uint) (*models.Booking, string) {
	t.Helper()
	booking, err := CreateBooking(7, &types.CreateBookingRequestBody{
		EventID:          eventId,
		Qty:              1,
		RegistrationType: string(types.REGISTRATION_PURCHASE),
	})
	if err != nil {
		t.Fatalf("error seeding booking: %s", err.Error())
	}
	payload := utils.EncodeCredential(&utils.Credential{
		EventID:      booking.EventID,
		BookingID:    booking.ID,
		TicketSerial: booking.TicketSerial.String(),
	})
	return booking, payload
}

func TestCheckInStampsBooking(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 5, types.EVENT_PUBLISHED)
	_, payload := seedBooking(t, event.ID)

	booking, err := CheckIn(&CheckInParams{
		Payload: payload,
		EventID: event.ID,
		StaffID: 42,
		Method:  types.CHECKIN_APP,
	})
	assert.NoError(t, err)
	assert.Equal(t, types.BOOKING_USED, booking.Status)
	assert.NotNil(t, booking.CheckedInAt)
	assert.Equal(t, uint(42), *booking.CheckedInBy)
	assert.Equal(t, types.CHECKIN_APP, *booking.CheckInMethod)
}

func TestCheckInSecondScanReportsFirst(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 5, types.EVENT_PUBLISHED)
	_, payload := seedBooking(t, event.ID)

	first, err := CheckIn(&CheckInParams{Payload: payload, EventID: event.ID, StaffID: 42})
	assert.NoError(t, err)

	_, err = CheckIn(&CheckInParams{Payload: payload, EventID: event.ID, StaffID: 99})
	assert.ErrorIs(t, err, types.ErrAlreadyUsed)
	var used *types.AlreadyUsedError
	assert.ErrorAs(t, err, &used)
	assert.Equal(t, uint(42), used.CheckedInBy)
	assert.WithinDuration(t, *first.CheckedInAt, used.CheckedInAt, time.Second)
}

func TestCheckInConcurrentScansAdmitOnce(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 5, types.EVENT_PUBLISHED)
	_, payload := seedBooking(t, event.ID)

	const scanners = 8
	results := make(chan error, scanners)
	var wg sync.WaitGroup
	for i := range scanners {
		wg.Add(1)
		go func(staffId uint) {
			defer wg.Done()
			_, err := CheckIn(&CheckInParams{Payload: payload, EventID: event.ID, StaffID: staffId})
			results <- err
		}(uint(i + 1))
	}
	wg.Wait()
	close(results)

	admitted, rejected := 0, 0
	for err := range results {
		if err == nil {
			admitted++
			continue
		}
		assert.ErrorIs(t, err, types.ErrAlreadyUsed)
		rejected++
	}
	assert.Equal(t, 1, admitted)
	assert.Equal(t, scanners-1, rejected)
}

func TestCheckInWrongEvent(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 5, types.EVENT_PUBLISHED)
	other := seedEvent(t, d, 5, types.EVENT_PUBLISHED)
	booking, payload := seedBooking(t, event.ID)

	_, err := CheckIn(&CheckInParams{Payload: payload, EventID: other.ID, StaffID: 42})
	assert.ErrorIs(t, err, types.ErrWrongEvent)

	// The ticket stays redeemable at its own gate.
	var after models.Booking
	assert.NoError(t, d.Where(&models.Booking{ID: booking.ID}).First(&after).Error)
	assert.Equal(t, types.BOOKING_CONFIRMED, after.Status)
}

func TestCheckInCancelledTicket(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 5, types.EVENT_PUBLISHED)
	booking, payload := seedBooking(t, event.ID)
	_, err := CancelBooking(booking.ID)
	assert.NoError(t, err)

	_, err = CheckIn(&CheckInParams{Payload: payload, EventID: event.ID, StaffID: 42})
	assert.ErrorIs(t, err, types.ErrTicketCancelled)
}

func TestCheckInMalformedPayload(t *testing.T) {
	newTestDB(t)

	for _, payload := range []string{"", "not a credential", "TG1.%%%"} {
		_, err := CheckIn(&CheckInParams{Payload: payload, EventID: 1, StaffID: 42})
		assert.ErrorIs(t, err, types.ErrMalformedCredential)
	}
}

func TestCheckInUnknownTicket(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 5, types.EVENT_PUBLISHED)
	booking, _ := seedBooking(t, event.ID)

	// Referenced booking does not exist.
	ghost := utils.EncodeCredential(&utils.Credential{
		EventID:      event.ID,
		BookingID:    booking.ID + 100,
		TicketSerial: booking.TicketSerial.String(),
	})
	_, err := CheckIn(&CheckInParams{Payload: ghost, EventID: event.ID, StaffID: 42})
	assert.ErrorIs(t, err, types.ErrUnknownTicket)

	// Serial does not match the stored one.
	forged := utils.EncodeCredential(&utils.Credential{
		EventID:      event.ID,
		BookingID:    booking.ID,
		TicketSerial: "00000000-0000-0000-0000-000000000000",
	})
	_, err = CheckIn(&CheckInParams{Payload: forged, EventID: event.ID, StaffID: 42})
	assert.ErrorIs(t, err, types.ErrUnknownTicket)
}

func TestCheckInAfterEventEnd(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 5, types.EVENT_PUBLISHED)
	booking, payload := seedBooking(t, event.ID)

	endsAt := time.Now().Add(-time.Hour)
	assert.NoError(t, d.Model(&models.Event{}).Where("id = ?", event.ID).Update("ends_at", endsAt).Error)

	_, err := CheckIn(&CheckInParams{Payload: payload, EventID: event.ID, StaffID: 42, EnforceEventEnd: true})
	assert.ErrorIs(t, err, types.ErrEventExpired)

	// Without enforcement the late scan still admits.
	checked, err := CheckIn(&CheckInParams{Payload: payload, EventID: event.ID, StaffID: 42})
	assert.NoError(t, err)
	assert.Equal(t, booking.ID, checked.ID)
	assert.Equal(t, types.BOOKING_USED, checked.Status)
}

func TestCheckInDefaultsToQRMethod(t *testing.T) {
	d := newTestDB(t)
	event := seedEvent(t, d, 5, types.EVENT_PUBLISHED)
	_, payload := seedBooking(t, event.ID)

	booking, err := CheckIn(&CheckInParams{Payload: payload, EventID: event.ID, StaffID: 42})
	assert.NoError(t, err)
	assert.Equal(t, types.CHECKIN_QR, *booking.CheckInMethod)
}
