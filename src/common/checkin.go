package common

import (
	"errors"
	"log"
	"time"

	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"
	"tixgate/src/utils"

	"gorm.io/gorm"
)

type CheckInParams struct {
	Payload string
	// EventID is the scanner's gate context; a ticket for another event is
	// rejected with ErrWrongEvent.
	EventID uint
	StaffID uint
	Method  types.CheckInMethod
	// EnforceEventEnd rejects scans after the event's scheduled end.
	EnforceEventEnd bool
}

// CheckIn redeems a scanned credential, flipping exactly one booking from
// confirmed to used. The transition is conditioned on status still being
// confirmed at write time, so of N concurrent scans of the same credential
// exactly one wins; the rest observe the winner's stamps and get
// AlreadyUsedError.
func CheckIn(params *CheckInParams) (*models.Booking, error) {
	cred, ok := utils.DecodeCredential(params.Payload)
	if !ok {
		return nil, types.ErrMalformedCredential
	}

	method := params.Method
	if method == "" {
		method = types.CHECKIN_QR
	}

	db := db.GetDb()
	var booking models.Booking
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(&models.Booking{ID: cred.BookingID}).
			Preload("Event").
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrUnknownTicket
			}
			return err
		}
		if booking.TicketSerial.String() != cred.TicketSerial {
			return types.ErrUnknownTicket
		}
		if booking.EventID != params.EventID {
			return types.ErrWrongEvent
		}
		if params.EnforceEventEnd && booking.Event != nil && booking.Event.EndsAt != nil && time.Now().After(*booking.Event.EndsAt) {
			return types.ErrEventExpired
		}
		switch booking.Status {
		case types.BOOKING_CANCELED:
			return types.ErrTicketCancelled
		case types.BOOKING_USED:
			return usedError(&booking)
		}

		now := time.Now()
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, types.BOOKING_CONFIRMED).
			Updates(map[string]any{
				"status":          types.BOOKING_USED,
				"checked_in_at":   now,
				"checked_in_by":   params.StaffID,
				"check_in_method": method,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race. Report the state the winner left behind.
			if err := tx.Where(&models.Booking{ID: booking.ID}).First(&booking).Error; err != nil {
				return err
			}
			if booking.Status == types.BOOKING_CANCELED {
				return types.ErrTicketCancelled
			}
			return usedError(&booking)
		}
		booking.Status = types.BOOKING_USED
		booking.CheckedInAt = &now
		booking.CheckedInBy = &params.StaffID
		booking.CheckInMethod = &method
		return nil
	})
	if err != nil {
		log.Printf("Check-in rejected for booking [%d]: %s\n", cred.BookingID, err.Error())
		return nil, err
	}
	return &booking, nil
}

func usedError(b *models.Booking) error {
	e := &types.AlreadyUsedError{}
	if b.CheckedInAt != nil {
		e.CheckedInAt = *b.CheckedInAt
	}
	if b.CheckedInBy != nil {
		e.CheckedInBy = *b.CheckedInBy
	}
	if b.CheckInMethod != nil {
		e.Method = *b.CheckInMethod
	}
	return e
}
