package common

import (
	"errors"
	"log"

	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateBooking reserves inventory and persists a confirmed booking in one
// transaction. On ErrOutOfStock no booking row exists afterwards.
func CreateBooking(userId uint, params *types.CreateBookingRequestBody) (*models.Booking, error) {
	regType := types.REGISTRATION_RSVP
	if params.RegistrationType != "" {
		regType = types.RegistrationType(params.RegistrationType)
	}
	db := db.GetDb()

	// Product policy: one RSVP per user per event. A plain lookup before the
	// reserve transaction; a rare duplicate slipping through is a tolerable,
	// correctable anomaly and never oversells inventory.
	if regType == types.REGISTRATION_RSVP {
		var count int64
		if err := db.
			Model(&models.Booking{}).
			Where(&models.Booking{EventID: params.EventID, UserID: userId, RegistrationType: types.REGISTRATION_RSVP}).
			Where("status <> ?", types.BOOKING_CANCELED).
			Count(&count).
			Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, types.ErrDuplicateRSVP
		}
	}

	var booking models.Booking
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := Reserve(tx, params.EventID, params.Qty); err != nil {
			return err
		}
		var event models.Event
		if err := tx.Where(&models.Event{ID: params.EventID}).First(&event).Error; err != nil {
			return err
		}
		booking = models.Booking{
			EventID:          event.ID,
			UserID:           userId,
			Quantity:         params.Qty,
			TotalPrice:       event.Price * float32(params.Qty),
			Currency:         event.Currency,
			RegistrationType: regType,
			Status:           types.BOOKING_CONFIRMED,
			TicketSerial:     uuid.New(),
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		log.Printf("CreateBooking failed for event [%d]: %s\n", params.EventID, err.Error())
		return nil, err
	}

	go NotifyBookingCreated(&booking)

	return &booking, nil
}

// CancelBooking is legal only from confirmed. The status flip is a
// compare-and-set; cancelling anything else returns ErrInvalidTransition
// and leaves inventory untouched.
func CancelBooking(id uint) (*models.Booking, error) {
	db := db.GetDb()
	var booking models.Booking
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Booking{ID: id}).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrBookingNotFound
			}
			return err
		}
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", id, types.BOOKING_CONFIRMED).
			Update("status", types.BOOKING_CANCELED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrInvalidTransition
		}
		if err := Release(tx, booking.EventID, booking.Quantity); err != nil {
			return err
		}
		booking.Status = types.BOOKING_CANCELED
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func GetBooking(id uint) (*models.Booking, error) {
	db := db.GetDb()
	var booking models.Booking
	if err := db.
		Where(&models.Booking{ID: id}).
		Preload("Event").
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}
