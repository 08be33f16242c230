package utils

import (
	"errors"
	"log"
	"time"

	"tixgate/src/config"
	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func CreateNewEvent(params *types.CreateEventRequestBody, organizerId uint, creatorId uint) (uint, error) {
	startsAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.StartsAt)
	if err != nil {
		log.Printf("Error parsing starts_at: %s\n", err.Error())
		return 0, err
	}
	endsAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.EndsAt)
	if err != nil {
		log.Printf("Error parsing ends_at: %s\n", err.Error())
		return 0, err
	}

	eventType := types.EVENT_TYPE_FREE
	if params.Price > 0 || params.Type == string(types.EVENT_TYPE_PAID) {
		eventType = types.EVENT_TYPE_PAID
	}
	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}
	event := models.Event{
		Title:            params.Title,
		Name:             slug.Make(params.Title),
		About:            &params.Description,
		Location:         params.Location,
		StartsAt:         &startsAt,
		EndsAt:           &endsAt,
		Status:           types.EVENT_DRAFT,
		Type:             eventType,
		Price:            params.Price,
		Currency:         currency,
		TotalTickets:     params.Seats,
		AvailableTickets: params.Seats,
		SoldTickets:      0,
		OrganizerID:      organizerId,
		CreatedBy:        creatorId,
	}

	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&event).Error
	})
	if err != nil {
		log.Printf("CreateNewEvent failed: %s\n", err.Error())
		return 0, err
	}
	return event.ID, nil
}

func GetEvent(id uint) (*models.Event, error) {
	var event models.Event
	db := db.GetDb()
	if err := db.Where(&models.Event{ID: id}).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// UpdateEventSeats resizes the ticket pool. Only legal while the event is
// still a draft, so sold_tickets is always zero here.
func UpdateEventSeats(id uint, seats uint) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Event{}).
			Where("id = ? AND status = ?", id, types.EVENT_DRAFT).
			Updates(map[string]any{
				"total_tickets":     seats,
				"available_tickets": seats,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if _, err := GetEvent(id); err != nil {
				return err
			}
			return types.ErrInvalidTransition
		}
		return nil
	})
}

func PublishEvent(id uint) error {
	return updateEventStatus(id, types.EVENT_PUBLISHED, []types.EventStatus{types.EVENT_DRAFT})
}

func CancelEvent(id uint) error {
	return updateEventStatus(id, types.EVENT_CANCELED, []types.EventStatus{types.EVENT_DRAFT, types.EVENT_PUBLISHED})
}

// ArchiveEvent soft-deletes. Bookings keep referencing the row, it is never
// hard-deleted.
func ArchiveEvent(id uint) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Event{}).
			Where("id = ?", id).
			Update("status", types.EVENT_ARCHIVED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrEventNotFound
		}
		return tx.Delete(&models.Event{ID: id}).Error
	})
}

func updateEventStatus(id uint, newStatus types.EventStatus, oldStatuses []types.EventStatus) error {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Event{}).
			Where("id = ? AND status IN (?)", id, oldStatuses).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if _, err := GetEvent(id); err != nil {
				return err
			}
			return types.ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		log.Printf("Failed to update event [%d] status to %s: %s\n", id, newStatus, err.Error())
		return err
	}
	return nil
}

// CompleteExpiredEvents is run by the scheduler. Events past their end are
// closed for admission in bulk; a stale sweep only delays the EventExpired
// guard, never admission correctness.
func CompleteExpiredEvents() {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Event{}).
			Where("status = ? AND ends_at < ?", types.EVENT_PUBLISHED, time.Now()).
			Update("status", types.EVENT_COMPLETED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Printf("Marked %d events as completed\n", res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error while completing expired events: %s\n", err.Error())
	}
}

func GetEventInventory(id uint) (total uint, available uint, sold uint, err error) {
	event, err := GetEvent(id)
	if err != nil {
		return 0, 0, 0, err
	}
	return event.TotalTickets, event.AvailableTickets, event.SoldTickets, nil
}
