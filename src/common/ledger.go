package common

import (
	"errors"

	"tixgate/src/models"
	"tixgate/src/types"

	"gorm.io/gorm"
)

// The inventory ledger. Both mutations are single guarded UPDATE statements
// so the counters move atomically at the store, never via a separate read
// then write. Callers pass the transaction handle they are already in; a
// failure rolls the whole booking operation back.
//
// Archived events are soft-deleted rows. The ledger reads and writes
// unscoped so bookings against an archived event can still be cancelled and
// their seats released.

// Reserve takes qty units from the event's available pool. Fails with
// ErrOutOfStock instead of letting available_tickets go negative.
func Reserve(tx *gorm.DB, eventId uint, qty uint) error {
	if qty < 1 {
		return types.ErrInvalidQuantity
	}
	res := tx.
		Unscoped().
		Model(&models.Event{}).
		Where("id = ? AND status = ? AND available_tickets >= ?", eventId, types.EVENT_PUBLISHED, qty).
		Updates(map[string]any{
			"available_tickets": gorm.Expr("available_tickets - ?", qty),
			"sold_tickets":      gorm.Expr("sold_tickets + ?", qty),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var event models.Event
		if err := tx.Unscoped().Where(&models.Event{ID: eventId}).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrEventNotFound
			}
			return err
		}
		if event.Status != types.EVENT_PUBLISHED {
			return types.ErrEventNotOpen
		}
		return types.ErrOutOfStock
	}
	return nil
}

// Release returns qty units on cancellation. The sold_tickets guard keeps
// available_tickets from ever exceeding total_tickets.
func Release(tx *gorm.DB, eventId uint, qty uint) error {
	if qty < 1 {
		return types.ErrInvalidQuantity
	}
	res := tx.
		Unscoped().
		Model(&models.Event{}).
		Where("id = ? AND sold_tickets >= ?", eventId, qty).
		Updates(map[string]any{
			"available_tickets": gorm.Expr("available_tickets + ?", qty),
			"sold_tickets":      gorm.Expr("sold_tickets - ?", qty),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var event models.Event
		if err := tx.Unscoped().Where(&models.Event{ID: eventId}).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrEventNotFound
			}
			return err
		}
		return types.ErrInvalidQuantity
	}
	return nil
}
