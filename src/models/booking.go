package models

import (
	"time"

	"tixgate/src/types"

	"github.com/google/uuid"
)

// Booking owns exactly one reservation of Quantity units against its Event.
// Status is the single source of truth for the lifecycle; the check-in audit
// fields are written once, by the winning admission scan.
type Booking struct {
	ID               uint                   `gorm:"primarykey" json:"id"`
	EventID          uint                   `json:"event_id,omitempty"`
	UserID           uint                   `json:"user_id,omitempty"`
	Quantity         uint                   `json:"quantity,omitempty"`
	TotalPrice       float32                `json:"total_price"`
	Currency         string                 `json:"currency,omitempty"`
	RegistrationType types.RegistrationType `gorm:"default:'rsvp'" json:"registration_type,omitempty"`
	Status           types.BookingStatus    `gorm:"default:'confirmed'" json:"status,omitempty"`
	TicketSerial     uuid.UUID              `gorm:"type:uuid" json:"ticket_serial,omitempty"`
	CheckedInAt      *time.Time             `json:"checked_in_at,omitempty"`
	CheckedInBy      *uint                  `json:"checked_in_by,omitempty"`
	CheckInMethod    *types.CheckInMethod   `json:"check_in_method,omitempty"`

	Event *Event `gorm:"foreignKey:event_id" json:"event,omitempty"`

	types.Timestamps
}
