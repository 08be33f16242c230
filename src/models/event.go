package models

import (
	"time"

	"tixgate/src/types"
)

// Event carries the full inventory state for one happening. The counters
// obey available_tickets + sold_tickets == total_tickets outside of an
// in-flight transaction and are only ever written through common.Reserve
// and common.Release.
type Event struct {
	ID               uint              `gorm:"primarykey" json:"id"`
	Title            string            `json:"title,omitempty"`
	Name             string            `json:"name,omitempty"`
	About            *string           `json:"about,omitempty"`
	Location         string            `json:"location,omitempty"`
	StartsAt         *time.Time        `json:"starts_at,omitempty"`
	EndsAt           *time.Time        `json:"ends_at,omitempty"`
	Status           types.EventStatus `gorm:"default:'draft'" json:"status,omitempty"`
	Type             types.EventType   `gorm:"default:'free'" json:"type,omitempty"`
	Price            float32           `json:"price"`
	Currency         string            `json:"currency,omitempty"`
	TotalTickets     uint              `json:"total_tickets"`
	AvailableTickets uint              `json:"available_tickets"`
	SoldTickets      uint              `json:"sold_tickets"`
	OrganizerID      uint              `json:"organizer,omitempty"`
	CreatedBy        uint              `json:"created_by,omitempty"`

	Bookings []Booking `json:"bookings,omitempty"`

	types.Timestamps
}
