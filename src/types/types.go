package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}

func (a *JSONB) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("unsupported source type for JSONB")
	}
}

type EventStatus string

const (
	EVENT_DRAFT     EventStatus = "draft"
	EVENT_PUBLISHED EventStatus = "published"
	EVENT_COMPLETED EventStatus = "completed"
	EVENT_CANCELED  EventStatus = "canceled"
	EVENT_ARCHIVED  EventStatus = "archived"
)

type EventType string

const (
	EVENT_TYPE_FREE EventType = "free"
	EVENT_TYPE_PAID EventType = "paid"
)

type BookingStatus string

const (
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELED  BookingStatus = "canceled"
	BOOKING_USED      BookingStatus = "used"
)

type RegistrationType string

const (
	REGISTRATION_RSVP     RegistrationType = "rsvp"
	REGISTRATION_PURCHASE RegistrationType = "purchase"
)

type CheckInMethod string

const (
	CHECKIN_APP    CheckInMethod = "app"
	CHECKIN_MANUAL CheckInMethod = "manual"
	CHECKIN_QR     CheckInMethod = "qr"
)

type CreateEventRequestBody struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description,omitempty"`
	Location    string  `json:"location,omitempty" binding:"required"`
	StartsAt    string  `json:"starts_at" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	EndsAt      string  `json:"ends_at" binding:"required,bookabledate,gtdate=StartsAt" time_format:"2006-01-02 15:04:05 -07:00"`
	Seats       uint    `json:"seats" binding:"required"`
	Price       float32 `json:"price,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Type        string  `json:"type,omitempty"`
}

type UpdateEventSeatsRequestBody struct {
	Seats uint `json:"seats" binding:"required"`
}

type CreateBookingRequestBody struct {
	EventID          uint   `json:"event" binding:"required"`
	Qty              uint   `json:"qty" binding:"required,min=1"`
	RegistrationType string `json:"registration_type,omitempty"`
}

type CreateAdmissionRequestBody struct {
	Code    string `json:"code" binding:"required"`
	EventID uint   `json:"event" binding:"required"`
	Method  string `json:"method,omitempty"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CredentialQueryParams struct {
	Download bool `form:"download"`
}

type Claims struct {
	Username     string   `json:"username"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	Organization uint
	jwt.RegisteredClaims
}
