package types

import (
	"errors"
	"fmt"
	"time"
)

// Expected outcomes of the booking and admission paths. Every public
// operation returns one of these so callers can branch on kind instead of
// matching message text.
var (
	ErrOutOfStock          = errors.New("not enough tickets available")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrMalformedCredential = errors.New("malformed ticket credential")
	ErrUnknownTicket       = errors.New("unknown ticket")
	ErrWrongEvent          = errors.New("ticket belongs to a different event")
	ErrAlreadyUsed         = errors.New("ticket already used")
	ErrTicketCancelled     = errors.New("ticket canceled")
	ErrEventExpired        = errors.New("event has already ended")
	ErrEventNotOpen        = errors.New("event is not open for registration")
	ErrEventNotFound       = errors.New("event not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrDuplicateRSVP       = errors.New("an rsvp for this event already exists")
)

// AlreadyUsedError reports the winning check-in when a duplicate scan loses
// the race. Unwraps to ErrAlreadyUsed.
type AlreadyUsedError struct {
	CheckedInAt time.Time
	CheckedInBy uint
	Method      CheckInMethod
}

func (e *AlreadyUsedError) Error() string {
	return fmt.Sprintf("ticket already used: checked in at %s by staff [%d]", e.CheckedInAt.Format(time.RFC3339), e.CheckedInBy)
}

func (e *AlreadyUsedError) Unwrap() error {
	return ErrAlreadyUsed
}
