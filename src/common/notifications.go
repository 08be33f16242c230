package common

import (
	"fmt"
	"log"
	"os"

	"tixgate/src/db"
	"tixgate/src/lib"
	"tixgate/src/models"
	"tixgate/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fire-and-forget notifications. Each dispatch persists an audit row and
// pushes to whatever channels are configured; a channel failure is logged
// and never rolls back the operation that triggered it.

func NotifyBookingCreated(booking *models.Booking) {
	dispatch("booking-created", fmt.Sprintf("Booking [%d] confirmed", booking.ID), "bookings", fmt.Sprint(booking.ID), types.JSONB{
		"booking_id": booking.ID,
		"event_id":   booking.EventID,
		"quantity":   booking.Quantity,
		"status":     booking.Status,
	})
}

func NotifyEventChanged(event *models.Event) {
	dispatch("event-changed", fmt.Sprintf("Event %s is now %s", event.Title, event.Status), "events", fmt.Sprint(event.ID), types.JSONB{
		"event_id": event.ID,
		"status":   event.Status,
	})
}

func NotifyEventCanceled(event *models.Event) {
	dispatch("event-canceled", fmt.Sprintf("Event %s has been canceled", event.Title), "events", fmt.Sprint(event.ID), types.JSONB{
		"event_id": event.ID,
		"status":   types.EVENT_CANCELED,
	})
	go mailEventCanceled(event)
}

func dispatch(kind string, title string, refType string, refValue string, payload types.JSONB) {
	notification := models.Notification{
		ID:             uuid.New(),
		ReferenceType:  refType,
		ReferenceValue: refValue,
		Title:          title,
		ReferenceBody:  &payload,
		Type:           kind,
	}
	db := db.GetDb()
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&notification).Error
	}); err != nil {
		log.Printf("Error persisting notification [%s]: %s\n", kind, err.Error())
	}

	go func() {
		pc := lib.GetPusherClient()
		if pc == nil {
			return
		}
		if err := pc.Trigger(refType, kind, payload); err != nil {
			log.Printf("[pusher] error sending %s notification: %s\n", kind, err.Error())
		}
	}()
}

func mailEventCanceled(event *models.Event) {
	notifyEmail := os.Getenv("NOTIFY_EMAIL")
	if notifyEmail == "" || os.Getenv("SMTP_HOST") == "" {
		return
	}
	senderFrom := os.Getenv("SMTP_FROM")
	input := &lib.SendMailInput{
		Subject:  fmt.Sprintf("Event canceled: %s", event.Title),
		From:     senderFrom,
		FromName: "noreply",
		To:       []string{notifyEmail},
		Body: fmt.Sprintf(`
			<p>Event <b>%s</b> has been canceled.</p>
			<p>Where: %s</p>
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
			event.Title,
			event.Location,
		),
		Html: true,
	}
	if err := lib.SendMail(input); err != nil {
		log.Printf("[mailer] Error sending message: %s\n", err.Error())
	}
}
