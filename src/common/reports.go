package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"tixgate/src/db"
	"tixgate/src/lib"
	"tixgate/src/models"
	"tixgate/src/types"

	"gorm.io/gorm"
)

// Read-only projections for dashboards. Counts are cached briefly and may
// lag the ledger; admission correctness never reads from here.

const reportCacheTTL = 30 * time.Second

type EventReport struct {
	EventID          uint    `json:"event_id"`
	TotalTickets     uint    `json:"total_tickets"`
	AvailableTickets uint    `json:"available_tickets"`
	SoldTickets      uint    `json:"sold_tickets"`
	Confirmed        int64   `json:"confirmed"`
	Canceled         int64   `json:"canceled"`
	Used             int64   `json:"used"`
	CheckInRate      float64 `json:"check_in_rate"`
}

type OrganizerReport struct {
	OrganizerID uint    `json:"organizer_id"`
	Events      int64   `json:"events"`
	Confirmed   int64   `json:"confirmed"`
	Canceled    int64   `json:"canceled"`
	Used        int64   `json:"used"`
	CheckInRate float64 `json:"check_in_rate"`
}

type statusCount struct {
	Status string
	Count  int64
}

func GetEventReport(id uint) (*EventReport, error) {
	key := fmt.Sprintf("report:event:%d", id)
	var report EventReport
	if readCachedReport(key, &report) {
		return &report, nil
	}

	db := db.GetDb()
	var event models.Event
	if err := db.Where(&models.Event{ID: id}).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrEventNotFound
		}
		return nil, err
	}
	var rows []statusCount
	if err := db.
		Model(&models.Booking{}).
		Select("status, COUNT(id) as count").
		Where(&models.Booking{EventID: id}).
		Group("status").
		Scan(&rows).
		Error; err != nil {
		return nil, err
	}

	report = EventReport{
		EventID:          event.ID,
		TotalTickets:     event.TotalTickets,
		AvailableTickets: event.AvailableTickets,
		SoldTickets:      event.SoldTickets,
	}
	fillCounts(rows, &report.Confirmed, &report.Canceled, &report.Used)
	report.CheckInRate = checkInRate(report.Confirmed, report.Used)

	writeCachedReport(key, &report)
	return &report, nil
}

func GetOrganizerReport(organizerId uint) (*OrganizerReport, error) {
	key := fmt.Sprintf("report:org:%d", organizerId)
	var report OrganizerReport
	if readCachedReport(key, &report) {
		return &report, nil
	}

	db := db.GetDb()
	var eventCount int64
	if err := db.
		Model(&models.Event{}).
		Where(&models.Event{OrganizerID: organizerId}).
		Count(&eventCount).
		Error; err != nil {
		return nil, err
	}
	var rows []statusCount
	if err := db.
		Model(&models.Booking{}).
		Select("bookings.status, COUNT(bookings.id) as count").
		Joins("JOIN events ON events.id = bookings.event_id").
		Where("events.organizer_id = ?", organizerId).
		Group("bookings.status").
		Scan(&rows).
		Error; err != nil {
		return nil, err
	}

	report = OrganizerReport{OrganizerID: organizerId, Events: eventCount}
	fillCounts(rows, &report.Confirmed, &report.Canceled, &report.Used)
	report.CheckInRate = checkInRate(report.Confirmed, report.Used)

	writeCachedReport(key, &report)
	return &report, nil
}

func fillCounts(rows []statusCount, confirmed, canceled, used *int64) {
	for _, row := range rows {
		switch row.Status {
		case "confirmed":
			*confirmed = row.Count
		case "canceled":
			*canceled = row.Count
		case "used":
			*used = row.Count
		}
	}
}

// checkInRate is used / (confirmed + used): the share of still-live
// bookings that have been redeemed.
func checkInRate(confirmed, used int64) float64 {
	total := confirmed + used
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}

func readCachedReport(key string, out any) bool {
	rd := lib.GetRedisClient()
	if rd == nil {
		return false
	}
	content, err := rd.Get(context.Background(), key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		log.Printf("Error decoding cached report [%s]: %s\n", key, err.Error())
		return false
	}
	return true
}

func writeCachedReport(key string, report any) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := rd.SetEx(context.Background(), key, string(raw), reportCacheTTL).Err(); err != nil {
		log.Printf("Error caching report [%s]: %s\n", key, err.Error())
	}
}
