package common

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database and installs it as the
// package singleton. A single connection keeps sqlite happy under the
// concurrent test scenarios; the guarded UPDATEs under test are the same
// statements that run against postgres.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("error opening test database: %s", err.Error())
	}
	sqlDB, err := d.DB()
	if err != nil {
		t.Fatalf("error accessing inner db instance: %s", err.Error())
	}
	sqlDB.SetMaxOpenConns(1)
	if err := d.AutoMigrate(&models.Event{}, &models.Booking{}, &models.Notification{}); err != nil {
		t.Fatalf("error migration: %s", err.Error())
	}
	db.NewDB(d)
	return d
}

func seedEvent(t *testing.T, d *gorm.DB, seats uint, status types.EventStatus) *models.Event {
	t.Helper()
	startsAt := time.Now().Add(24 * time.Hour)
	endsAt := startsAt.Add(4 * time.Hour)
	event := models.Event{
		Title:            "Test Event",
		Name:             "test-event",
		Location:         "Main Hall",
		StartsAt:         &startsAt,
		EndsAt:           &endsAt,
		Status:           status,
		Type:             types.EVENT_TYPE_PAID,
		Price:            25,
		Currency:         "usd",
		TotalTickets:     seats,
		AvailableTickets: seats,
		SoldTickets:      0,
		OrganizerID:      1,
		CreatedBy:        1,
	}
	if err := d.Create(&event).Error; err != nil {
		t.Fatalf("error seeding event: %s", err.Error())
	}
	return &event
}

func reloadEvent(t *testing.T, d *gorm.DB, id uint) *models.Event {
	t.Helper()
	var event models.Event
	if err := d.Where(&models.Event{ID: id}).First(&event).Error; err != nil {
		t.Fatalf("error reloading event [%d]: %s", id, err.Error())
	}
	return &event
}
