package migration

import (
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Run executes AutoMigrate for every table and seeds demo data when the
// meetings table is empty.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Meeting{},
		&domain.AgendaItem{},
		&domain.Comment{},
		&domain.ModerationLog{},
		&domain.Recommendation{},
		&domain.Vote{},
		&domain.SystemConfig{},
	); err != nil {
		return err
	}

	var count int64
	db.Model(&domain.Meeting{}).Count(&count)
	if count == 0 {
		return seedMeetings(db)
	}

	return nil
}

func seedMeetings(db *gorm.DB) error {
	now := time.Now()
	start := now.Add(7 * 24 * time.Hour)
	cutoff := start.Add(-2 * time.Hour)

	meeting := domain.Meeting{
		ID:          uuid.New().String(),
		Title:       "City Council Regular Session",
		Description: "Monthly regular session of the city council",
		Body:        "COUNCIL",
		Status:      domain.MeetingUpcoming,
		StartTime:   start,
		Location:    "Council Chambers, City Hall",
		AgendaItems: []domain.AgendaItem{
			{
				ID:         uuid.New().String(),
				Code:       "2026-101",
				Title:      "FY2027 Budget Proposal",
				OrderIndex: 1,
				CutoffTime: &cutoff,
			},
			{
				ID:         uuid.New().String(),
				Code:       "2026-102",
				Title:      "Riverside Park Rezoning",
				OrderIndex: 2,
				CutoffTime: &cutoff,
			},
		},
	}
	return db.Create(&meeting).Error
}
