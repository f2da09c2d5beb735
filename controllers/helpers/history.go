package helpers

import (
	"enquiry-app/models"
	"enquiry-app/types"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ActionName renders "Enquiry item added by Jane Doe at October 15th 2026, 3:04:05 pm".
func ActionName(action string, actor models.Actor, at time.Time) string {
	return fmt.Sprintf("%s by %s at %s", action, actor.FullName(), FormatActivityTime(at))
}

func FormatActivityTime(at time.Time) string {
	return fmt.Sprintf("%s %d%s %d, %s",
		at.Format("January"), at.Day(), ordinal(at.Day()), at.Year(), at.Format("3:04:05 pm"))
}

func ordinal(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// InsertActivity appends an audit entry using db, which is normally the
// transaction that performed the mutation.
func InsertActivity(db *gorm.DB, entityType string, entityID types.SnowflakeID, actor models.Actor, action string) (models.ActivityLog, error) {
	now := time.Now()
	entry := models.ActivityLog{
		OrganisationID:   actor.OrganisationID,
		EntityType:       entityType,
		EntityID:         entityID,
		PerformedBy:      actor.UserID,
		PerformedByEmail: actor.Email,
		ActionName:       ActionName(action, actor, now),
		CreatedAt:        now,
	}

	if err := db.Create(&entry).Error; err != nil {
		return models.ActivityLog{}, err
	}

	return entry, nil
}
