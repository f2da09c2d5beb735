package models

import (
	"enquiry-app/controllers/idgen"
	"enquiry-app/types"
	"time"

	"gorm.io/gorm"
)

// Base is embedded by every record. IDs are snowflakes assigned on create;
// records are never physically deleted, so there is no gorm.DeletedAt.
type Base struct {
	ID        types.SnowflakeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time         `json:"created_at"`
	CreatedBy int               `json:"created_by"`
	UpdatedAt time.Time         `json:"updated_at"`
	UpdatedBy int               `json:"updated_by"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == 0 {
		b.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID         int    `json:"user_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	OrganisationID string `json:"organisation_id"`
}

func (a Actor) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
