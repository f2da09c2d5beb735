package models

import (
	"enquiry-app/controllers/idgen"
	"enquiry-app/types"
	"time"

	"gorm.io/gorm"
)

// Entity types recorded in the activity log.
const (
	EntityLead       = "lead"
	EntityEnquiry    = "enquiry"
	EntitySupplierPO = "supplier_po"
)

// ActivityLog is the append-only audit trail. Snowflake IDs give the
// ordering within one entity.
type ActivityLog struct {
	ID               types.SnowflakeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrganisationID   string            `json:"organisation_id" gorm:"size:64"`
	EntityType       string            `json:"entity_type" gorm:"index:idx_activity_entity,priority:1;size:32"`
	EntityID         types.SnowflakeID `json:"entity_id" gorm:"index:idx_activity_entity,priority:2"`
	PerformedBy      int               `json:"performed_by"`
	PerformedByEmail string            `json:"performed_by_email"`
	ActionName       string            `json:"action_name"`
	CreatedAt        time.Time         `json:"timestamp"`
}

func (u *ActivityLog) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == 0 {
		u.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}

const (
	MailStatusSent   = "sent"
	MailStatusFailed = "failed"
)

// MailLog records every enquiry mail attempt to a supplier.
type MailLog struct {
	Base
	EnquiryID  types.SnowflakeID `json:"enquiry_id" gorm:"index:idx_mail_log,priority:1"`
	SupplierID types.SnowflakeID `json:"supplier_id" gorm:"index:idx_mail_log,priority:2"`
	Recipient  string            `json:"recipient"`
	Subject    string            `json:"subject"`
	ItemCount  int               `json:"item_count"`
	Status     string            `json:"status" gorm:"size:16"`
	Error      string            `json:"error,omitempty"`
}
