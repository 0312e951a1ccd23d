package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// History actions recorded against a contact.
const (
	HistoryActionCreate     = "create"
	HistoryActionUpdate     = "update"
	HistoryActionDelete     = "delete"
	HistoryActionTagsChange = "tags_change"
	HistoryActionMerge      = "merge"
)

// ContactHistory is the per-contact audit trail. Merge writes exactly
// one row per merged cluster, attached to the surviving contact, and
// re-points rows of absorbed contacts so their trail is not orphaned.
type ContactHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index:idx_contact_history_tenant" json:"tenant_id"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;index:idx_contact_history_contact" json:"contact_id"`
	Action    string    `gorm:"not null;column:action" json:"action"`

	Payload datatypes.JSON `gorm:"column:payload" json:"payload,omitempty"`

	PerformedByUserID   uuid.UUID `gorm:"type:uuid;not null;column:performed_by_user_id" json:"performed_by_user_id"`
	PerformedByUserName string    `gorm:"not null;column:performed_by_user_name" json:"performed_by_user_name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ContactHistory) TableName() string { return "contact_history" }

func (h *ContactHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// MergeAuditPayload is the JSON body of a merge history row.
type MergeAuditPayload struct {
	PrimaryContactID uuid.UUID            `json:"primary_contact_id"`
	MergedContactIDs []uuid.UUID          `json:"merged_contact_ids"`
	MergedFields     map[string]uuid.UUID `json:"merged_fields,omitempty"`
}
