package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact is tenant-owned and never shared across tenants. Removal is
// always a soft delete; merge absorbs duplicates by soft-deleting them.
type Contact struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID        uuid.UUID `gorm:"type:uuid;not null;index:idx_contact_tenant" json:"tenant_id"`
	FullName        string    `gorm:"not null;column:full_name" json:"full_name"`
	Phone           *string   `gorm:"column:phone" json:"phone,omitempty"`
	Email           *string   `gorm:"column:email" json:"email,omitempty"`
	MessagingHandle *string   `gorm:"column:messaging_handle" json:"messaging_handle,omitempty"`
	Notes           *string   `gorm:"column:notes" json:"notes,omitempty"`
	IsActive        bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`

	Tags []*Tag `gorm:"many2many:contact_tag;" json:"tags,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Contact) TableName() string { return "contact" }

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// FieldCount reports how many of the optional identity fields are
// populated. Used to rank merge survivors: more complete wins.
func (c *Contact) FieldCount() int {
	count := 0
	if c.FullName != "" {
		count++
	}
	for _, v := range []*string{c.Phone, c.Email, c.MessagingHandle, c.Notes} {
		if v != nil && *v != "" {
			count++
		}
	}
	return count
}
