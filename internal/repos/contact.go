package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/types"
)

// ContactRepo is the tenant-scoped contact persistence boundary.
// Every query filters on tenant_id; callers never see another
// tenant's rows regardless of the ids they pass in.
type ContactRepo interface {
	Create(ctx context.Context, tx *gorm.DB, contacts []*types.Contact) ([]*types.Contact, error)
	ListActive(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, filter *types.ContactFilter) ([]*types.Contact, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) ([]*types.Contact, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, tenantID, contactID uuid.UUID, fields map[string]interface{}) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) error
	ReplaceTags(ctx context.Context, tx *gorm.DB, contact *types.Contact, tags []*types.Tag) error
	AppendTags(ctx context.Context, tx *gorm.DB, contact *types.Contact, tags []*types.Tag) error
}

type contactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	repoLog := baseLog.With("repo", "ContactRepo")
	return &contactRepo{db: db, log: repoLog}
}

func (cr *contactRepo) Create(ctx context.Context, tx *gorm.DB, contacts []*types.Contact) ([]*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(contacts) == 0 {
		return []*types.Contact{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (cr *contactRepo) ListActive(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, filter *types.ContactFilter) ([]*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.Contact{}).
		Preload("Tags").
		Where("contact.tenant_id = ? AND contact.is_active = ?", tenantID, true)

	if filter != nil {
		if filter.Name != "" {
			query = query.Where("LOWER(contact.full_name) LIKE LOWER(?)", "%"+filter.Name+"%")
		}
		if filter.UpdatedAfter != nil {
			query = query.Where("contact.updated_at > ?", *filter.UpdatedAfter)
		}
		if len(filter.TagIDs) > 0 {
			query = query.
				Joins("JOIN contact_tag ON contact_tag.contact_id = contact.id").
				Where("contact_tag.tag_id IN ?", filter.TagIDs).
				Distinct("contact.*")
		}
		if filter.Limit > 0 {
			query = query.Order("contact.created_at DESC").Limit(filter.Limit).Offset(filter.Offset)
		}
	}

	var results []*types.Contact
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *contactRepo) GetByIDs(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) ([]*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Contact
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Tags").
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *contactRepo) UpdateFields(ctx context.Context, tx *gorm.DB, tenantID, contactID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Contact{}).
		Where("tenant_id = ? AND id = ?", tenantID, contactID).
		Updates(fields).Error
}

func (cr *contactRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(ids) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Contact{}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Update("is_active", false).Error; err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Delete(&types.Contact{}).Error
}

func (cr *contactRepo) ReplaceTags(ctx context.Context, tx *gorm.DB, contact *types.Contact, tags []*types.Tag) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).Model(contact).Association("Tags").Replace(tags)
}

func (cr *contactRepo) AppendTags(ctx context.Context, tx *gorm.DB, contact *types.Contact, tags []*types.Tag) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(tags) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Model(contact).Association("Tags").Append(tags)
}
