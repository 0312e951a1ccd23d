package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/types"
)

type ContactHistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ContactHistory) ([]*types.ContactHistory, error)
	ListByContact(ctx context.Context, tx *gorm.DB, tenantID, contactID uuid.UUID) ([]*types.ContactHistory, error)
	// RepointContact moves history rows from absorbed contacts onto the
	// surviving contact so the audit trail stays reachable after a merge.
	RepointContact(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, fromIDs []uuid.UUID, toID uuid.UUID) error
}

type contactHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactHistoryRepo(db *gorm.DB, baseLog *logger.Logger) ContactHistoryRepo {
	repoLog := baseLog.With("repo", "ContactHistoryRepo")
	return &contactHistoryRepo{db: db, log: repoLog}
}

func (hr *contactHistoryRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ContactHistory) ([]*types.ContactHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	if len(rows) == 0 {
		return []*types.ContactHistory{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (hr *contactHistoryRepo) ListByContact(ctx context.Context, tx *gorm.DB, tenantID, contactID uuid.UUID) ([]*types.ContactHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var results []*types.ContactHistory
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ? AND contact_id = ?", tenantID, contactID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (hr *contactHistoryRepo) RepointContact(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, fromIDs []uuid.UUID, toID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	if len(fromIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.ContactHistory{}).
		Where("tenant_id = ? AND contact_id IN ?", tenantID, fromIDs).
		Update("contact_id", toID).Error
}
