package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/productivityhub/backend/internal/pkg/errors"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/repos"
	"github.com/productivityhub/backend/internal/types"
)

type TagService interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]*types.Tag, error)
	Create(ctx context.Context, tenantID uuid.UUID, name string, color *string) (*types.Tag, error)
}

type tagService struct {
	db      *gorm.DB
	log     *logger.Logger
	tagRepo repos.TagRepo
}

func NewTagService(db *gorm.DB, log *logger.Logger, tagRepo repos.TagRepo) TagService {
	serviceLog := log.With("service", "TagService")
	return &tagService{db: db, log: serviceLog, tagRepo: tagRepo}
}

func (ts *tagService) List(ctx context.Context, tenantID uuid.UUID) ([]*types.Tag, error) {
	return ts.tagRepo.ListByTenant(ctx, nil, tenantID)
}

// Create is idempotent on name: creating an existing tag returns it
// instead of failing, updating the color if a new one is given.
func (ts *tagService) Create(ctx context.Context, tenantID uuid.UUID, name string, color *string) (*types.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", apperrors.ErrInvalidArgument)
	}
	var tag *types.Tag
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ts.tagRepo.GetOrCreate(ctx, tx, tenantID, name)
		if err != nil {
			return err
		}
		if color != nil && (existing.Color == nil || *existing.Color != *color) {
			existing.Color = color
			if err := tx.Model(existing).Update("color", *color).Error; err != nil {
				return fmt.Errorf("update tag color: %w", err)
			}
		}
		tag = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}
