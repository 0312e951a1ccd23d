package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/productivityhub/backend/internal/pkg/errors"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/repos"
	"github.com/productivityhub/backend/internal/types"
)

type CreateContactInput struct {
	FullName        string      `json:"full_name"`
	Phone           *string     `json:"phone,omitempty"`
	Email           *string     `json:"email,omitempty"`
	MessagingHandle *string     `json:"messaging_handle,omitempty"`
	Notes           *string     `json:"notes,omitempty"`
	TagIDs          []uuid.UUID `json:"tag_ids,omitempty"`
}

type UpdateContactInput struct {
	FullName        *string `json:"full_name,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Email           *string `json:"email,omitempty"`
	MessagingHandle *string `json:"messaging_handle,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

type ContactService interface {
	List(ctx context.Context, tenantID uuid.UUID, filter *types.ContactFilter) ([]*types.Contact, error)
	Get(ctx context.Context, tenantID, contactID uuid.UUID) (*types.Contact, error)
	History(ctx context.Context, tenantID, contactID uuid.UUID) ([]*types.ContactHistory, error)
	Create(ctx context.Context, tenantID uuid.UUID, input *CreateContactInput, userID uuid.UUID, userName string) (*types.Contact, error)
	Update(ctx context.Context, tenantID, contactID uuid.UUID, input *UpdateContactInput, userID uuid.UUID, userName string) (*types.Contact, error)
	Delete(ctx context.Context, tenantID, contactID uuid.UUID, userID uuid.UUID, userName string) error
	ReplaceTags(ctx context.Context, tenantID, contactID uuid.UUID, tagIDs []uuid.UUID, userID uuid.UUID, userName string) (*types.Contact, error)
}

type contactService struct {
	db          *gorm.DB
	log         *logger.Logger
	contactRepo repos.ContactRepo
	historyRepo repos.ContactHistoryRepo
	tagRepo     repos.TagRepo
}

func NewContactService(db *gorm.DB, log *logger.Logger, contactRepo repos.ContactRepo, historyRepo repos.ContactHistoryRepo, tagRepo repos.TagRepo) ContactService {
	serviceLog := log.With("service", "ContactService")
	return &contactService{
		db:          db,
		log:         serviceLog,
		contactRepo: contactRepo,
		historyRepo: historyRepo,
		tagRepo:     tagRepo,
	}
}

func (cs *contactService) List(ctx context.Context, tenantID uuid.UUID, filter *types.ContactFilter) ([]*types.Contact, error) {
	return cs.contactRepo.ListActive(ctx, nil, tenantID, filter)
}

func (cs *contactService) Get(ctx context.Context, tenantID, contactID uuid.UUID) (*types.Contact, error) {
	return cs.mustGetActive(ctx, nil, tenantID, contactID)
}

// History lists the audit trail of a contact, newest first. After a
// merge the surviving contact carries the absorbed contacts' rows too.
func (cs *contactService) History(ctx context.Context, tenantID, contactID uuid.UUID) ([]*types.ContactHistory, error) {
	if _, err := cs.mustGetActive(ctx, nil, tenantID, contactID); err != nil {
		return nil, err
	}
	return cs.historyRepo.ListByContact(ctx, nil, tenantID, contactID)
}

func (cs *contactService) Create(ctx context.Context, tenantID uuid.UUID, input *CreateContactInput, userID uuid.UUID, userName string) (*types.Contact, error) {
	if input == nil || strings.TrimSpace(input.FullName) == "" {
		return nil, fmt.Errorf("%w: full_name is required", apperrors.ErrInvalidArgument)
	}

	contact := &types.Contact{
		ID:              uuid.New(),
		TenantID:        tenantID,
		FullName:        strings.TrimSpace(input.FullName),
		Phone:           input.Phone,
		Email:           input.Email,
		MessagingHandle: input.MessagingHandle,
		Notes:           input.Notes,
		IsActive:        true,
	}

	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.contactRepo.Create(ctx, tx, []*types.Contact{contact}); err != nil {
			return fmt.Errorf("create contact: %w", err)
		}
		if len(input.TagIDs) > 0 {
			tags, err := cs.tagRepo.GetByIDs(ctx, tx, tenantID, input.TagIDs)
			if err != nil {
				return fmt.Errorf("resolve tags: %w", err)
			}
			if err := cs.contactRepo.ReplaceTags(ctx, tx, contact, tags); err != nil {
				return fmt.Errorf("assign tags: %w", err)
			}
		}
		return cs.writeHistory(ctx, tx, tenantID, contact.ID, types.HistoryActionCreate, nil, userID, userName)
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (cs *contactService) Update(ctx context.Context, tenantID, contactID uuid.UUID, input *UpdateContactInput, userID uuid.UUID, userName string) (*types.Contact, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: empty update", apperrors.ErrInvalidArgument)
	}
	fields := map[string]interface{}{}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: full_name cannot be blank", apperrors.ErrInvalidArgument)
		}
		fields["full_name"] = name
	}
	if input.Phone != nil {
		fields["phone"] = input.Phone
	}
	if input.Email != nil {
		fields["email"] = input.Email
	}
	if input.MessagingHandle != nil {
		fields["messaging_handle"] = input.MessagingHandle
	}
	if input.Notes != nil {
		fields["notes"] = input.Notes
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no changes provided", apperrors.ErrInvalidArgument)
	}

	var updated *types.Contact
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.mustGetActive(ctx, tx, tenantID, contactID); err != nil {
			return err
		}
		if err := cs.contactRepo.UpdateFields(ctx, tx, tenantID, contactID, fields); err != nil {
			return fmt.Errorf("update contact: %w", err)
		}
		if err := cs.writeHistory(ctx, tx, tenantID, contactID, types.HistoryActionUpdate, fields, userID, userName); err != nil {
			return err
		}
		refreshed, err := cs.contactRepo.GetByIDs(ctx, tx, tenantID, []uuid.UUID{contactID})
		if err != nil || len(refreshed) == 0 {
			return fmt.Errorf("reload contact: %w", err)
		}
		updated = refreshed[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (cs *contactService) Delete(ctx context.Context, tenantID, contactID uuid.UUID, userID uuid.UUID, userName string) error {
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.mustGetActive(ctx, tx, tenantID, contactID); err != nil {
			return err
		}
		if err := cs.writeHistory(ctx, tx, tenantID, contactID, types.HistoryActionDelete, nil, userID, userName); err != nil {
			return err
		}
		return cs.contactRepo.SoftDeleteByIDs(ctx, tx, tenantID, []uuid.UUID{contactID})
	})
}

func (cs *contactService) ReplaceTags(ctx context.Context, tenantID, contactID uuid.UUID, tagIDs []uuid.UUID, userID uuid.UUID, userName string) (*types.Contact, error) {
	var updated *types.Contact
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := cs.mustGetActive(ctx, tx, tenantID, contactID)
		if err != nil {
			return err
		}
		tags, err := cs.tagRepo.GetByIDs(ctx, tx, tenantID, tagIDs)
		if err != nil {
			return fmt.Errorf("resolve tags: %w", err)
		}
		if len(tags) != len(tagIDs) {
			return fmt.Errorf("%w: one or more tags not found", apperrors.ErrInvalidArgument)
		}
		if err := cs.contactRepo.ReplaceTags(ctx, tx, existing, tags); err != nil {
			return fmt.Errorf("replace tags: %w", err)
		}
		if err := cs.writeHistory(ctx, tx, tenantID, contactID, types.HistoryActionTagsChange, map[string]interface{}{"tag_ids": tagIDs}, userID, userName); err != nil {
			return err
		}
		existing.Tags = tags
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (cs *contactService) mustGetActive(ctx context.Context, tx *gorm.DB, tenantID, contactID uuid.UUID) (*types.Contact, error) {
	contacts, err := cs.contactRepo.GetByIDs(ctx, tx, tenantID, []uuid.UUID{contactID})
	if err != nil {
		return nil, fmt.Errorf("load contact: %w", err)
	}
	if len(contacts) == 0 || !contacts[0].IsActive {
		return nil, apperrors.ErrNotFound
	}
	return contacts[0], nil
}

func (cs *contactService) writeHistory(ctx context.Context, tx *gorm.DB, tenantID, contactID uuid.UUID, action string, payload map[string]interface{}, userID uuid.UUID, userName string) error {
	row := &types.ContactHistory{
		ID:                  uuid.New(),
		TenantID:            tenantID,
		ContactID:           contactID,
		Action:              action,
		PerformedByUserID:   userID,
		PerformedByUserName: userName,
		CreatedAt:           time.Now(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal history payload: %w", err)
		}
		row.Payload = raw
	}
	if _, err := cs.historyRepo.Create(ctx, tx, []*types.ContactHistory{row}); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
