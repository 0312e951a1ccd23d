package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/productivityhub/backend/internal/clients/redis"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/types"
)

// SelectionService turns a filter into an opaque token so bulk
// operations can say "all contacts matching selection X" without
// re-sending the criteria. Tokens expire after a fixed TTL and are
// scoped to a single tenant.
type SelectionService interface {
	CreateSelection(ctx context.Context, tenantID uuid.UUID, filter *types.ContactFilter) (token string, expiresAt time.Time, err error)
	Resolve(ctx context.Context, tenantID uuid.UUID, token string) (*types.ContactFilter, error)
}

type selectionService struct {
	log   *logger.Logger
	store redisclient.SelectionStore
	ttl   time.Duration
}

func NewSelectionService(log *logger.Logger, store redisclient.SelectionStore, ttl time.Duration) SelectionService {
	serviceLog := log.With("service", "SelectionService")
	return &selectionService{log: serviceLog, store: store, ttl: ttl}
}

func (ss *selectionService) CreateSelection(ctx context.Context, tenantID uuid.UUID, filter *types.ContactFilter) (string, time.Time, error) {
	if filter == nil {
		filter = &types.ContactFilter{}
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("marshal selection criteria: %w", err)
	}
	token := uuid.New().String()
	if err := ss.store.Save(ctx, tenantID, token, raw, ss.ttl); err != nil {
		return "", time.Time{}, fmt.Errorf("save selection: %w", err)
	}
	expiresAt := time.Now().Add(ss.ttl)
	ss.log.Debug("Selection created", "tenant_id", tenantID, "expires_at", expiresAt)
	return token, expiresAt, nil
}

func (ss *selectionService) Resolve(ctx context.Context, tenantID uuid.UUID, token string) (*types.ContactFilter, error) {
	raw, err := ss.store.Load(ctx, tenantID, token)
	if err != nil {
		return nil, err
	}
	var filter types.ContactFilter
	if err := json.Unmarshal(raw, &filter); err != nil {
		return nil, fmt.Errorf("decode selection criteria: %w", err)
	}
	return &filter, nil
}
