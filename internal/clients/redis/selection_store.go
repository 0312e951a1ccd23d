package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/productivityhub/backend/internal/pkg/errors"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/utils"
)

// SelectionStore holds serialized filter criteria under opaque,
// TTL-bound tokens. Keys embed the tenant id so a token can never be
// replayed against another tenant's data.
type SelectionStore interface {
	Save(ctx context.Context, tenantID uuid.UUID, token string, criteria []byte, ttl time.Duration) error
	Load(ctx context.Context, tenantID uuid.UUID, token string) ([]byte, error)
	Close() error
}

type selectionStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewSelectionStore(log *logger.Logger) (SelectionStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "localhost:6379", log))
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &selectionStore{
		log: log.With("service", "RedisSelectionStore"),
		rdb: rdb,
	}, nil
}

func selectionKey(tenantID uuid.UUID, token string) string {
	return fmt.Sprintf("selection:%s:%s", tenantID, token)
}

func (s *selectionStore) Save(ctx context.Context, tenantID uuid.UUID, token string, criteria []byte, ttl time.Duration) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("selection store not initialized")
	}
	return s.rdb.Set(ctx, selectionKey(tenantID, token), criteria, ttl).Err()
}

func (s *selectionStore) Load(ctx context.Context, tenantID uuid.UUID, token string) ([]byte, error) {
	if s == nil || s.rdb == nil {
		return nil, fmt.Errorf("selection store not initialized")
	}
	raw, err := s.rdb.Get(ctx, selectionKey(tenantID, token)).Bytes()
	if err == goredis.Nil {
		return nil, apperrors.ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("selection load: %w", err)
	}
	return raw, nil
}

func (s *selectionStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
