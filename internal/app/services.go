package app

import (
	"gorm.io/gorm"

	redisclient "github.com/productivityhub/backend/internal/clients/redis"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Contact   services.ContactService
	Tag       services.TagService
	Selection services.SelectionService
	Merge     services.MergeService
	Dedup     services.DedupService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, selectionStore redisclient.SelectionStore) Services {
	log.Info("Wiring services...")
	authService := services.NewAuthService(log, cfg.JWTSecretKey)
	contactService := services.NewContactService(db, log, r.Contact, r.ContactHistory, r.Tag)
	tagService := services.NewTagService(db, log, r.Tag)
	selectionService := services.NewSelectionService(log, selectionStore, cfg.SelectionTTL)
	mergeService := services.NewMergeService(db, log, r.Contact, r.ContactHistory)
	dedupService := services.NewDedupService(log, cfg.Dedup, r.Contact, mergeService, selectionService)
	return Services{
		Auth:      authService,
		Contact:   contactService,
		Tag:       tagService,
		Selection: selectionService,
		Merge:     mergeService,
		Dedup:     dedupService,
	}
}
