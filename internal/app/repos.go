package app

import (
	"gorm.io/gorm"

	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/repos"
)

type Repos struct {
	Contact        repos.ContactRepo
	ContactHistory repos.ContactHistoryRepo
	Tag            repos.TagRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Contact:        repos.NewContactRepo(db, log),
		ContactHistory: repos.NewContactHistoryRepo(db, log),
		Tag:            repos.NewTagRepo(db, log),
	}
}
