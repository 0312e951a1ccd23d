package app

import (
	"time"

	"github.com/productivityhub/backend/internal/dedup"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/utils"
)

type Config struct {
	JWTSecretKey string
	SelectionTTL time.Duration
	Dedup        dedup.Config
	Environment  string
	Version      string
}

func LoadConfig(log *logger.Logger) (Config, error) {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	selectionTTLSeconds := utils.GetEnvAsInt("SELECTION_TTL", 900, log)
	dedupConfigPath := utils.GetEnv("DEDUP_CONFIG", "", log)

	dedupCfg, err := dedup.LoadConfig(dedupConfigPath)
	if err != nil {
		return Config{}, err
	}

	return Config{
		JWTSecretKey: jwtSecretKey,
		SelectionTTL: time.Duration(selectionTTLSeconds) * time.Second,
		Dedup:        dedupCfg,
		Environment:  utils.GetEnv("APP_ENV", "development", log),
		Version:      utils.GetEnv("APP_VERSION", "dev", log),
	}, nil
}
