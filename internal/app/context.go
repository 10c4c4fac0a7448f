package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/kindled/match-engine/internal/cache"
	"github.com/kindled/match-engine/internal/config"
	"github.com/kindled/match-engine/internal/events"
)

// AppContext holds shared dependencies (DB, Redis, event publisher, logger).
type AppContext struct {
	Cfg        *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Publisher  events.Publisher
	Logger     *slog.Logger
}

// New creates a new AppContext.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, pub events.Publisher, logger *slog.Logger) *AppContext {
	return &AppContext{
		Cfg:        cfg,
		DB:         db,
		RedisCache: rdb,
		Publisher:  pub,
		Logger:     logger,
	}
}
