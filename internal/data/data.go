package data

import (
	"fmt"

	"github.com/lk2023060901/raven-ai/internal/ai/models"
	"github.com/lk2023060901/raven-ai/internal/conf"
	"github.com/lk2023060901/raven-ai/internal/pkg/database"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/lk2023060901/raven-ai/internal/pkg/redis"
	"github.com/lk2023060901/raven-ai/internal/pkg/secret"
	"go.uber.org/zap"
)

// Data 共享的数据层资源
type Data struct {
	DB          *database.DB
	RedisClient *redis.Client
	SecretBox   *secret.Box
	Logger      *logger.Logger
}

func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	box, err := secret.NewBox(config.Secret.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init secret box: %w", err)
	}

	// Initialize PostgreSQL
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	if config.Database.AutoMigrate {
		if err := models.AutoMigrate(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	// Initialize Redis
	redisClient, err := redis.New(&config.Redis, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	d := &Data{
		DB:          db,
		RedisClient: redisClient,
		SecretBox:   box,
		Logger:      log,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if err := db.Close(); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
		if err := redisClient.Close(); err != nil {
			log.Error("failed to close redis", zap.Error(err))
		}
	}

	return d, cleanup, nil
}
