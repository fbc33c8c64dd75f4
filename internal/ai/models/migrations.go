package models

import "github.com/lk2023060901/raven-ai/internal/pkg/database"

// AutoMigrate runs database migrations for the AI domain
func AutoMigrate(db *database.DB) error {
	return db.AutoMigrate(
		&RavenSettings{},
		&RavenBotAIPrompt{},
	)
}
