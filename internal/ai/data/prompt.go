package data

import (
	"context"
	"fmt"

	"github.com/lk2023060901/raven-ai/internal/ai/biz"
	"github.com/lk2023060901/raven-ai/internal/ai/models"
	"github.com/lk2023060901/raven-ai/internal/pkg/database"
)

// PromptRepo implements biz.PromptRepo using GORM
type PromptRepo struct {
	db *database.DB
}

// NewPromptRepo creates a new prompt repository
func NewPromptRepo(db *database.DB) *PromptRepo {
	return &PromptRepo{db: db}
}

// ListVisible lists global prompts and the prompts owned by owner
func (r *PromptRepo) ListVisible(ctx context.Context, owner string) ([]*biz.SavedPrompt, error) {
	var modelList []models.RavenBotAIPrompt
	if err := r.db.WithContext(ctx).
		Where("is_global = ?", true).
		Or("owner = ?", owner).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}

	prompts := make([]*biz.SavedPrompt, 0, len(modelList))
	for i := range modelList {
		prompts = append(prompts, promptToDomain(&modelList[i]))
	}
	return prompts, nil
}

// Create creates a new prompt
func (r *PromptRepo) Create(ctx context.Context, prompt *biz.SavedPrompt) error {
	model := &models.RavenBotAIPrompt{
		Name:      prompt.Name,
		Prompt:    prompt.Prompt,
		IsGlobal:  prompt.IsGlobal,
		RavenBot:  prompt.RavenBot,
		Owner:     prompt.Owner,
		CreatedAt: prompt.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create prompt: %w", err)
	}
	return nil
}

func promptToDomain(m *models.RavenBotAIPrompt) *biz.SavedPrompt {
	return &biz.SavedPrompt{
		Name:      m.Name,
		Prompt:    m.Prompt,
		IsGlobal:  m.IsGlobal,
		RavenBot:  m.RavenBot,
		Owner:     m.Owner,
		CreatedAt: m.CreatedAt,
	}
}
