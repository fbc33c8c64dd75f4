package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/lk2023060901/raven-ai/internal/ai/biz"
	"github.com/lk2023060901/raven-ai/internal/ai/models"
	"github.com/lk2023060901/raven-ai/internal/pkg/database"
	"github.com/lk2023060901/raven-ai/internal/pkg/secret"
	"gorm.io/gorm"
)

// SettingsRepo implements biz.SettingsRepo using GORM; API keys are sealed at rest
type SettingsRepo struct {
	db  *database.DB
	box *secret.Box
}

// NewSettingsRepo creates a new settings repository
func NewSettingsRepo(db *database.DB, box *secret.Box) *SettingsRepo {
	return &SettingsRepo{db: db, box: box}
}

// Get reads the settings record; a missing record yields zero settings
func (r *SettingsRepo) Get(ctx context.Context) (*biz.AISettings, error) {
	model, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return toDomain(model), nil
}

// GetSecret returns the decrypted value of a secret field
func (r *SettingsRepo) GetSecret(ctx context.Context, field biz.SecretField) (string, error) {
	model, err := r.load(ctx)
	if err != nil {
		return "", err
	}

	var sealed string
	switch field {
	case biz.SecretOpenAIAPIKey:
		sealed = model.OpenAIAPIKey
	case biz.SecretAzureAPIKey:
		sealed = model.AzureAPIKey
	default:
		return "", fmt.Errorf("unknown secret field: %s", field)
	}

	value, err := r.box.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s: %w", field, err)
	}
	return value, nil
}

// Save upserts the settings record
func (r *SettingsRepo) Save(ctx context.Context, update *biz.SettingsUpdate) error {
	model, err := r.load(ctx)
	if err != nil {
		return err
	}

	if err := applyUpdate(model, update, r.box); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (r *SettingsRepo) load(ctx context.Context) (*models.RavenSettings, error) {
	var model models.RavenSettings
	err := r.db.WithContext(ctx).Where("id = ?", models.SettingsID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.RavenSettings{ID: models.SettingsID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &model, nil
}

func toDomain(m *models.RavenSettings) *biz.AISettings {
	return &biz.AISettings{
		EnableAIIntegration:  m.EnableAIIntegration,
		EnableAzureAI:        m.EnableAzureAI,
		EnableLocalLLM:       m.EnableLocalLLM,
		OpenAIOrganisationID: m.OpenAIOrganisationID,
		OpenAIProjectID:      m.OpenAIProjectID,
		OpenAIBaseURL:        m.OpenAIBaseURL,
		AzureEndpoint:        m.AzureEndpoint,
		AzureAPIVersion:      m.AzureAPIVersion,
		AzureDeploymentName:  m.AzureDeploymentName,
		LocalLLMAPIURL:       m.LocalLLMAPIURL,
		HasOpenAIAPIKey:      m.OpenAIAPIKey != "",
		HasAzureAPIKey:       m.AzureAPIKey != "",
	}
}

func applyUpdate(m *models.RavenSettings, update *biz.SettingsUpdate, box *secret.Box) error {
	s := update.Settings
	m.ID = models.SettingsID
	m.EnableAIIntegration = s.EnableAIIntegration
	m.EnableAzureAI = s.EnableAzureAI
	m.EnableLocalLLM = s.EnableLocalLLM
	m.OpenAIOrganisationID = s.OpenAIOrganisationID
	m.OpenAIProjectID = s.OpenAIProjectID
	m.OpenAIBaseURL = s.OpenAIBaseURL
	m.AzureEndpoint = s.AzureEndpoint
	m.AzureAPIVersion = s.AzureAPIVersion
	m.AzureDeploymentName = s.AzureDeploymentName
	m.LocalLLMAPIURL = s.LocalLLMAPIURL

	if update.OpenAIAPIKey != nil {
		sealed, err := box.Seal(*update.OpenAIAPIKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt openai_api_key: %w", err)
		}
		m.OpenAIAPIKey = sealed
	}
	if update.AzureAPIKey != nil {
		sealed, err := box.Seal(*update.AzureAPIKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt azure_api_key: %w", err)
		}
		m.AzureAPIKey = sealed
	}
	return nil
}
