package models

import "time"

// SettingsID Raven Settings 是单例记录
const SettingsID = 1

// RavenSettings is the GORM model for raven_settings table
type RavenSettings struct {
	ID uint `gorm:"primaryKey"`

	EnableAIIntegration bool `gorm:"column:enable_ai_integration;not null;default:false"`
	EnableAzureAI       bool `gorm:"column:enable_azure_ai;not null;default:false"`
	EnableLocalLLM      bool `gorm:"column:enable_local_llm;not null;default:false"`

	OpenAIAPIKey         string `gorm:"column:openai_api_key;type:text"` // sealed
	OpenAIOrganisationID string `gorm:"column:openai_organisation_id;type:varchar(255)"`
	OpenAIProjectID      string `gorm:"column:openai_project_id;type:varchar(255)"`
	OpenAIBaseURL        string `gorm:"column:openai_base_url;type:varchar(512)"`

	AzureAPIKey         string `gorm:"column:azure_api_key;type:text"` // sealed
	AzureEndpoint       string `gorm:"column:azure_endpoint;type:varchar(512)"`
	AzureAPIVersion     string `gorm:"column:azure_api_version;type:varchar(64)"`
	AzureDeploymentName string `gorm:"column:azure_deployment_name;type:varchar(255)"`

	LocalLLMAPIURL string `gorm:"column:local_llm_api_url;type:varchar(512)"`

	UpdatedAt time.Time
}

// TableName specifies the table name
func (RavenSettings) TableName() string {
	return "raven_settings"
}
