package biz

import (
	"context"

	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
)

// SecretField 需要通过受控接口读取的密钥字段
type SecretField string

const (
	SecretOpenAIAPIKey SecretField = "openai_api_key"
	SecretAzureAPIKey  SecretField = "azure_api_key"
)

// AISettings Raven Settings 中与 AI 相关的字段快照（不含密钥）
type AISettings struct {
	EnableAIIntegration bool `json:"enable_ai_integration"`
	EnableAzureAI       bool `json:"enable_azure_ai"`
	EnableLocalLLM      bool `json:"enable_local_llm"`

	OpenAIOrganisationID string `json:"openai_organisation_id"`
	OpenAIProjectID      string `json:"openai_project_id"`
	OpenAIBaseURL        string `json:"openai_base_url"`

	AzureEndpoint       string `json:"azure_endpoint"`
	AzureAPIVersion     string `json:"azure_api_version"`
	AzureDeploymentName string `json:"azure_deployment_name"`

	LocalLLMAPIURL string `json:"local_llm_api_url"`

	// 仅用于展示密钥是否已配置
	HasOpenAIAPIKey bool `json:"has_openai_api_key"`
	HasAzureAPIKey  bool `json:"has_azure_api_key"`
}

// OpenAICredentials 组装 OpenAI 凭证
func (s *AISettings) OpenAICredentials(apiKey string) types.OpenAICredentials {
	return types.OpenAICredentials{
		APIKey:       apiKey,
		Organization: s.OpenAIOrganisationID,
		Project:      s.OpenAIProjectID,
		BaseURL:      s.OpenAIBaseURL,
	}
}

// AzureCredentials 组装 Azure OpenAI 凭证
func (s *AISettings) AzureCredentials(apiKey string) types.AzureCredentials {
	return types.AzureCredentials{
		APIKey:         apiKey,
		Endpoint:       s.AzureEndpoint,
		APIVersion:     s.AzureAPIVersion,
		DeploymentName: s.AzureDeploymentName,
	}
}

// LocalLLMCredentials 组装本地服务凭证
func (s *AISettings) LocalLLMCredentials() types.LocalLLMCredentials {
	return types.LocalLLMCredentials{BaseURL: s.LocalLLMAPIURL}
}

// SettingsUpdate 更新 AI 设置；密钥字段为 nil 时保持不变，空字符串表示清除
type SettingsUpdate struct {
	Settings     AISettings
	OpenAIAPIKey *string
	AzureAPIKey  *string
}

// SettingsRepo AI 设置存储
type SettingsRepo interface {
	// Get 读取最新设置，未保存过时返回零值
	Get(ctx context.Context) (*AISettings, error)
	// GetSecret 读取解密后的密钥，未配置时返回空字符串
	GetSecret(ctx context.Context, field SecretField) (string, error)
	// Save 保存设置
	Save(ctx context.Context, update *SettingsUpdate) error
}
