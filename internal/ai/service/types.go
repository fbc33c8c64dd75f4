package service

import "github.com/lk2023060901/raven-ai/internal/ai/biz"

// InstructionPreviewRequest 指令预览请求
type InstructionPreviewRequest struct {
	Instruction string `json:"instruction" form:"instruction"`
	Format      string `json:"format" form:"format"`
}

// SettingsRequest 更新 AI 设置请求；api key 字段省略表示不修改
type SettingsRequest struct {
	EnableAIIntegration  bool    `json:"enable_ai_integration"`
	EnableAzureAI        bool    `json:"enable_azure_ai"`
	EnableLocalLLM       bool    `json:"enable_local_llm"`
	OpenAIAPIKey         *string `json:"openai_api_key"`
	OpenAIOrganisationID string  `json:"openai_organisation_id"`
	OpenAIProjectID      string  `json:"openai_project_id"`
	OpenAIBaseURL        string  `json:"openai_base_url"`
	AzureAPIKey          *string `json:"azure_api_key"`
	AzureEndpoint        string  `json:"azure_endpoint"`
	AzureAPIVersion      string  `json:"azure_api_version"`
	AzureDeploymentName  string  `json:"azure_deployment_name"`
	LocalLLMAPIURL       string  `json:"local_llm_api_url"`
}

func (r *SettingsRequest) toUpdate() *biz.SettingsUpdate {
	return &biz.SettingsUpdate{
		Settings: biz.AISettings{
			EnableAIIntegration:  r.EnableAIIntegration,
			EnableAzureAI:        r.EnableAzureAI,
			EnableLocalLLM:       r.EnableLocalLLM,
			OpenAIOrganisationID: r.OpenAIOrganisationID,
			OpenAIProjectID:      r.OpenAIProjectID,
			OpenAIBaseURL:        r.OpenAIBaseURL,
			AzureEndpoint:        r.AzureEndpoint,
			AzureAPIVersion:      r.AzureAPIVersion,
			AzureDeploymentName:  r.AzureDeploymentName,
			LocalLLMAPIURL:       r.LocalLLMAPIURL,
		},
		OpenAIAPIKey: r.OpenAIAPIKey,
		AzureAPIKey:  r.AzureAPIKey,
	}
}

// SDKVersionResponse SDK 版本
type SDKVersionResponse struct {
	Module  string `json:"module"`
	Version string `json:"version"`
}
