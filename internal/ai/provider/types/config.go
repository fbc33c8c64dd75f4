package types

import "strings"

// Credentials 服务商凭证（按 ProviderKind 区分的联合类型）
type Credentials interface {
	Kind() ProviderKind
	// Normalize 去除所有字符串字段首尾空白，并规范化 URL
	Normalize() Credentials
	// Validate 校验必填字段，缺失时返回 ConfigurationMissing
	Validate() error
}

// OpenAICredentials OpenAI 凭证
type OpenAICredentials struct {
	APIKey       string
	Organization string
	Project      string
	BaseURL      string // 为空时使用官方地址
}

func (c OpenAICredentials) Kind() ProviderKind { return ProviderOpenAI }

func (c OpenAICredentials) Normalize() Credentials {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Organization = strings.TrimSpace(c.Organization)
	c.Project = strings.TrimSpace(c.Project)
	c.BaseURL = NormalizeURL(c.BaseURL)
	return c
}

func (c OpenAICredentials) Validate() error {
	if isBlank(c.APIKey) {
		return NewConfigurationMissing(ProviderOpenAI, "OpenAI API key is required")
	}
	return nil
}

// AzureCredentials Azure OpenAI 凭证，四个字段均为必填
type AzureCredentials struct {
	APIKey         string
	Endpoint       string
	APIVersion     string
	DeploymentName string
}

func (c AzureCredentials) Kind() ProviderKind { return ProviderAzureOpenAI }

func (c AzureCredentials) Normalize() Credentials {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Endpoint = NormalizeURL(c.Endpoint)
	c.APIVersion = strings.TrimSpace(c.APIVersion)
	c.DeploymentName = strings.TrimSpace(c.DeploymentName)
	return c
}

func (c AzureCredentials) Validate() error {
	switch {
	case isBlank(c.APIKey):
		return NewConfigurationMissing(ProviderAzureOpenAI, "Azure API key is required")
	case isBlank(c.Endpoint):
		return NewConfigurationMissing(ProviderAzureOpenAI, "Azure endpoint is required")
	case isBlank(c.APIVersion):
		return NewConfigurationMissing(ProviderAzureOpenAI, "Azure API version is required")
	case isBlank(c.DeploymentName):
		return NewConfigurationMissing(ProviderAzureOpenAI, "Azure deployment name is required")
	}
	return nil
}

// LocalLLMCredentials 本地 OpenAI 兼容服务（Ollama、LM Studio 等）
type LocalLLMCredentials struct {
	BaseURL string
}

func (c LocalLLMCredentials) Kind() ProviderKind { return ProviderLocalLLM }

func (c LocalLLMCredentials) Normalize() Credentials {
	c.BaseURL = NormalizeURL(c.BaseURL)
	return c
}

func (c LocalLLMCredentials) Validate() error {
	if isBlank(c.BaseURL) {
		return NewConfigurationMissing(ProviderLocalLLM, "Local LLM API URL is required")
	}
	return nil
}

// NormalizeURL 去除首尾空白及所有结尾斜杠，重复调用结果不变
func NormalizeURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
