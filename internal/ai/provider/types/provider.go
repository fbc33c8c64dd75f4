package types

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ProviderKind 大模型服务商类型（取值与前端下拉框一致）
type ProviderKind string

const (
	ProviderOpenAI      ProviderKind = "OpenAI"
	ProviderAzureOpenAI ProviderKind = "Azure AI"
	ProviderLocalLLM    ProviderKind = "Local LLM"
)

var kindAliases = map[string]ProviderKind{
	"openai":       ProviderOpenAI,
	"azure ai":     ProviderAzureOpenAI,
	"azure":        ProviderAzureOpenAI,
	"azure-openai": ProviderAzureOpenAI,
	"azure_openai": ProviderAzureOpenAI,
	"azure_ai":     ProviderAzureOpenAI,
	"local llm":    ProviderLocalLLM,
	"local":        ProviderLocalLLM,
	"local-llm":    ProviderLocalLLM,
	"local_llm":    ProviderLocalLLM,
}

// ParseProviderKind 解析服务商名称（支持别名，空值默认为 OpenAI）
func ParseProviderKind(name string) (ProviderKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ProviderOpenAI, nil
	}
	if kind, ok := kindAliases[name]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("unsupported provider: %q", name)
}

// Client 服务商客户端句柄，每次调用构造，用完即弃
type Client interface {
	// Kind 返回服务商类型
	Kind() ProviderKind

	// ListModels 获取服务商可用的模型 ID（未过滤）
	ListModels(ctx context.Context) ([]string, error)

	// Probe 发起一次轻量连通性检查，所有错误都转换为结构化结果
	Probe(ctx context.Context) *ProbeResult
}

// ClientOptions 客户端构造选项
type ClientOptions struct {
	// Timeout 单次请求超时，0 表示使用各客户端默认值
	Timeout time.Duration
	// HTTPClient 自定义 HTTP 客户端（测试时指向 httptest 服务）
	HTTPClient *http.Client
}
