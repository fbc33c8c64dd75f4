package factory

import (
	"fmt"
	"net/http"
	"time"

	"github.com/lk2023060901/raven-ai/internal/ai/provider/local"
	"github.com/lk2023060901/raven-ai/internal/ai/provider/openai"
	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
)

// Option 工厂选项函数
type Option func(*Factory)

// WithTimeout 设置 OpenAI / Azure 请求超时
func WithTimeout(timeout time.Duration) Option {
	return func(f *Factory) {
		f.sdk.Timeout = timeout
	}
}

// WithLocalTimeout 设置本地服务探测超时
func WithLocalTimeout(timeout time.Duration) Option {
	return func(f *Factory) {
		f.local.Timeout = timeout
	}
}

// WithHTTPClient 指定底层 HTTP 客户端
func WithHTTPClient(client *http.Client) Option {
	return func(f *Factory) {
		f.sdk.HTTPClient = client
		f.local.HTTPClient = client
	}
}

// Factory 按凭证类型构造服务商客户端，每次调用返回新实例
type Factory struct {
	sdk   types.ClientOptions
	local types.ClientOptions
}

// New 创建工厂
func New(opts ...Option) *Factory {
	f := &Factory{
		sdk:   types.ClientOptions{Timeout: openai.DefaultTimeout},
		local: types.ClientOptions{Timeout: local.DefaultTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Build 规范化并校验凭证，通过后才构造客户端
func (f *Factory) Build(creds types.Credentials) (types.Client, error) {
	if creds == nil {
		return nil, fmt.Errorf("credentials are required")
	}

	creds = creds.Normalize()
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	switch c := creds.(type) {
	case types.OpenAICredentials:
		return openai.NewClient(c, f.sdk), nil
	case types.AzureCredentials:
		return openai.NewAzureClient(c, f.sdk), nil
	case types.LocalLLMCredentials:
		return local.NewClient(c, f.local), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", creds.Kind())
	}
}
