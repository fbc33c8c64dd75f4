package openai

import (
	"context"

	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
	goopenai "github.com/sashabaranov/go-openai"
)

// probeModelLimit 连通性检查返回的模型数量上限
const probeModelLimit = 5

// Client OpenAI 客户端
type Client struct {
	creds types.OpenAICredentials
	api   *goopenai.Client
}

// ClientConfig 将凭证映射为 SDK 配置（纯函数，不发起请求）
func ClientConfig(creds types.OpenAICredentials, opts types.ClientOptions) goopenai.ClientConfig {
	cfg := goopenai.DefaultConfig(creds.APIKey)
	cfg.OrgID = creds.Organization
	if creds.BaseURL != "" {
		cfg.BaseURL = creds.BaseURL
	}

	// SDK 没有 project 字段，通过 transport 注入
	var headers map[string]string
	if creds.Project != "" {
		headers = map[string]string{"OpenAI-Project": creds.Project}
	}
	cfg.HTTPClient = newHTTPClient(opts, headers)
	return cfg
}

// NewClient 创建 OpenAI 客户端，调用方需保证凭证已通过校验
func NewClient(creds types.OpenAICredentials, opts types.ClientOptions) *Client {
	return &Client{
		creds: creds,
		api:   goopenai.NewClientWithConfig(ClientConfig(creds, opts)),
	}
}

func (c *Client) Kind() types.ProviderKind {
	return types.ProviderOpenAI
}

// ListModels 获取账号下全部模型 ID
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, classifyOpenAI(err, c.creds)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// Probe 通过列出模型检查连通性
func (c *Client) Probe(ctx context.Context) *types.ProbeResult {
	ids, err := c.ListModels(ctx)
	if err != nil {
		return types.ProbeFailed(err)
	}
	return types.ProbeSucceeded("Successfully connected to OpenAI", types.ModelRefs(ids, probeModelLimit))
}
