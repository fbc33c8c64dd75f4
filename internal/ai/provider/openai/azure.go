package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
	goopenai "github.com/sashabaranov/go-openai"
)

// reasoningPrefixes SDK 对这些模型拒绝 max_tokens，需改用 max_completion_tokens
var reasoningPrefixes = []string{"o1", "o3", "o4", "gpt-5"}

// AzureClient Azure OpenAI 客户端，绑定单个部署
type AzureClient struct {
	creds types.AzureCredentials
	api   *goopenai.Client
}

// AzureClientConfig 将凭证映射为 SDK 配置，部署名原样使用
func AzureClientConfig(creds types.AzureCredentials, opts types.ClientOptions) goopenai.ClientConfig {
	cfg := goopenai.DefaultAzureConfig(creds.APIKey, creds.Endpoint)
	cfg.APIVersion = creds.APIVersion
	cfg.AzureModelMapperFunc = func(model string) string { return model }
	cfg.HTTPClient = newHTTPClient(opts, nil)
	return cfg
}

// NewAzureClient 创建 Azure OpenAI 客户端，调用方需保证凭证已通过校验
func NewAzureClient(creds types.AzureCredentials, opts types.ClientOptions) *AzureClient {
	return &AzureClient{
		creds: creds,
		api:   goopenai.NewClientWithConfig(AzureClientConfig(creds, opts)),
	}
}

func (c *AzureClient) Kind() types.ProviderKind {
	return types.ProviderAzureOpenAI
}

// ListModels Azure 不支持列出模型，返回配置的部署名，不发起请求
func (c *AzureClient) ListModels(_ context.Context) ([]string, error) {
	return []string{c.creds.DeploymentName}, nil
}

// Probe 对部署发起一次 max_tokens=1 的对话请求
func (c *AzureClient) Probe(ctx context.Context) *types.ProbeResult {
	_, err := c.api.CreateChatCompletion(ctx, probeRequest(c.creds.DeploymentName))
	if err != nil {
		return types.ProbeFailed(classifyAzure(err, c.creds))
	}

	msg := fmt.Sprintf("Successfully connected to Azure AI. Deployment '%s' is accessible.", c.creds.DeploymentName)
	return types.ProbeSucceeded(msg, []types.ModelRef{{ID: c.creds.DeploymentName}})
}

func probeRequest(deployment string) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{
		Model: deployment,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: "test"},
		},
	}
	if isReasoningDeployment(deployment) {
		req.MaxCompletionTokens = 1
	} else {
		req.MaxTokens = 1
	}
	return req
}

func isReasoningDeployment(name string) bool {
	name = strings.ToLower(name)
	for _, p := range reasoningPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
