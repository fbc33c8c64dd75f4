package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
	"github.com/tidwall/gjson"
)

const (
	// DefaultTimeout 本地服务探测超时
	DefaultTimeout = 5 * time.Second

	maxBodySize = 4 << 20
)

var errInvalidJSON = errors.New("invalid JSON in /models response")

// Client 本地 OpenAI 兼容服务客户端（Ollama、LM Studio、vLLM 等）
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建本地服务客户端，调用方需保证凭证已通过校验
func NewClient(creds types.LocalLLMCredentials, opts types.ClientOptions) *Client {
	client := &http.Client{}
	if opts.HTTPClient != nil {
		cp := *opts.HTTPClient
		client = &cp
	}
	client.Timeout = DefaultTimeout
	if opts.Timeout > 0 {
		client.Timeout = opts.Timeout
	}

	return &Client{
		baseURL:    creds.BaseURL,
		httpClient: client,
	}
}

func (c *Client) Kind() types.ProviderKind {
	return types.ProviderLocalLLM
}

// ListModels 获取本地服务的模型 ID
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	refs, err := c.fetchModels(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	return ids, nil
}

// Probe GET {base_url}/models，返回服务端列出的全部原始条目
func (c *Client) Probe(ctx context.Context) *types.ProbeResult {
	refs, err := c.fetchModels(ctx)
	if err != nil {
		return types.ProbeFailed(err)
	}
	return types.ProbeSucceeded("Successfully connected to "+c.baseURL, refs)
}

func (c *Client) fetchModels(ctx context.Context) ([]types.ModelRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, c.connectionError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.connectionError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.connectionError(err)
	}
	if !gjson.ValidBytes(body) {
		return nil, c.connectionError(errInvalidJSON)
	}

	data := gjson.GetBytes(body, "data")
	refs := make([]types.ModelRef, 0, len(data.Array()))
	data.ForEach(func(_, m gjson.Result) bool {
		refs = append(refs, types.ModelRef{
			ID:      m.Get("id").String(),
			Object:  m.Get("object").String(),
			OwnedBy: m.Get("owned_by").String(),
			Raw:     json.RawMessage(m.Raw),
		})
		return true
	})
	return refs, nil
}

func (c *Client) statusError(status int) *types.ProviderError {
	pe := &types.ProviderError{
		Kind:       types.ClassifyFailure(status, ""),
		Provider:   types.ProviderLocalLLM,
		StatusCode: status,
	}
	switch pe.Kind {
	case types.ErrorKindAuthentication:
		pe.Message = types.MessageAuthenticationFailed
	case types.ErrorKindAuthorization:
		pe.Message = types.MessageAuthorizationFailed
	case types.ErrorKindNotFound:
		pe.Message = types.MessageResourceNotFound
	default:
		pe.Message = fmt.Sprintf("Failed to connect to %s. Status: %d", c.baseURL, status)
	}
	return pe
}

func (c *Client) connectionError(err error) *types.ProviderError {
	return &types.ProviderError{
		Kind:     types.ErrorKindConnection,
		Provider: types.ProviderLocalLLM,
		Message:  "Connection failed: " + err.Error(),
		Err:      err,
	}
}
