package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelsBody = `{"object":"list","data":[
{"id":"gpt-4o","object":"model","owned_by":"openai"},
{"id":"gpt-4o-mini","object":"model","owned_by":"openai"},
{"id":"whisper-1","object":"model","owned_by":"openai"},
{"id":"o1","object":"model","owned_by":"openai"},
{"id":"gpt-3.5-turbo","object":"model","owned_by":"openai"},
{"id":"text-embedding-3-small","object":"model","owned_by":"openai"}
]}`

func TestClientConfig(t *testing.T) {
	cfg := ClientConfig(types.OpenAICredentials{
		APIKey:       "sk-test",
		Organization: "org-1",
		BaseURL:      "https://proxy.example.com/v1",
	}, types.ClientOptions{Timeout: 3 * time.Second})

	assert.Equal(t, "org-1", cfg.OrgID)
	assert.Equal(t, "https://proxy.example.com/v1", cfg.BaseURL)

	httpClient, ok := cfg.HTTPClient.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, httpClient.Timeout)
	assert.Nil(t, httpClient.Transport)

	def := ClientConfig(types.OpenAICredentials{APIKey: "sk-test"}, types.ClientOptions{})
	assert.Equal(t, "https://api.openai.com/v1", def.BaseURL)
	assert.Equal(t, DefaultTimeout, def.HTTPClient.(*http.Client).Timeout)
}

func TestClient_ListModelsSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "org-1", r.Header.Get("OpenAI-Organization"))
		assert.Equal(t, "proj-1", r.Header.Get("OpenAI-Project"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(modelsBody))
	}))
	defer srv.Close()

	c := NewClient(types.OpenAICredentials{
		APIKey:       "sk-test",
		Organization: "org-1",
		Project:      "proj-1",
		BaseURL:      srv.URL + "/v1",
	}, types.ClientOptions{})

	ids, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini", "whisper-1", "o1", "gpt-3.5-turbo", "text-embedding-3-small"}, ids)
	assert.Equal(t, types.ProviderOpenAI, c.Kind())
}

func TestClient_ProbeReturnsFirstFive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(modelsBody))
	}))
	defer srv.Close()

	c := NewClient(types.OpenAICredentials{APIKey: "sk-test", BaseURL: srv.URL}, types.ClientOptions{})
	res := c.Probe(context.Background())

	assert.True(t, res.Success)
	assert.Equal(t, "Successfully connected to OpenAI", res.Message)
	require.Len(t, res.Models, 5)
	assert.Equal(t, "gpt-4o", res.Models[0].ID)
}

func TestClient_ProbeFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind types.ErrorKind
		wantMsg  string
	}{
		{
			name:     "invalid key",
			status:   http.StatusUnauthorized,
			body:     `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			wantKind: types.ErrorKindAuthentication,
			wantMsg:  types.MessageAuthenticationFailed,
		},
		{
			name:     "forbidden",
			status:   http.StatusForbidden,
			body:     `{"error":{"message":"Country not supported","type":"request_forbidden"}}`,
			wantKind: types.ErrorKindAuthorization,
			wantMsg:  types.MessageAuthorizationFailed,
		},
		{
			name:     "wrong base url",
			status:   http.StatusNotFound,
			body:     `not found`,
			wantKind: types.ErrorKindNotFound,
			wantMsg:  types.MessageResourceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(types.OpenAICredentials{APIKey: "sk-secret-key", BaseURL: srv.URL}, types.ClientOptions{})
			res := c.Probe(context.Background())

			assert.False(t, res.Success)
			assert.Equal(t, tt.wantKind, res.ErrorKind)
			assert.Equal(t, tt.wantMsg, res.Message)
			assert.NotContains(t, res.Message, "sk-secret-key")
		})
	}
}

func TestClient_ServerErrorKeepsRawText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded for key sk-secret-key","type":"server_error"}}`))
	}))
	defer srv.Close()

	c := NewClient(types.OpenAICredentials{APIKey: "sk-secret-key", BaseURL: srv.URL}, types.ClientOptions{})
	res := c.Probe(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, types.ErrorKindConnection, res.ErrorKind)
	assert.Contains(t, res.Message, "Connection failed: ")
	assert.Contains(t, res.Message, "upstream exploded")
	assert.NotContains(t, res.Message, "sk-secret-key")
}

func TestAzureClientConfig(t *testing.T) {
	cfg := AzureClientConfig(types.AzureCredentials{
		APIKey:         "azure-key",
		Endpoint:       "https://res.openai.azure.com",
		APIVersion:     "2024-06-01",
		DeploymentName: "gpt-4.1-mini",
	}, types.ClientOptions{})

	assert.Equal(t, "https://res.openai.azure.com", cfg.BaseURL)
	assert.Equal(t, "2024-06-01", cfg.APIVersion)
	assert.Equal(t, "gpt-4.1-mini", cfg.GetAzureDeploymentByModel("gpt-4.1-mini"))
}

func TestAzureClient_ListModelsNoNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := NewAzureClient(types.AzureCredentials{
		APIKey: "k", Endpoint: srv.URL, APIVersion: "2024-06-01", DeploymentName: "gpt-4o",
	}, types.ClientOptions{})

	ids, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o"}, ids)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestAzureClient_Probe(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantSuccess bool
		wantKind    types.ErrorKind
		wantMsg     string
	}{
		{
			name:        "accessible",
			status:      http.StatusOK,
			body:        `{"id":"c1","object":"chat.completion","model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"length"}]}`,
			wantSuccess: true,
			wantMsg:     "Successfully connected to Azure AI. Deployment 'gpt-4o' is accessible.",
		},
		{
			name:     "deployment not found",
			status:   http.StatusNotFound,
			body:     `{"error":{"code":"DeploymentNotFound","message":"The API deployment for this resource does not exist."}}`,
			wantKind: types.ErrorKindNotFound,
			wantMsg:  "Deployment 'gpt-4o' not found. Please check your deployment name.",
		},
		{
			name:     "bad key",
			status:   http.StatusUnauthorized,
			body:     `{"error":{"code":"401","message":"Access denied due to invalid subscription key."}}`,
			wantKind: types.ErrorKindAuthentication,
			wantMsg:  types.MessageAuthenticationFailed,
		},
		{
			name:     "forbidden",
			status:   http.StatusForbidden,
			body:     `{"error":{"code":"AuthenticationTypeDisabled","message":"Key based authentication is disabled."}}`,
			wantKind: types.ErrorKindAuthorization,
			wantMsg:  types.MessageAuthorizationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/openai/deployments/gpt-4o/chat/completions", r.URL.Path)
				assert.Equal(t, "2024-06-01", r.URL.Query().Get("api-version"))
				assert.Equal(t, "azure-key", r.Header.Get("api-key"))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewAzureClient(types.AzureCredentials{
				APIKey: "azure-key", Endpoint: srv.URL, APIVersion: "2024-06-01", DeploymentName: "gpt-4o",
			}, types.ClientOptions{})
			res := c.Probe(context.Background())

			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, tt.wantKind, res.ErrorKind)
			assert.Equal(t, tt.wantMsg, res.Message)
			if tt.wantSuccess {
				assert.Equal(t, []types.ModelRef{{ID: "gpt-4o"}}, res.Models)
			}
		})
	}
}

func TestAzureClient_ProbeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewAzureClient(types.AzureCredentials{
		APIKey: "azure-key", Endpoint: srv.URL, APIVersion: "2024-06-01", DeploymentName: "gpt-4o",
	}, types.ClientOptions{})
	res := c.Probe(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, types.ErrorKindConnection, res.ErrorKind)
	assert.Contains(t, res.Message, "Deployment test failed: ")
}

func TestAzureClient_ProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewAzureClient(types.AzureCredentials{
		APIKey: "azure-key", Endpoint: url, APIVersion: "2024-06-01", DeploymentName: "gpt-4o",
	}, types.ClientOptions{Timeout: time.Second})
	res := c.Probe(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, types.ErrorKindConnection, res.ErrorKind)
	assert.Contains(t, res.Message, "Azure AI connection failed: ")
}

func TestProbeRequest(t *testing.T) {
	req := probeRequest("gpt-4o")
	assert.Equal(t, 1, req.MaxTokens)
	assert.Zero(t, req.MaxCompletionTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "test", req.Messages[0].Content)

	reasoning := probeRequest("o3-mini")
	assert.Zero(t, reasoning.MaxTokens)
	assert.Equal(t, 1, reasoning.MaxCompletionTokens)
}
