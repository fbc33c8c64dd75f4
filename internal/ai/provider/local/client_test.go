package local

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Probe(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"object":"list","data":[
		{"id":"llama3:8b","object":"model","owned_by":"library"},
		{"id":"qwen2.5:7b","object":"model","owned_by":"library"}
	]}`)
	base := srv.URL + "/v1"

	res := NewClient(types.LocalLLMCredentials{BaseURL: base}, types.ClientOptions{}).Probe(context.Background())

	assert.True(t, res.Success)
	assert.Equal(t, "Successfully connected to "+base, res.Message)
	require.Len(t, res.Models, 2)
	assert.Equal(t, "llama3:8b", res.Models[0].ID)
	assert.Equal(t, "library", res.Models[0].OwnedBy)
	assert.Equal(t, "qwen2.5:7b", res.Models[1].ID)
}

func TestClient_ProbeKeepsRawEntries(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"data":[
		{"id":"llama3","object":"model","created":1700000000,"details":{"family":"llama"}},
		{"name":"unnamed"}
	]}`)

	res := NewClient(types.LocalLLMCredentials{BaseURL: srv.URL + "/v1"}, types.ClientOptions{}).Probe(context.Background())
	require.True(t, res.Success)
	require.Len(t, res.Models, 2)
	assert.Empty(t, res.Models[1].ID)

	out, err := json.Marshal(res.Models)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"llama3","object":"model","created":1700000000,"details":{"family":"llama"}},
		{"name":"unnamed"}
	]`, string(out))
}

func TestClient_ListModels(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"data":[{"id":"a"},{"object":"model"},{"id":"b"}]}`)

	ids, err := NewClient(types.LocalLLMCredentials{BaseURL: srv.URL + "/v1"}, types.ClientOptions{}).ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestClient_ProbeEmptyData(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"object":"list"}`)

	res := NewClient(types.LocalLLMCredentials{BaseURL: srv.URL + "/v1"}, types.ClientOptions{}).Probe(context.Background())
	assert.True(t, res.Success)
	assert.Empty(t, res.Models)
}

func TestClient_ProbeStatusFailures(t *testing.T) {
	tests := []struct {
		status   int
		wantKind types.ErrorKind
		wantMsg  string
	}{
		{http.StatusUnauthorized, types.ErrorKindAuthentication, types.MessageAuthenticationFailed},
		{http.StatusForbidden, types.ErrorKindAuthorization, types.MessageAuthorizationFailed},
		{http.StatusNotFound, types.ErrorKindNotFound, types.MessageResourceNotFound},
		{http.StatusInternalServerError, types.ErrorKindConnection, ""},
	}

	for _, tt := range tests {
		srv := newServer(t, tt.status, `oops`)
		base := srv.URL + "/v1"

		res := NewClient(types.LocalLLMCredentials{BaseURL: base}, types.ClientOptions{}).Probe(context.Background())

		assert.False(t, res.Success)
		assert.Equal(t, tt.wantKind, res.ErrorKind)
		if tt.wantMsg == "" {
			assert.Equal(t, "Failed to connect to "+base+". Status: 500", res.Message)
		} else {
			assert.Equal(t, tt.wantMsg, res.Message)
		}
	}
}

func TestClient_ProbeInvalidJSON(t *testing.T) {
	srv := newServer(t, http.StatusOK, `<html>not json</html>`)

	res := NewClient(types.LocalLLMCredentials{BaseURL: srv.URL + "/v1"}, types.ClientOptions{}).Probe(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, types.ErrorKindConnection, res.ErrorKind)
	assert.Contains(t, res.Message, "Connection failed: ")
}

func TestClient_ProbeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(types.LocalLLMCredentials{BaseURL: srv.URL}, types.ClientOptions{Timeout: 50 * time.Millisecond})
	res := c.Probe(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, types.ErrorKindConnection, res.ErrorKind)
	assert.Contains(t, res.Message, "Connection failed: ")
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient(types.LocalLLMCredentials{BaseURL: "http://localhost:11434/v1"}, types.ClientOptions{HTTPClient: &http.Client{Timeout: time.Minute}})
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.Equal(t, types.ProviderLocalLLM, c.Kind())
}
