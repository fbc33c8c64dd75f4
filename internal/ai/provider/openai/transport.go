package openai

import (
	"net/http"
	"time"

	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
)

// DefaultTimeout SDK 请求默认超时
const DefaultTimeout = 60 * time.Second

// headerTransport 为每个请求追加固定 header
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// newHTTPClient 基于选项构造 HTTP 客户端，不修改调用方传入的实例
func newHTTPClient(opts types.ClientOptions, headers map[string]string) *http.Client {
	client := &http.Client{}
	if opts.HTTPClient != nil {
		cp := *opts.HTTPClient
		client = &cp
	}

	switch {
	case opts.Timeout > 0:
		client.Timeout = opts.Timeout
	case client.Timeout == 0:
		client.Timeout = DefaultTimeout
	}

	if len(headers) > 0 {
		base := client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		client.Transport = &headerTransport{base: base, headers: headers}
	}
	return client
}
