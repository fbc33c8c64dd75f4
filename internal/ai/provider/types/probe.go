package types

import (
	"errors"

	apperrors "github.com/lk2023060901/raven-ai/internal/pkg/errors"
)

// ProbeResult 连通性检查结果，Message 直接展示给用户
type ProbeResult struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Models    []ModelRef `json:"models,omitempty"`
	ErrorKind ErrorKind  `json:"error_kind,omitempty"`
}

// ProbeSucceeded 成功结果
func ProbeSucceeded(message string, models []ModelRef) *ProbeResult {
	if models == nil {
		models = []ModelRef{}
	}
	return &ProbeResult{Success: true, Message: message, Models: models}
}

// ProbeFailed 将任意错误转换为失败结果；非 ProviderError 归类为连接失败并保留原始文本
func ProbeFailed(err error) *ProbeResult {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return &ProbeResult{Message: pe.Message, ErrorKind: pe.Kind}
	}
	return &ProbeResult{
		Message:   "Connection failed: " + err.Error(),
		ErrorKind: ErrorKindConnection,
	}
}

// Err 失败结果对应的业务错误，成功时为 nil
func (r *ProbeResult) Err() error {
	if r.Success {
		return nil
	}
	return apperrors.New(r.ErrorKind.Code(), r.Message)
}
