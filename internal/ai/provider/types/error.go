package types

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	apperrors "github.com/lk2023060901/raven-ai/internal/pkg/errors"
)

// ErrorKind 服务商错误分类
type ErrorKind string

const (
	ErrorKindConfigurationMissing ErrorKind = "configuration_missing"
	ErrorKindAuthentication       ErrorKind = "authentication_failed"
	ErrorKindAuthorization        ErrorKind = "authorization_failed"
	ErrorKindNotFound             ErrorKind = "resource_not_found"
	ErrorKindConnection           ErrorKind = "connection_failed"
)

// Code 错误分类对应的业务错误码
func (k ErrorKind) Code() int {
	switch k {
	case ErrorKindConfigurationMissing:
		return apperrors.ErrAIConfigurationMissing
	case ErrorKindAuthentication:
		return apperrors.ErrAIAuthenticationFailed
	case ErrorKindAuthorization:
		return apperrors.ErrAIAuthorizationFailed
	case ErrorKindNotFound:
		return apperrors.ErrAIResourceNotFound
	default:
		return apperrors.ErrAIConnectionFailed
	}
}

// 通用提示语（不包含任何密钥）
const (
	MessageAuthenticationFailed = "Authentication failed. Please check your API key."
	MessageAuthorizationFailed  = "Access forbidden. Please check your API key permissions."
	MessageResourceNotFound     = "Resource not found. Please check the API base URL."
)

// ProviderError 服务商错误
type ProviderError struct {
	Kind       ErrorKind    // 错误分类
	Provider   ProviderKind // 服务商
	StatusCode int          // HTTP 状态码（无响应时为 0）
	Message    string       // 面向用户的提示
	Err        error        // 原始错误
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s] %s: %v", e.Provider, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s] %s", e.Provider, e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// AppError 转换为业务错误
func (e *ProviderError) AppError() *apperrors.AppError {
	return apperrors.Wrap(e, e.Kind.Code(), e.Message)
}

// AsAppError 将服务商失败转换为业务错误，非 ProviderError 视为连接失败
func AsAppError(err error) *apperrors.AppError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.AppError()
	}
	return apperrors.Wrap(err, apperrors.ErrAIConnectionFailed)
}

// NewConfigurationMissing 创建配置缺失错误
func NewConfigurationMissing(provider ProviderKind, message string) *ProviderError {
	return &ProviderError{
		Kind:     ErrorKindConfigurationMissing,
		Provider: provider,
		Message:  message,
	}
}

// IsKind 判断 err 是否为指定分类的 ProviderError
func IsKind(err error, kind ErrorKind) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == kind
}

// 状态码按完整数字匹配，避免命中端口号等
var (
	status401 = regexp.MustCompile(`\b401\b`)
	status403 = regexp.MustCompile(`\b403\b`)
	status404 = regexp.MustCompile(`\b404\b`)
)

// ClassifyFailure 根据 HTTP 状态码（优先）和错误文本对失败进行分类
func ClassifyFailure(statusCode int, text string) ErrorKind {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrorKindAuthentication
	case http.StatusForbidden:
		return ErrorKindAuthorization
	case http.StatusNotFound:
		return ErrorKindNotFound
	}

	switch {
	case strings.Contains(text, "DeploymentNotFound") || status404.MatchString(text):
		return ErrorKindNotFound
	case strings.Contains(text, "Unauthorized") || strings.Contains(text, "InvalidApiKey") || status401.MatchString(text):
		return ErrorKindAuthentication
	case strings.Contains(text, "Forbidden") || status403.MatchString(text):
		return ErrorKindAuthorization
	}
	return ErrorKindConnection
}

// RedactSecrets 将文本中出现的密钥替换为 ****
func RedactSecrets(text string, secrets ...string) string {
	for _, s := range secrets {
		if len(s) >= 4 {
			text = strings.ReplaceAll(text, s, "****")
		}
	}
	return text
}
