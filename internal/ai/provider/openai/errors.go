package openai

import (
	"errors"
	"fmt"

	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
	goopenai "github.com/sashabaranov/go-openai"
)

// statusOf 从 SDK 错误中提取 HTTP 状态码，无响应时返回 0
func statusOf(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// errorText 返回错误文本；Azure 的错误码（如 DeploymentNotFound）不在 Error() 中，需要补上
func errorText(err error) string {
	text := err.Error()
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code != "" {
			text = code + ": " + text
		}
	}
	return text
}

func classifyOpenAI(err error, creds types.OpenAICredentials) *types.ProviderError {
	status := statusOf(err)
	raw := types.RedactSecrets(errorText(err), creds.APIKey)

	pe := &types.ProviderError{
		Kind:       types.ClassifyFailure(status, raw),
		Provider:   types.ProviderOpenAI,
		StatusCode: status,
		Err:        err,
	}
	switch pe.Kind {
	case types.ErrorKindAuthentication:
		pe.Message = types.MessageAuthenticationFailed
	case types.ErrorKindAuthorization:
		pe.Message = types.MessageAuthorizationFailed
	case types.ErrorKindNotFound:
		pe.Message = types.MessageResourceNotFound
	default:
		pe.Message = "Connection failed: " + raw
	}
	return pe
}

func classifyAzure(err error, creds types.AzureCredentials) *types.ProviderError {
	status := statusOf(err)
	raw := types.RedactSecrets(errorText(err), creds.APIKey)

	pe := &types.ProviderError{
		Kind:       types.ClassifyFailure(status, raw),
		Provider:   types.ProviderAzureOpenAI,
		StatusCode: status,
		Err:        err,
	}
	switch {
	case pe.Kind == types.ErrorKindNotFound:
		pe.Message = fmt.Sprintf("Deployment '%s' not found. Please check your deployment name.", creds.DeploymentName)
	case pe.Kind == types.ErrorKindAuthentication:
		pe.Message = types.MessageAuthenticationFailed
	case pe.Kind == types.ErrorKindAuthorization:
		pe.Message = types.MessageAuthorizationFailed
	case status != 0:
		pe.Message = "Deployment test failed: " + raw
	default:
		pe.Message = "Azure AI connection failed: " + raw
	}
	return pe
}
