package biz

import (
	"context"

	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
	"github.com/lk2023060901/raven-ai/internal/session"
	"go.uber.org/zap"
)

// TaskGroup 并发执行一组任务并等待完成
type TaskGroup interface {
	Group(ctx context.Context, tasks ...func(context.Context)) error
}

// ProviderStatus 已启用服务商的连通性
type ProviderStatus struct {
	Provider types.ProviderKind `json:"provider"`
	// Code 业务错误码，连通时为 0
	Code   int                `json:"code"`
	Result *types.ProbeResult `json:"result"`
}

func newProviderStatus(kind types.ProviderKind, result *types.ProbeResult) *ProviderStatus {
	status := &ProviderStatus{Provider: kind, Result: result}
	if !result.Success {
		status.Code = result.ErrorKind.Code()
	}
	return status
}

// ProviderStatus 使用已保存的设置检查所有已启用的服务商；单个服务商失败体现在结果中，不返回错误
func (uc *AIFeaturesUseCase) ProviderStatus(ctx context.Context, user *session.User) ([]*ProviderStatus, error) {
	if err := uc.perms.Require(user, session.ResourceRavenSettings, session.ActionRead); err != nil {
		return nil, err
	}
	log := uc.logger.WithContext(ctx)

	settings, ok := uc.loadSettings(ctx, log)
	if !ok || !settings.EnableAIIntegration {
		return []*ProviderStatus{}, nil
	}

	var credentials []types.Credentials
	openAIKey, err := uc.settings.GetSecret(ctx, SecretOpenAIAPIKey)
	if err != nil {
		log.Error("failed to read OpenAI API key", zap.Error(err))
	}
	credentials = append(credentials, settings.OpenAICredentials(openAIKey))

	if settings.EnableAzureAI {
		azureKey, err := uc.settings.GetSecret(ctx, SecretAzureAPIKey)
		if err != nil {
			log.Error("failed to read Azure API key", zap.Error(err))
		}
		credentials = append(credentials, settings.AzureCredentials(azureKey))
	}
	if settings.EnableLocalLLM {
		credentials = append(credentials, settings.LocalLLMCredentials())
	}

	statuses := make([]*ProviderStatus, len(credentials))
	tasks := make([]func(context.Context), len(credentials))
	for i, creds := range credentials {
		i, creds := i, creds
		tasks[i] = func(ctx context.Context) {
			statuses[i] = newProviderStatus(creds.Kind(), uc.probe(ctx, creds))
		}
	}

	if uc.opts.Runner == nil {
		for _, task := range tasks {
			task(ctx)
		}
	} else if err := uc.opts.Runner.Group(ctx, tasks...); err != nil {
		log.Error("failed to schedule provider checks", zap.Error(err))
		for i, creds := range credentials {
			if statuses[i] == nil {
				statuses[i] = newProviderStatus(creds.Kind(), types.ProbeFailed(err))
			}
		}
	}
	return statuses, nil
}

func (uc *AIFeaturesUseCase) probe(ctx context.Context, creds types.Credentials) *types.ProbeResult {
	client, err := uc.clients.Build(creds)
	if err != nil {
		return types.ProbeFailed(err)
	}
	return client.Probe(ctx)
}
