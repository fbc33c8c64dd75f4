package biz

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/raven-ai/internal/ai/instruction"
	"github.com/lk2023060901/raven-ai/internal/ai/provider/types"
	apperrors "github.com/lk2023060901/raven-ai/internal/pkg/errors"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/lk2023060901/raven-ai/internal/session"
	"go.uber.org/zap"
)

// PermissionChecker 权限检查
type PermissionChecker interface {
	Require(user *session.User, resource, action string) error
}

// ClientFactory 按凭证构造服务商客户端
type ClientFactory interface {
	Build(creds types.Credentials) (types.Client, error)
}

// Options 用例配置
type Options struct {
	AllowPrefixes  []string
	DenySubstrings []string
	SiteName       string
	AppName        string
	// Runner 并发执行服务商状态检查，为空时顺序执行
	Runner TaskGroup
}

// TestConfigRequest 待测试的服务商配置（来自请求，而非已保存的设置）
type TestConfigRequest struct {
	Provider       string `json:"provider"`
	APIURL         string `json:"api_url"`
	APIKey         string `json:"api_key"`
	Endpoint       string `json:"endpoint"`
	APIVersion     string `json:"api_version"`
	DeploymentName string `json:"deployment_name"`
	Organization   string `json:"organization"`
	Project        string `json:"project"`
}

// Credentials 按服务商类型组装凭证
func (r *TestConfigRequest) Credentials(kind types.ProviderKind) types.Credentials {
	switch kind {
	case types.ProviderAzureOpenAI:
		return types.AzureCredentials{
			APIKey:         r.APIKey,
			Endpoint:       r.Endpoint,
			APIVersion:     r.APIVersion,
			DeploymentName: r.DeploymentName,
		}
	case types.ProviderLocalLLM:
		return types.LocalLLMCredentials{BaseURL: r.APIURL}
	default:
		return types.OpenAICredentials{
			APIKey:       r.APIKey,
			Organization: r.Organization,
			Project:      r.Project,
			BaseURL:      r.APIURL,
		}
	}
}

// InstructionPreview 指令预览结果
type InstructionPreview struct {
	Instruction string `json:"instruction"`
	HTML        string `json:"html,omitempty"`
}

// CreatePromptInput 新建提示词
type CreatePromptInput struct {
	Prompt   string `json:"prompt"`
	IsGlobal bool   `json:"is_global"`
	RavenBot string `json:"raven_bot"`
}

// AIFeaturesUseCase AI 功能用例
type AIFeaturesUseCase struct {
	settings SettingsRepo
	prompts  PromptRepo
	perms    PermissionChecker
	clients  ClientFactory
	renderer *instruction.Renderer
	opts     Options
	logger   *logger.Logger

	now        func() time.Time
	sdkVersion func() string
}

// NewAIFeaturesUseCase 创建 AI 功能用例
func NewAIFeaturesUseCase(
	settings SettingsRepo,
	prompts PromptRepo,
	perms PermissionChecker,
	clients ClientFactory,
	renderer *instruction.Renderer,
	opts Options,
	log *logger.Logger,
) *AIFeaturesUseCase {
	if len(opts.AllowPrefixes) == 0 {
		opts.AllowPrefixes = types.DefaultAllowPrefixes
	}
	if len(opts.DenySubstrings) == 0 {
		opts.DenySubstrings = types.DefaultDenySubstrings
	}
	if log == nil {
		log = logger.L()
	}

	return &AIFeaturesUseCase{
		settings:   settings,
		prompts:    prompts,
		perms:      perms,
		clients:    clients,
		renderer:   renderer,
		opts:       opts,
		logger:     log.Named("ai"),
		now:        time.Now,
		sdkVersion: SDKVersionFromBuildInfo,
	}
}

// ListOpenAIModels 列出可供助手使用的 OpenAI 模型；未配置或调用失败时返回空列表
func (uc *AIFeaturesUseCase) ListOpenAIModels(ctx context.Context, user *session.User) ([]string, error) {
	if err := uc.perms.Require(user, session.ResourceRavenBot, session.ActionRead); err != nil {
		return nil, err
	}
	log := uc.logger.WithContext(ctx)

	settings, ok := uc.loadSettings(ctx, log)
	if !ok {
		return []string{}, nil
	}
	if !settings.EnableAIIntegration {
		log.Warn("OpenAI models requested but AI integration is not enabled")
		return []string{}, nil
	}

	apiKey, err := uc.settings.GetSecret(ctx, SecretOpenAIAPIKey)
	if err != nil {
		log.Error("failed to read OpenAI API key", zap.Error(err))
		return []string{}, nil
	}

	models, ok := uc.listModels(ctx, log, settings.OpenAICredentials(apiKey))
	if !ok {
		return []string{}, nil
	}
	return types.FilterCompatibleModels(models, uc.opts.AllowPrefixes, uc.opts.DenySubstrings), nil
}

// ListAzureModels Azure 不支持列出模型，返回配置的部署名
func (uc *AIFeaturesUseCase) ListAzureModels(ctx context.Context, user *session.User) ([]string, error) {
	if err := uc.perms.Require(user, session.ResourceRavenBot, session.ActionRead); err != nil {
		return nil, err
	}
	log := uc.logger.WithContext(ctx)

	settings, ok := uc.loadSettings(ctx, log)
	if !ok {
		return []string{}, nil
	}
	if !settings.EnableAIIntegration {
		log.Warn("Azure AI models requested but AI integration is not enabled")
		return []string{}, nil
	}
	if !settings.EnableAzureAI {
		log.Warn("Azure AI models requested but Azure AI is not enabled")
		return []string{}, nil
	}

	apiKey, err := uc.settings.GetSecret(ctx, SecretAzureAPIKey)
	if err != nil {
		log.Error("failed to read Azure API key", zap.Error(err))
		return []string{}, nil
	}

	models, ok := uc.listModels(ctx, log, settings.AzureCredentials(apiKey))
	if !ok {
		return []string{}, nil
	}
	log.Info("returning Azure deployment as available model", zap.Strings("models", models))
	return models, nil
}

// ListLocalModels 列出本地服务的模型（不过滤）
func (uc *AIFeaturesUseCase) ListLocalModels(ctx context.Context, user *session.User) ([]string, error) {
	if err := uc.perms.Require(user, session.ResourceRavenBot, session.ActionRead); err != nil {
		return nil, err
	}
	log := uc.logger.WithContext(ctx)

	settings, ok := uc.loadSettings(ctx, log)
	if !ok {
		return []string{}, nil
	}
	if !settings.EnableAIIntegration || !settings.EnableLocalLLM {
		log.Warn("Local LLM models requested but Local LLM is not enabled")
		return []string{}, nil
	}

	models, ok := uc.listModels(ctx, log, settings.LocalLLMCredentials())
	if !ok {
		return []string{}, nil
	}
	return models, nil
}

// TestConfiguration 使用请求中的配置做一次连通性检查
func (uc *AIFeaturesUseCase) TestConfiguration(ctx context.Context, user *session.User, req *TestConfigRequest) (*types.ProbeResult, error) {
	if err := uc.perms.Require(user, session.ResourceRavenSettings, session.ActionWrite); err != nil {
		return nil, err
	}

	kind, err := types.ParseProviderKind(req.Provider)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrAIInvalidProvider, err.Error())
	}

	log := uc.logger.WithContext(ctx).With(
		zap.String("provider", string(kind)),
		logger.Secret("api_key", req.APIKey),
	)

	client, err := uc.clients.Build(req.Credentials(kind))
	if err != nil {
		log.Info("provider configuration rejected", zap.Error(err))
		return types.ProbeFailed(err), nil
	}

	result := client.Probe(ctx)
	if result.Success {
		log.Info("provider test connection succeeded", zap.Int("models", len(result.Models)))
	} else {
		log.Warn("provider test connection failed",
			zap.String("error_kind", string(result.ErrorKind)),
			zap.String("message", result.Message))
	}
	return result, nil
}

// InstructionPreview 渲染指令模板，format=html 时附带 Markdown 转换结果
func (uc *AIFeaturesUseCase) InstructionPreview(ctx context.Context, user *session.User, text, format string) (*InstructionPreview, error) {
	if err := uc.perms.Require(user, session.ResourceRavenBot, session.ActionWrite); err != nil {
		return nil, err
	}

	vars := instruction.Variables(
		instruction.Subject{
			UserID:    user.ID,
			FirstName: user.FirstName,
			FullName:  user.FullName,
			Email:     user.Email,
		},
		instruction.Site{SiteName: uc.opts.SiteName, AppName: uc.opts.AppName},
		uc.now(),
	)

	rendered, err := uc.renderer.Render(text, vars)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrAITemplateInvalid, err.Error())
	}

	preview := &InstructionPreview{Instruction: rendered}
	if strings.EqualFold(format, "html") {
		html, err := uc.renderer.ToHTML(rendered)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrAITemplateInvalid, err.Error())
		}
		preview.HTML = html
	}
	return preview, nil
}

// SavedPrompts 返回全局及用户自己的提示词，属于 bot 的排在前面
func (uc *AIFeaturesUseCase) SavedPrompts(ctx context.Context, user *session.User, bot string) ([]*SavedPrompt, error) {
	prompts, err := uc.prompts.ListVisible(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "failed to list saved prompts")
	}
	return OrderPromptsForBot(prompts, bot), nil
}

// CreatePrompt 保存提示词；全局提示词需要 Raven Bot 写权限
func (uc *AIFeaturesUseCase) CreatePrompt(ctx context.Context, user *session.User, input *CreatePromptInput) (*SavedPrompt, error) {
	text := strings.TrimSpace(input.Prompt)
	if text == "" {
		return nil, apperrors.NewValidationError("prompt")
	}
	if input.IsGlobal {
		if err := uc.perms.Require(user, session.ResourceRavenBot, session.ActionWrite); err != nil {
			return nil, err
		}
	}

	prompt := &SavedPrompt{
		Name:      uuid.NewString(),
		Prompt:    text,
		IsGlobal:  input.IsGlobal,
		RavenBot:  strings.TrimSpace(input.RavenBot),
		Owner:     user.ID,
		CreatedAt: uc.now(),
	}
	if err := uc.prompts.Create(ctx, prompt); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "failed to save prompt")
	}
	return prompt, nil
}

// SDKVersion 服务商 SDK 版本
func (uc *AIFeaturesUseCase) SDKVersion(_ context.Context, user *session.User) (string, error) {
	if err := uc.perms.Require(user, session.ResourceRavenBot, session.ActionRead); err != nil {
		return "", err
	}
	return uc.sdkVersion(), nil
}

// GetSettings 读取 AI 设置（不含密钥）
func (uc *AIFeaturesUseCase) GetSettings(ctx context.Context, user *session.User) (*AISettings, error) {
	if err := uc.perms.Require(user, session.ResourceRavenSettings, session.ActionRead); err != nil {
		return nil, err
	}
	settings, err := uc.settings.Get(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "failed to load settings")
	}
	return settings, nil
}

// UpdateSettings 保存 AI 设置，URL 字段按统一规则规范化
func (uc *AIFeaturesUseCase) UpdateSettings(ctx context.Context, user *session.User, update *SettingsUpdate) (*AISettings, error) {
	if err := uc.perms.Require(user, session.ResourceRavenSettings, session.ActionWrite); err != nil {
		return nil, err
	}

	s := &update.Settings
	s.OpenAIOrganisationID = strings.TrimSpace(s.OpenAIOrganisationID)
	s.OpenAIProjectID = strings.TrimSpace(s.OpenAIProjectID)
	s.OpenAIBaseURL = types.NormalizeURL(s.OpenAIBaseURL)
	s.AzureEndpoint = types.NormalizeURL(s.AzureEndpoint)
	s.AzureAPIVersion = strings.TrimSpace(s.AzureAPIVersion)
	s.AzureDeploymentName = strings.TrimSpace(s.AzureDeploymentName)
	s.LocalLLMAPIURL = types.NormalizeURL(s.LocalLLMAPIURL)
	update.OpenAIAPIKey = trimPtr(update.OpenAIAPIKey)
	update.AzureAPIKey = trimPtr(update.AzureAPIKey)

	if err := uc.settings.Save(ctx, update); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "failed to save settings")
	}
	uc.logger.WithContext(ctx).Info("AI settings updated",
		zap.Bool("ai_enabled", s.EnableAIIntegration),
		zap.Bool("azure_enabled", s.EnableAzureAI),
		zap.Bool("local_llm_enabled", s.EnableLocalLLM))

	return uc.GetSettings(ctx, user)
}

func (uc *AIFeaturesUseCase) loadSettings(ctx context.Context, log *logger.Logger) (*AISettings, bool) {
	settings, err := uc.settings.Get(ctx)
	if err != nil {
		log.Error("failed to load AI settings", zap.Error(err))
		return nil, false
	}
	return settings, true
}

// listModels 构造客户端并列出模型，任何失败都只记录日志
func (uc *AIFeaturesUseCase) listModels(ctx context.Context, log *logger.Logger, creds types.Credentials) ([]string, bool) {
	client, err := uc.clients.Build(creds)
	if err != nil {
		log.Warn("provider is not configured",
			zap.String("provider", string(creds.Kind())),
			zap.Int("error_code", types.AsAppError(err).Code),
			zap.Error(err))
		return nil, false
	}

	models, err := client.ListModels(ctx)
	if err != nil {
		log.Error("failed to list provider models",
			zap.String("provider", string(creds.Kind())),
			zap.Int("error_code", types.AsAppError(err).Code),
			zap.Error(err))
		return nil, false
	}
	return models, true
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
