package service

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/raven-ai/internal/ai/biz"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/lk2023060901/raven-ai/internal/pkg/response"
	"github.com/lk2023060901/raven-ai/internal/session"
	"go.uber.org/zap"
)

// AIFeaturesService AI 功能 HTTP 服务
type AIFeaturesService struct {
	uc     *biz.AIFeaturesUseCase
	logger *logger.Logger
}

// NewAIFeaturesService 创建 AI 功能服务
func NewAIFeaturesService(uc *biz.AIFeaturesUseCase, logger *logger.Logger) *AIFeaturesService {
	return &AIFeaturesService{
		uc:     uc,
		logger: logger,
	}
}

// ListOpenAIModels 获取可供助手使用的 OpenAI 模型
func (s *AIFeaturesService) ListOpenAIModels(c *gin.Context) {
	models, err := s.uc.ListOpenAIModels(c.Request.Context(), session.FromGin(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, models)
}

// ListAzureModels 获取 Azure OpenAI 部署
func (s *AIFeaturesService) ListAzureModels(c *gin.Context) {
	models, err := s.uc.ListAzureModels(c.Request.Context(), session.FromGin(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, models)
}

// ListLocalModels 获取本地服务模型
func (s *AIFeaturesService) ListLocalModels(c *gin.Context) {
	models, err := s.uc.ListLocalModels(c.Request.Context(), session.FromGin(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, models)
}

// TestConfiguration 测试服务商配置，失败结果同样以 200 返回
func (s *AIFeaturesService) TestConfiguration(c *gin.Context) {
	var req biz.TestConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := s.uc.TestConfiguration(c.Request.Context(), session.FromGin(c), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// InstructionPreview 渲染指令预览
func (s *AIFeaturesService) InstructionPreview(c *gin.Context) {
	var req InstructionPreviewRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	preview, err := s.uc.InstructionPreview(c.Request.Context(), session.FromGin(c), req.Instruction, req.Format)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, preview)
}

// SavedPrompts 获取当前用户可见的提示词
func (s *AIFeaturesService) SavedPrompts(c *gin.Context) {
	prompts, err := s.uc.SavedPrompts(c.Request.Context(), session.FromGin(c), c.Query("bot"))
	if err != nil {
		s.logger.Error("failed to list saved prompts", zap.Error(err))
		response.HandleError(c, err)
		return
	}
	response.Success(c, prompts)
}

// CreatePrompt 保存提示词
func (s *AIFeaturesService) CreatePrompt(c *gin.Context) {
	var req biz.CreatePromptInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	prompt, err := s.uc.CreatePrompt(c.Request.Context(), session.FromGin(c), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, prompt)
}

// SDKVersion 获取服务商 SDK 版本
func (s *AIFeaturesService) SDKVersion(c *gin.Context) {
	version, err := s.uc.SDKVersion(c.Request.Context(), session.FromGin(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, SDKVersionResponse{Module: biz.OpenAISDKModule, Version: version})
}

// GetSettings 获取 AI 设置
func (s *AIFeaturesService) GetSettings(c *gin.Context) {
	settings, err := s.uc.GetSettings(c.Request.Context(), session.FromGin(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, settings)
}

// UpdateSettings 更新 AI 设置
func (s *AIFeaturesService) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	settings, err := s.uc.UpdateSettings(c.Request.Context(), session.FromGin(c), req.toUpdate())
	if err != nil {
		s.logger.Error("failed to update AI settings", zap.Error(err))
		response.HandleError(c, err)
		return
	}
	response.Success(c, settings)
}

// ProviderStatus 检查已启用服务商的连通性
func (s *AIFeaturesService) ProviderStatus(c *gin.Context) {
	statuses, err := s.uc.ProviderStatus(c.Request.Context(), session.FromGin(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, statuses)
}

// RegisterRoutes 注册 /api/v1/ai 下的路由，调用方负责挂载会话中间件
func (s *AIFeaturesService) RegisterRoutes(r *gin.RouterGroup) {
	ai := r.Group("/ai")
	{
		ai.GET("/openai/models", s.ListOpenAIModels)
		ai.GET("/azure/models", s.ListAzureModels)
		ai.GET("/local/models", s.ListLocalModels)
		ai.POST("/test-configuration", s.TestConfiguration)
		ai.POST("/instruction-preview", s.InstructionPreview)
		ai.GET("/saved-prompts", s.SavedPrompts)
		ai.POST("/saved-prompts", s.CreatePrompt)
		ai.GET("/sdk-version", s.SDKVersion)
		ai.GET("/settings", s.GetSettings)
		ai.PUT("/settings", s.UpdateSettings)
		ai.GET("/status", s.ProviderStatus)
	}
}

// RegisterMethodRoutes 以宿主应用的方法名注册同一组接口（/api/method/raven.api.ai_features.*）
func (s *AIFeaturesService) RegisterMethodRoutes(r *gin.RouterGroup) {
	const prefix = "/raven.api.ai_features."
	r.GET(prefix+"get_openai_available_models", s.ListOpenAIModels)
	r.GET(prefix+"get_azure_openai_available_models", s.ListAzureModels)
	r.GET(prefix+"get_local_llm_available_models", s.ListLocalModels)
	r.POST(prefix+"test_llm_configuration", s.TestConfiguration)
	r.POST(prefix+"get_instruction_preview", s.InstructionPreview)
	r.GET(prefix+"get_saved_prompts", s.SavedPrompts)
	r.GET(prefix+"get_open_ai_version", s.SDKVersion)
}
