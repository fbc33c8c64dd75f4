package www

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/lk2023060901/raven-ai/internal/pkg/response"
	"github.com/lk2023060901/raven-ai/internal/session"
	"go.uber.org/zap"
)

//go:embed templates/raven.html
var templateFS embed.FS

// PageTemplate 入口页面模板名
const PageTemplate = "raven.html"

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/"+PageTemplate))

// LoadTemplates 将入口页面模板注册到 gin
func LoadTemplates(engine *gin.Engine) {
	engine.SetHTMLTemplate(pageTemplate)
}

// Handler 前端入口页面
type Handler struct {
	builder *Builder
	logger  *logger.Logger
}

// NewHandler 创建入口页面处理器
func NewHandler(builder *Builder, logger *logger.Logger) *Handler {
	return &Handler{
		builder: builder,
		logger:  logger,
	}
}

// Page 渲染 /raven 页面，访客同样可以访问
func (h *Handler) Page(c *gin.Context) {
	page, err := h.builder.Context(c.Request.Context(), session.FromGin(c))
	if err != nil {
		h.logger.WithContext(c.Request.Context()).Error("failed to build page context", zap.Error(err))
		response.HandleError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.HTML(http.StatusOK, PageTemplate, page)
}

// ContextForDev 开发模式下返回启动数据
func (h *Handler) ContextForDev(c *gin.Context) {
	boot, err := h.builder.BootForDev(c.Request.Context(), session.FromGin(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, boot)
}
