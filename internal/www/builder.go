package www

import (
	"context"
	"encoding/json"
	"html/template"

	apperrors "github.com/lk2023060901/raven-ai/internal/pkg/errors"
	"github.com/lk2023060901/raven-ai/internal/session"
)

// Icons 站点图标路径
type Icons struct {
	Icon96         string
	AppleTouchIcon string
	MaskIcon       string
	FaviconSVG     string
	FaviconICO     string
}

// DefaultIcons 默认图标路径
func DefaultIcons() Icons {
	return Icons{
		Icon96:         "raven/public/manifest/favicon-96x96.png",
		AppleTouchIcon: "raven/public/manifest/apple-touch-icon.png",
		MaskIcon:       "frontend/public/safari-pinned-tab.svg",
		FaviconSVG:     "raven/public/manifest/favicon.svg",
		FaviconICO:     "raven/public/manifest/favicon.ico",
	}
}

// Config 页面与启动数据配置
type Config struct {
	AppName             string
	SiteName            string
	Lang                string
	BuildVersion        string
	PushRelayServerURL  string
	ServerScriptEnabled *bool // 未配置时视为 true
	DeveloperMode       bool
	Icons               Icons
}

// preloadLinks 登录用户首屏预加载的接口
const preloadLinks = `
<link rel="preload" href="/api/method/frappe.auth.get_logged_user" as="fetch" crossorigin="use-credentials">
<link rel="preload" href="/api/method/raven.api.workspaces.get_list" as="fetch" crossorigin="use-credentials">
<link rel="preload" href="/api/method/raven.api.raven_users.get_list" as="fetch" crossorigin="use-credentials">
<link rel="preload" href="/api/method/raven.api.raven_channel.get_all_channels?hide_archived=false" as="fetch" crossorigin="use-credentials">
`

// PageContext 页面渲染上下文
type PageContext struct {
	BuildVersion   string        `json:"build_version"`
	Boot           template.JS   `json:"boot"`
	CSRFToken      string        `json:"csrf_token"`
	AppName        string        `json:"app_name"`
	Icon96         string        `json:"icon_96"`
	AppleTouchIcon string        `json:"apple_touch_icon"`
	MaskIcon       string        `json:"mask_icon"`
	FaviconSVG     string        `json:"favicon_svg"`
	FaviconICO     string        `json:"favicon_ico"`
	SiteName       string        `json:"sitename"`
	PreloadLinks   template.HTML `json:"preload_links"`
}

// CSRFIssuer 按会话签发 CSRF 令牌
type CSRFIssuer interface {
	Token(ctx context.Context, sessionID string) (string, error)
}

// Builder 组装页面上下文
type Builder struct {
	source BootSource
	csrf   CSRFIssuer
	cfg    Config
}

// NewBuilder 创建页面上下文构建器
func NewBuilder(source BootSource, csrf CSRFIssuer, cfg Config) *Builder {
	if cfg.Icons == (Icons{}) {
		cfg.Icons = DefaultIcons()
	}
	return &Builder{source: source, csrf: csrf, cfg: cfg}
}

// Context 组装页面上下文：CSRF 令牌、编码后的启动数据和站点品牌信息
func (b *Builder) Context(ctx context.Context, user *session.User) (*PageContext, error) {
	csrfToken, err := b.csrf.Token(ctx, user.SessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrServiceUnavail, "failed to issue CSRF token")
	}

	boot, err := b.boot(ctx, user)
	if err != nil {
		return nil, err
	}
	boot["server_script_enabled"] = b.serverScriptEnabled()

	encoded, err := EncodeBoot(boot)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSessionBootFailed)
	}

	page := &PageContext{
		BuildVersion:   b.cfg.BuildVersion,
		Boot:           template.JS(encoded),
		CSRFToken:      csrfToken,
		AppName:        b.cfg.AppName,
		Icon96:         b.cfg.Icons.Icon96,
		AppleTouchIcon: b.cfg.Icons.AppleTouchIcon,
		MaskIcon:       b.cfg.Icons.MaskIcon,
		FaviconSVG:     b.cfg.Icons.FaviconSVG,
		FaviconICO:     b.cfg.Icons.FaviconICO,
	}
	if sitename, ok := boot["sitename"].(string); ok {
		page.SiteName = sitename
	}
	if !user.IsGuest() {
		page.PreloadLinks = template.HTML(preloadLinks)
	}
	return page, nil
}

// BootForDev 开发模式下直接返回启动数据，供前端本地调试使用
func (b *Builder) BootForDev(ctx context.Context, user *session.User) (json.RawMessage, error) {
	if !b.cfg.DeveloperMode {
		return nil, apperrors.New(apperrors.ErrSessionDevModeOnly)
	}

	boot, err := b.boot(ctx, user)
	if err != nil {
		return nil, err
	}

	encoded, err := EncodeBoot(boot)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSessionBootFailed)
	}
	raw, err := DecodeBoot(encoded)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSessionBootFailed)
	}
	return raw, nil
}

func (b *Builder) boot(ctx context.Context, user *session.User) (map[string]any, error) {
	boot, err := b.source.Boot(ctx, user)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSessionBootFailed)
	}

	var relay any
	if b.cfg.PushRelayServerURL != "" {
		relay = b.cfg.PushRelayServerURL
	}
	boot["push_relay_server_url"] = relay
	return boot, nil
}

func (b *Builder) serverScriptEnabled() bool {
	if b.cfg.ServerScriptEnabled == nil {
		return true
	}
	return *b.cfg.ServerScriptEnabled
}
