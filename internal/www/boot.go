package www

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/lk2023060901/raven-ai/internal/session"
)

var (
	scriptTagPattern        = regexp.MustCompile(`<script[^<]*</script>`)
	closingScriptTagPattern = regexp.MustCompile(`</script>`)
)

// BootSource 组装会话启动数据
type BootSource interface {
	Boot(ctx context.Context, user *session.User) (map[string]any, error)
}

// SiteBootSource 基于站点配置和会话用户生成启动数据
type SiteBootSource struct {
	cfg Config
}

// NewSiteBootSource 创建启动数据源
func NewSiteBootSource(cfg Config) *SiteBootSource {
	return &SiteBootSource{cfg: cfg}
}

// Boot 访客返回站点级数据，登录用户返回完整会话数据
func (s *SiteBootSource) Boot(_ context.Context, user *session.User) (map[string]any, error) {
	if user.IsGuest() {
		return map[string]any{
			"sitename": s.cfg.SiteName,
			"lang":     s.cfg.Lang,
			"user":     map[string]any{"name": session.GuestUser},
		}, nil
	}

	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	return map[string]any{
		"sitename":  s.cfg.SiteName,
		"lang":      s.cfg.Lang,
		"full_name": user.FullName,
		"user": map[string]any{
			"name":       user.ID,
			"full_name":  user.FullName,
			"first_name": user.FirstName,
			"email":      user.Email,
			"roles":      roles,
		},
		"sysdefaults": map[string]any{
			"app_name":    s.cfg.AppName,
			"date_format": "dd-mm-yyyy",
			"time_format": "HH:mm:ss",
		},
	}, nil
}

// EncodeBoot 紧凑序列化启动数据，去除 script 标签后再编码为 JSON 字符串，
// 结果可以直接作为 JS 字符串字面量嵌入页面
func EncodeBoot(boot map[string]any) (string, error) {
	bootJSON, err := compactJSON(boot)
	if err != nil {
		return "", err
	}

	bootJSON = scriptTagPattern.ReplaceAllString(bootJSON, "")
	bootJSON = closingScriptTagPattern.ReplaceAllString(bootJSON, "")

	encoded, err := json.Marshal(bootJSON)
	if err != nil {
		return "", fmt.Errorf("failed to encode boot: %w", err)
	}
	return string(encoded), nil
}

// DecodeBoot EncodeBoot 的逆操作，返回去除 script 标签后的启动数据 JSON
func DecodeBoot(encoded string) (json.RawMessage, error) {
	var bootJSON string
	if err := json.Unmarshal([]byte(encoded), &bootJSON); err != nil {
		return nil, fmt.Errorf("failed to decode boot: %w", err)
	}
	if !json.Valid([]byte(bootJSON)) {
		return nil, fmt.Errorf("boot is not valid JSON after sanitizing")
	}
	return json.RawMessage(bootJSON), nil
}

// compactJSON 不做 HTML 转义，保证 script 标签能被匹配并去除
func compactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal boot: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
