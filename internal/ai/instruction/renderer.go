package instruction

import (
	"bytes"
	"fmt"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// 指令是纯文本提示词，变量原样输出
func init() {
	pongo2.SetAutoescape(false)
}

// 模板中禁止访问文件系统的标签
var bannedTags = []string{"include", "import", "extends", "ssi"}

// Subject 渲染指令的用户
type Subject struct {
	UserID    string
	FirstName string
	FullName  string
	Email     string
}

// Site 站点信息
type Site struct {
	SiteName string
	AppName  string
}

// Variables 构造指令模板可用的变量
func Variables(user Subject, site Site, now time.Time) pongo2.Context {
	firstName := user.FirstName
	if firstName == "" {
		firstName = user.FullName
	}
	return pongo2.Context{
		"user_id":    user.UserID,
		"first_name": firstName,
		"full_name":  user.FullName,
		"email":      user.Email,
		"time":       now.Format("15:04:05"),
		"date":       now.Format("2006-01-02"),
		"day":        now.Format("Monday"),
		"timestamp":  now.Format(time.RFC3339),
		"sitename":   site.SiteName,
		"app_name":   site.AppName,
	}
}

// Renderer 指令模板渲染器（Jinja 语法）
type Renderer struct {
	set      *pongo2.TemplateSet
	markdown goldmark.Markdown
}

// NewRenderer 创建渲染器
func NewRenderer() (*Renderer, error) {
	set := pongo2.NewSet("instructions", pongo2.MustNewLocalFileSystemLoader(""))
	for _, tag := range bannedTags {
		if err := set.BanTag(tag); err != nil {
			return nil, fmt.Errorf("failed to ban tag %q: %w", tag, err)
		}
	}

	return &Renderer{
		set:      set,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

// Render 渲染指令模板
func (r *Renderer) Render(instruction string, vars pongo2.Context) (string, error) {
	tpl, err := r.set.FromString(instruction)
	if err != nil {
		return "", fmt.Errorf("invalid instruction template: %w", err)
	}

	out, err := tpl.Execute(vars)
	if err != nil {
		return "", fmt.Errorf("failed to render instruction: %w", err)
	}
	return out, nil
}

// ToHTML 将渲染后的指令按 Markdown 转为 HTML（原始 HTML 会被忽略）
func (r *Renderer) ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}
