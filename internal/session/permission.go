package session

import (
	"slices"
	"strings"

	apperrors "github.com/lk2023060901/raven-ai/internal/pkg/errors"
)

// 受控资源
const (
	ResourceRavenBot      = "Raven Bot"
	ResourceRavenSettings = "Raven Settings"
)

// 操作
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

// Rules 角色 -> 资源 -> 允许的操作
type Rules map[string]map[string][]string

// DefaultRules 默认权限规则
func DefaultRules() Rules {
	return Rules{
		"System Manager": {
			ResourceRavenSettings: {ActionRead, ActionWrite},
			ResourceRavenBot:      {ActionRead, ActionWrite},
		},
		"Raven Admin": {
			ResourceRavenSettings: {ActionRead},
			ResourceRavenBot:      {ActionRead, ActionWrite},
		},
		"Raven User": {
			ResourceRavenBot: {ActionRead},
		},
	}
}

// Checker 基于角色的权限检查
type Checker struct {
	rules Rules
}

// NewChecker 创建权限检查器，rules 为空时使用默认规则
// 角色和资源名不区分大小写（viper 会把配置中的键转为小写）
func NewChecker(rules Rules) *Checker {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	normalized := make(Rules, len(rules))
	for role, resources := range rules {
		r := make(map[string][]string, len(resources))
		for resource, actions := range resources {
			r[strings.ToLower(resource)] = actions
		}
		normalized[strings.ToLower(role)] = r
	}
	return &Checker{rules: normalized}
}

// Allowed 判断用户是否可以对资源执行操作
func (c *Checker) Allowed(user *User, resource, action string) bool {
	if user.IsGuest() {
		return false
	}
	if user.IsAdministrator() {
		return true
	}
	resource = strings.ToLower(resource)
	for role, resources := range c.rules {
		if user.HasRole(role) && slices.Contains(resources[resource], action) {
			return true
		}
	}
	return false
}

// Require 无权限时返回 ErrPermissionDenied
func (c *Checker) Require(user *User, resource, action string) error {
	if !c.Allowed(user, resource, action) {
		return apperrors.NewPermissionDeniedError(resource, action)
	}
	return nil
}
