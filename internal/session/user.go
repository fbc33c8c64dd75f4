package session

import (
	"slices"
	"strings"
)

const (
	// GuestUser 未登录用户
	GuestUser = "Guest"
	// AdministratorUser 超级管理员，跳过所有权限检查
	AdministratorUser = "Administrator"
)

// User 当前请求的会话用户
type User struct {
	ID        string   `json:"name"`
	FullName  string   `json:"full_name"`
	FirstName string   `json:"first_name,omitempty"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles"`

	// SessionID 会话 ID（JWT jti 或访客 cookie）
	SessionID string `json:"-"`
	// ViaCookie 凭证来自 cookie，写请求需要校验 CSRF
	ViaCookie bool `json:"-"`
}

// Guest 创建访客会话
func Guest(sessionID string) *User {
	return &User{
		ID:        GuestUser,
		FullName:  GuestUser,
		Roles:     []string{GuestUser},
		SessionID: sessionID,
		ViaCookie: true,
	}
}

// IsGuest 是否为访客
func (u *User) IsGuest() bool {
	return u == nil || u.ID == "" || u.ID == GuestUser
}

// IsAdministrator 是否为超级管理员
func (u *User) IsAdministrator() bool {
	return u != nil && u.ID == AdministratorUser
}

// HasRole 是否拥有指定角色（不区分大小写）
func (u *User) HasRole(role string) bool {
	return u != nil && slices.ContainsFunc(u.Roles, func(r string) bool {
		return strings.EqualFold(r, role)
	})
}
