package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL 会话默认有效期
const DefaultTTL = 24 * time.Hour

// Claims 会话 JWT 声明
type Claims struct {
	UserID    string   `json:"user_id"`
	FullName  string   `json:"full_name"`
	FirstName string   `json:"first_name,omitempty"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

// User 将声明转换为会话用户
func (c *Claims) User() *User {
	return &User{
		ID:        c.UserID,
		FullName:  c.FullName,
		FirstName: c.FirstName,
		Email:     c.Email,
		Roles:     c.Roles,
		SessionID: c.ID,
	}
}

// Manager 会话令牌管理器（HS256）
type Manager struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

// NewManager 创建会话令牌管理器
func NewManager(secretKey, issuer string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		ttl:       ttl,
	}
}

// TTL 会话有效期
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue 为用户签发会话令牌，每次签发生成新的会话 ID
func (m *Manager) Issue(user *User) (string, error) {
	if user.IsGuest() {
		return "", fmt.Errorf("cannot issue a session for guest")
	}

	now := time.Now()
	claims := &Claims{
		UserID:    user.ID,
		FullName:  user.FullName,
		FirstName: user.FirstName,
		Email:     user.Email,
		Roles:     user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify 校验会话令牌
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UserID == "" || claims.ID == "" {
		return nil, fmt.Errorf("token is missing user or session id")
	}
	return claims, nil
}
