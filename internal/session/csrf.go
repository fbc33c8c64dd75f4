package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/raven-ai/internal/pkg/redis"
)

// CSRFStore 按会话保存 CSRF 令牌
type CSRFStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCSRFStore 创建 CSRF 令牌存储，令牌有效期与会话一致
func NewCSRFStore(rdb *redis.Client, ttl time.Duration) *CSRFStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CSRFStore{rdb: rdb, ttl: ttl}
}

// Token 获取会话的 CSRF 令牌，不存在时创建；同一会话内重复调用返回相同值
func (s *CSRFStore) Token(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}

	candidate, err := newToken()
	if err != nil {
		return "", err
	}

	key := s.key(sessionID)
	if err := s.rdb.SetNX(ctx, key, candidate, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store csrf token: %w", err)
	}

	token, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to load csrf token: %w", err)
	}
	return token, nil
}

// Validate 校验请求携带的 CSRF 令牌
func (s *CSRFStore) Validate(ctx context.Context, sessionID, token string) (bool, error) {
	if sessionID == "" || token == "" {
		return false, nil
	}

	expected, err := s.rdb.Get(ctx, s.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load csrf token: %w", err)
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1, nil
}

func (s *CSRFStore) key(sessionID string) string {
	return s.rdb.Key("csrf", sessionID)
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
