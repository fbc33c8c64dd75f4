package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Nil 键不存在
const Nil = redis.Nil

// Client Redis 客户端封装
type Client struct {
	redis.UniversalClient
	prefix string
	logger *logger.Logger
}

// New 创建 Redis 客户端并做一次健康检查
func New(cfg *Config, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info("redis client initialized successfully", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))

	return NewFromClient(rdb, cfg.KeyPrefix, log), nil
}

// NewFromClient 包装已有的 go-redis 客户端（测试中配合 miniredis 使用）
func NewFromClient(rdb redis.UniversalClient, prefix string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.L()
	}
	return &Client{UniversalClient: rdb, prefix: prefix, logger: log}
}

// Key 拼接带前缀的键名
func (c *Client) Key(parts ...string) string {
	key := c.prefix
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}

// HealthCheck 检查 Redis 连接
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.UniversalClient.Ping(ctx).Err()
}

// Close 关闭客户端
func (c *Client) Close() error {
	c.logger.Info("closing redis client")
	return c.UniversalClient.Close()
}
