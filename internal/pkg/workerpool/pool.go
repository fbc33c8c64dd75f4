package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var (
	ErrPoolClosed = errors.New("worker pool is closed")
)

// Config Worker Pool 配置
type Config struct {
	Workers        int           // 最大并发 worker 数
	ExpiryDuration time.Duration // 空闲 worker 回收时间
	Nonblocking    bool          // 池满时直接返回错误而不是等待
}

// DefaultConfig 默认配置；探测请求都是 I/O 等待，并发数不需要太大
func DefaultConfig() *Config {
	return &Config{
		Workers:        8,
		ExpiryDuration: time.Minute,
		Nonblocking:    false,
	}
}

// Pool 基于 ants 的有界并发池
type Pool struct {
	pool   *ants.Pool
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// New 创建 Worker Pool
func New(config *Config, logger *zap.Logger) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", config.Workers)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []ants.Option{
		ants.WithNonblocking(config.Nonblocking),
		ants.WithPanicHandler(func(err interface{}) {
			logger.Error("worker panic", zap.Any("error", err))
		}),
	}
	if config.ExpiryDuration > 0 {
		opts = append(opts, ants.WithExpiryDuration(config.ExpiryDuration))
	}

	antsPool, err := ants.NewPool(config.Workers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	return &Pool{pool: antsPool, logger: logger}, nil
}

// Submit 提交任务
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	if err := p.pool.Submit(task); err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolClosed
		}
		return err
	}
	return nil
}

// Group 提交一组任务并等待全部完成；提交失败的任务直接返回错误，不会执行
func (p *Pool) Group(ctx context.Context, tasks ...func(context.Context)) error {
	var (
		wg       sync.WaitGroup
		firstErr error
	)
	for _, task := range tasks {
		task := task
		wg.Add(1)
		if err := p.Submit(func() {
			defer wg.Done()
			task(ctx)
		}); err != nil {
			wg.Done()
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	wg.Wait()
	return firstErr
}

// Shutdown 关闭池并等待已提交任务完成
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	if err := p.pool.ReleaseTimeout(10 * time.Second); err != nil {
		p.logger.Warn("worker pool release timed out", zap.Error(err))
	}
}
