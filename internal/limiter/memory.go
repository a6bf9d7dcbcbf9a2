// Package limiter 令牌桶限流器的进程内实现。
package limiter

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryTokenBucket 进程内令牌桶限流器。
// 单实例部署或Redis不可用时的替代实现；配额不跨进程共享。
type MemoryTokenBucket struct {
	mu      sync.Mutex
	config  *Config
	buckets map[string]*bucketState

	// now 可注入的时钟，测试时替换
	now func() time.Time
}

type bucketState struct {
	tokens     float64
	lastRefill time.Time
}

// NewMemoryTokenBucket 创建进程内令牌桶限流器
func NewMemoryTokenBucket(config *Config) (*MemoryTokenBucket, error) {
	if config == nil {
		return nil, fmt.Errorf("limiter config is required")
	}
	return &MemoryTokenBucket{
		config:  config,
		buckets: make(map[string]*bucketState),
		now:     time.Now,
	}, nil
}

// Allow 检查是否允许请求通过
func (m *MemoryTokenBucket) Allow(ctx context.Context, key string) (*LimitResult, error) {
	return m.AllowN(ctx, key, 1)
}

// AllowN 检查是否允许N个请求通过
func (m *MemoryTokenBucket) AllowN(_ context.Context, key string, n int64) (*LimitResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("token count must be positive: %d", n)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok {
		b = &bucketState{tokens: float64(m.config.Burst), lastRefill: now}
		m.buckets[key] = b
	}

	// 按流逝时间补充令牌，上限为突发容量
	elapsed := now.Sub(b.lastRefill).Seconds()
	refill := elapsed * float64(m.config.Rate) / m.config.Window.Seconds()
	b.tokens = min(float64(m.config.Burst), b.tokens+refill)
	b.lastRefill = now

	if b.tokens >= float64(n) {
		b.tokens -= float64(n)
		return &LimitResult{Allowed: true, Remaining: int64(b.tokens)}, nil
	}

	needed := float64(n) - b.tokens
	retry := time.Duration(needed * m.config.Window.Seconds() / float64(m.config.Rate) * float64(time.Second))
	return &LimitResult{
		Allowed:    false,
		Remaining:  int64(b.tokens),
		RetryAfter: retry,
	}, nil
}

// Reset 重置限流状态
func (m *MemoryTokenBucket) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.buckets, key)
	m.mu.Unlock()
	return nil
}
