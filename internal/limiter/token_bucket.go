// Package limiter 令牌桶限流器的Redis实现。
package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenBucket 基于Redis的令牌桶限流器。
// 桶状态和补充计算在Lua脚本内原子完成，多实例部署时共享配额。
type RedisTokenBucket struct {
	client    redis.Cmdable
	config    *Config
	keyPrefix string
}

// NewRedisTokenBucket 创建Redis令牌桶限流器
func NewRedisTokenBucket(client redis.Cmdable, config *Config) (*RedisTokenBucket, error) {
	if config == nil {
		return nil, fmt.Errorf("limiter config is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "limiter:tb"
	}

	return &RedisTokenBucket{
		client:    client,
		config:    config,
		keyPrefix: config.KeyPrefix,
	}, nil
}

// Redis Lua脚本：令牌桶算法
const tokenBucketScript = `
-- KEYS[1]: 令牌桶key
-- ARGV[1]: 容量(burst)
-- ARGV[2]: 补充速率(rate)
-- ARGV[3]: 时间窗口(window秒)
-- ARGV[4]: 请求令牌数
-- ARGV[5]: 当前时间戳

local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local window = tonumber(ARGV[3])
local tokens_requested = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

-- 获取当前桶状态
local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1]) or capacity
local last_refill = tonumber(bucket[2]) or now

-- 计算需要补充的令牌数
local time_passed = math.max(0, now - last_refill)
local tokens_to_add = math.floor(time_passed * rate / window)
tokens = math.min(capacity, tokens + tokens_to_add)
last_refill = now

if tokens >= tokens_requested then
    tokens = tokens - tokens_requested
    redis.call('HMSET', key, 'tokens', tokens, 'last_refill', last_refill)
    redis.call('EXPIRE', key, window * 2)
    return {1, tokens, 0}
else
    local tokens_needed = tokens_requested - tokens
    local retry_after = math.ceil(tokens_needed * window / rate)
    redis.call('HMSET', key, 'tokens', tokens, 'last_refill', last_refill)
    redis.call('EXPIRE', key, window * 2)
    return {0, tokens, retry_after}
end
`

// getKey 生成Redis key
func (tb *RedisTokenBucket) getKey(key string) string {
	return fmt.Sprintf("%s:%s", tb.keyPrefix, key)
}

// Allow 检查是否允许请求通过
func (tb *RedisTokenBucket) Allow(ctx context.Context, key string) (*LimitResult, error) {
	return tb.AllowN(ctx, key, 1)
}

// AllowN 检查是否允许N个请求通过
func (tb *RedisTokenBucket) AllowN(ctx context.Context, key string, n int64) (*LimitResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("token count must be positive: %d", n)
	}

	result := tb.client.Eval(ctx, tokenBucketScript,
		[]string{tb.getKey(key)},
		tb.config.Burst,                   // 容量
		tb.config.Rate,                    // 速率
		int64(tb.config.Window.Seconds()), // 时间窗口
		n,                                 // 请求令牌数
		time.Now().Unix(),                 // 当前时间
	)
	if result.Err() != nil {
		return nil, fmt.Errorf("failed to execute token bucket script: %w", result.Err())
	}

	values, ok := result.Val().([]interface{})
	if !ok || len(values) != 3 {
		return nil, fmt.Errorf("unexpected script result format")
	}

	return &LimitResult{
		Allowed:    values[0].(int64) == 1,
		Remaining:  values[1].(int64),
		RetryAfter: time.Duration(values[2].(int64)) * time.Second,
	}, nil
}

// Reset 重置令牌桶
func (tb *RedisTokenBucket) Reset(ctx context.Context, key string) error {
	if err := tb.client.Del(ctx, tb.getKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset token bucket: %w", err)
	}
	return nil
}
