// Package store Redis快照存储实现。
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore 基于Redis的快照存储。
// 快照不设置过期时间：购物车是跨会话的持久状态。
type RedisStore struct {
	client redis.Cmdable // 使用接口，支持单实例和集群
	closer func() error
}

// NewRedisStore 创建Redis存储实例并验证连通性
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		// 连接池配置
		PoolSize:     10,
		MinIdleConns: 5,
		MaxIdleConns: 10,

		// 超时配置
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		// 重试配置
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, closer: client.Close}, nil
}

// Load 读取快照；键不存在、读取失败或JSON损坏都按未命中处理
func (r *RedisStore) Load(ctx context.Context, key string, dest any) bool {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		// redis.Nil 表示键不存在，其他错误同样只能按未命中降级
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false
	}
	return true
}

// Save 写入快照
func (r *RedisStore) Save(ctx context.Context, key string, value any) SaveResult {
	raw, err := json.Marshal(value)
	if err != nil {
		return failed(fmt.Errorf("marshal snapshot: %w", err))
	}
	if err := r.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return failed(fmt.Errorf("set %s: %w", key, err))
	}
	return saved()
}

// Delete 删除快照
func (r *RedisStore) Delete(ctx context.Context, key string) SaveResult {
	if err := r.client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return failed(fmt.Errorf("del %s: %w", key, err))
	}
	return saved()
}

// Client 暴露底层Redis客户端，供其他需要Redis的组件（如限流器）复用连接
func (r *RedisStore) Client() redis.Cmdable {
	return r.client
}

// Close 关闭Redis连接
func (r *RedisStore) Close() error {
	if r.closer != nil {
		return r.closer()
	}
	return nil
}
