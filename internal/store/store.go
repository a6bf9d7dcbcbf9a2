// Package store 提供购物车快照的持久化适配层。
// 契约：Load 永不失败——键缺失、JSON损坏或后端不可用时返回false，
// 调用方保留自己的默认值；Save 尽力而为——失败只记录在返回的
// SaveResult 中供诊断，调用方永远不被要求检查。内存状态在本会话内
// 始终是权威，持久化只是副作用。
//
// 底层存储是跨进程共享且不加协调的资源：并发写入按“后写者胜”处理。
package store

import (
	"context"
	"encoding/json"
	"sync"
)

// SaveResult 表示一次尽力而为写入的结果。
// 调用方可以检查它用于诊断日志，但不需要据此改变行为。
type SaveResult struct {
	OK  bool
	Err error
}

// saved 构造成功结果
func saved() SaveResult { return SaveResult{OK: true} }

// failed 构造失败结果
func failed(err error) SaveResult { return SaveResult{OK: false, Err: err} }

// Store 定义快照存取接口
type Store interface {
	// Load 将key对应的快照反序列化到dest。
	// 返回false时调用方必须忽略dest、使用自己的默认值。
	Load(ctx context.Context, key string, dest any) bool

	// Save 序列化value并写入key，永不panic、永不向上抛错。
	Save(ctx context.Context, key string, value any) SaveResult

	// Delete 删除key对应的快照，尽力而为。
	Delete(ctx context.Context, key string) SaveResult

	// Close 释放底层资源
	Close() error
}

// MemoryStore 进程内存储实现，用于开发和测试
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore 创建内存存储实例
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load 读取快照
func (m *MemoryStore) Load(_ context.Context, key string, dest any) bool {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

// Save 写入快照
func (m *MemoryStore) Save(_ context.Context, key string, value any) SaveResult {
	raw, err := json.Marshal(value)
	if err != nil {
		return failed(err)
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return saved()
}

// Delete 删除快照
func (m *MemoryStore) Delete(_ context.Context, key string) SaveResult {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return saved()
}

// Close 清空数据
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.data = make(map[string][]byte)
	m.mu.Unlock()
	return nil
}

// NullStore 空实现，持久化被禁用时使用。
// Load 永远未命中，Save/Delete 永远“成功”。
type NullStore struct{}

// NewNullStore 创建空存储实例
func NewNullStore() *NullStore { return &NullStore{} }

func (n *NullStore) Load(_ context.Context, _ string, _ any) bool { return false }

func (n *NullStore) Save(_ context.Context, _ string, _ any) SaveResult { return saved() }

func (n *NullStore) Delete(_ context.Context, _ string) SaveResult { return saved() }

func (n *NullStore) Close() error { return nil }
