// Package store 基于本地文件的快照存储实现。
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// FileStore 将每个key的快照保存为目录下的一个JSON文件。
// 写入先落临时文件再原子重命名，避免读到半写状态。
type FileStore struct {
	dir string
}

// NewFileStore 创建文件存储实例，目录不存在时自动创建
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// path 将key规范化为文件名，冒号等分隔符替换为下划线
func (f *FileStore) path(key string) string {
	name := strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(key)
	return filepath.Join(f.dir, name+".json")
}

// Load 读取快照文件
func (f *FileStore) Load(_ context.Context, key string, dest any) bool {
	raw, err := os.ReadFile(f.path(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

// Save 写入快照文件
func (f *FileStore) Save(_ context.Context, key string, value any) SaveResult {
	raw, err := json.Marshal(value)
	if err != nil {
		return failed(err)
	}
	dst := f.path(key)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return failed(err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return failed(err)
	}
	return saved()
}

// Delete 删除快照文件，文件不存在视为成功
func (f *FileStore) Delete(_ context.Context, key string) SaveResult {
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return failed(err)
	}
	return saved()
}

// Close 无需释放资源
func (f *FileStore) Close() error { return nil }
