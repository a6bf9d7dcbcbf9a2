// Package repo 用户数据的内存仓储实现。
package repo

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/marcdejesus/graph-market/internal/domain"
)

// 仓储层错误定义
var (
	ErrDuplicateEmail = errors.New("email already exists")
	ErrDuplicateOrder = errors.New("order already exists")
	ErrNotFound       = errors.New("record not found")
)

// UserRepository 定义用户数据访问接口。
// 使用接口可以方便单元测试时进行模拟（mock）。
type UserRepository interface {
	Create(user *domain.User) error
	GetByID(id int64) (*domain.User, error)
	GetByEmail(email string) (*domain.User, error)
	Update(user *domain.User) error
}

// userRepo 是 UserRepository 的内存实现
type userRepo struct {
	mu      sync.RWMutex
	byID    map[int64]*domain.User
	byEmail map[string]*domain.User
	nextID  int64
}

// NewUserRepository 创建用户仓储实例
func NewUserRepository() UserRepository {
	return &userRepo{
		byID:    make(map[int64]*domain.User),
		byEmail: make(map[string]*domain.User),
		nextID:  1,
	}
}

// Create 创建新用户并分配ID。
// 密码哈希在服务层处理，仓储只负责存取。
func (r *userRepo) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return ErrDuplicateEmail
	}

	user.ID = r.nextID
	r.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	cp := *user
	r.byID[user.ID] = &cp
	r.byEmail[email] = &cp
	return nil
}

// GetByID 按ID查找用户，未找到时返回 (nil, nil)
func (r *userRepo) GetByID(id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// GetByEmail 按邮箱查找用户（大小写不敏感），未找到时返回 (nil, nil)
func (r *userRepo) GetByEmail(email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// Update 更新已存在的用户
func (r *userRepo) Update(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[user.ID]
	if !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	user.CreatedAt = existing.CreatedAt

	cp := *user
	r.byID[user.ID] = &cp
	r.byEmail[strings.ToLower(user.Email)] = &cp
	return nil
}
