// Package cart 购物车会话：把纯归约提升为进程内的共享受控状态。
package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/domain"
	"github.com/marcdejesus/graph-market/internal/store"
)

// keyPrefix 快照在存储中的键前缀
const keyPrefix = "cart:"

// Session 拥有一个CartState，是该状态在会话生命周期内的唯一属主。
// 所有变更都通过方法进行并持锁串行：两次并发变更不可能读取同一
// 先前状态后同时提交。每次成功变更后同步触发一次尽力而为的快照
// 写入，写入结果只用于日志，内存状态始终是权威。
type Session struct {
	mu     sync.Mutex
	key    string
	state  domain.CartState
	store  store.Store
	logger *zap.Logger
}

// newSession 创建会话并尝试从存储恢复快照。
// 快照未通过不变量校验（如负数量）时整体丢弃，从空状态开始，
// 避免损坏的总计在会话内传播。
func newSession(ctx context.Context, key string, st store.Store, logger *zap.Logger) *Session {
	s := &Session{
		key:    key,
		state:  domain.EmptyCart(),
		store:  st,
		logger: logger,
	}

	var snap domain.CartState
	if st.Load(ctx, keyPrefix+key, &snap) {
		if err := snap.Validate(); err != nil {
			logger.Warn("discarding invalid cart snapshot",
				zap.String("cart_key", key), zap.Error(err))
		} else {
			s.state = snap
		}
	}
	return s
}

// persist 尽力而为地写入当前状态的完整快照，调用方持有s.mu
func (s *Session) persist(ctx context.Context) {
	res := s.store.Save(ctx, keyPrefix+s.key, s.state)
	if !res.OK {
		// 持久化失败不影响会话，内存状态继续生效
		s.logger.Debug("cart snapshot save failed",
			zap.String("cart_key", s.key), zap.Error(res.Err))
	}
}

// Snapshot 返回当前状态的深拷贝
func (s *Session) Snapshot() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// AddItem 添加商品并持久化新状态。
// 返回变更后的完整状态；实际数量可能因钳制而小于请求值。
func (s *Session) AddItem(ctx context.Context, item domain.CartItem, quantityToAdd int) domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, _ := FindItem(s.state, item.ProductID, item.Variant)
	s.state = AddItem(s.state, item, quantityToAdd)
	after, _ := FindItem(s.state, item.ProductID, item.Variant)

	// 钳制是静默行为，这里只留一条诊断日志（log-and-clamp）
	if requested := before.Quantity + max(quantityToAdd, 1); after.Quantity < requested {
		s.logger.Debug("cart quantity clamped",
			zap.String("cart_key", s.key),
			zap.String("product_id", item.ProductID),
			zap.Int("requested", requested),
			zap.Int("actual", after.Quantity))
	}

	s.persist(ctx)
	return s.state.Clone()
}

// RemoveItem 删除行项目并持久化新状态
func (s *Session) RemoveItem(ctx context.Context, productID string, variant domain.Variant) domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = RemoveItem(s.state, productID, variant)
	s.persist(ctx)
	return s.state.Clone()
}

// SetQuantity 设置行项目数量并持久化新状态
func (s *Session) SetQuantity(ctx context.Context, productID string, variant domain.Variant, quantity int) domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SetQuantity(s.state, productID, variant, quantity)
	s.persist(ctx)
	return s.state.Clone()
}

// Clear 清空购物车并持久化空状态
func (s *Session) Clear(ctx context.Context) domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Clear(s.state)
	s.persist(ctx)
	return s.state.Clone()
}

// Registry 管理所有活跃的购物车会话，按购物车键索引。
// 同一个键在进程内只会存在一个Session实例。
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	store    store.Store
	logger   *zap.Logger
}

// NewRegistry 创建会话注册表
func NewRegistry(st store.Store, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		store:    st,
		logger:   logger,
	}
}

// Session 返回键对应的会话，首次访问时创建并尝试从快照恢复
func (r *Registry) Session(ctx context.Context, key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[key]; ok {
		return s
	}
	s := newSession(ctx, key, r.store, r.logger)
	r.sessions[key] = s
	return s
}

// Drop 移除会话及其持久化快照（下单成功后调用）
func (r *Registry) Drop(ctx context.Context, key string) {
	r.mu.Lock()
	delete(r.sessions, key)
	r.mu.Unlock()
	r.store.Delete(ctx, keyPrefix+key)
}
