// Package service 提供业务逻辑层实现。
// 服务层负责协调领域对象和仓储，实现具体的业务用例。
package service

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/marcdejesus/graph-market/internal/domain"
	"github.com/marcdejesus/graph-market/internal/repo"
)

// 定义业务错误
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
)

// UserService 定义用户服务接口
type UserService interface {
	Register(req *domain.RegisterRequest) (*domain.User, error)
	Login(req *domain.LoginRequest) (*domain.User, error)
	GetUserByID(id int64) (*domain.User, error)
}

// userService 是 UserService 接口的实现
type userService struct {
	userRepo repo.UserRepository
	logger   *zap.Logger
}

// NewUserService 创建用户服务实例
func NewUserService(userRepo repo.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register 用户注册。
// 业务规则：邮箱不能重复；密码进行bcrypt哈希；新用户默认为普通顾客。
func (s *userService) Register(req *domain.RegisterRequest) (*domain.User, error) {
	existing, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		s.logger.Error("failed to check email", zap.Error(err))
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	// bcrypt自动加盐且时间恒定比较，适合存储登录口令
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        strings.TrimSpace(strings.ToLower(req.Email)),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(passwordHash),
		Role:         domain.UserRoleUser,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
	)
	return user, nil
}

// Login 用户登录。
// 业务规则：按邮箱查找；验证密码；检查用户是否处于活跃状态。
func (s *userService) Login(req *domain.LoginRequest) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		s.logger.Error("failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		// 统一返回凭证错误，不暴露账号是否存在
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return user, nil
}

// GetUserByID 按ID获取用户
func (s *userService) GetUserByID(id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
