// Package domain 用户领域模型。
package domain

import (
	"strconv"
	"time"
)

// UserRole 定义用户角色类型
type UserRole string

const (
	UserRoleUser  UserRole = "user"  // 普通顾客
	UserRoleAdmin UserRole = "admin" // 管理员
)

// User 表示店面的注册顾客
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"` // JSON序列化时忽略密码哈希
	Role         UserRole  `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin 判断用户是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// CartKey 返回该用户购物车的存储键后缀。
// 匿名会话使用 X-Cart-Session 头携带的随机键，注册用户绑定到用户ID。
func (u *User) CartKey() string {
	return "user:" + strconv.FormatInt(u.ID, 10)
}

// RegisterRequest 表示用户注册请求
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=64"`
	LastName  string `json:"last_name" validate:"required,max=64"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest 表示用户登录请求
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse 表示登录成功的响应
type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRequest 表示刷新令牌请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
