// Package service 提供JWT令牌的生成、验证和刷新功能。
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/config"
	"github.com/marcdejesus/graph-market/internal/domain"
)

// JWT相关错误定义
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenNotReady = errors.New("token used before valid")
)

// Claims 定义JWT载荷结构，
// 继承jwt.RegisteredClaims以获得标准声明字段
type Claims struct {
	UserID int64           `json:"user_id"`
	Email  string          `json:"email"`
	Role   domain.UserRole `json:"role"`
	Type   string          `json:"type"` // "access" 或 "refresh"
	jwt.RegisteredClaims
}

// TokenPair 表示访问令牌和刷新令牌对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// JWTService 定义JWT服务接口
type JWTService interface {
	GenerateTokenPair(user *domain.User) (*TokenPair, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
	RefreshTokenPair(refreshToken string) (*TokenPair, error)
}

// jwtService 是JWTService接口的实现
type jwtService struct {
	config *config.Config
	logger *zap.Logger
}

// NewJWTService 创建JWT服务实例
func NewJWTService(cfg *config.Config, logger *zap.Logger) JWTService {
	return &jwtService{config: cfg, logger: logger}
}

// GenerateTokenPair 为用户生成访问令牌和刷新令牌对。
// 访问令牌短期有效用于API访问；刷新令牌长期有效用于续期。
func (s *jwtService) GenerateTokenPair(user *domain.User) (*TokenPair, error) {
	now := time.Now()

	access, err := s.sign(user, "access", now, s.config.JWT.AccessTokenTTL)
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.sign(user, "refresh", now, s.config.JWT.RefreshTokenTTL)
	if err != nil {
		s.logger.Error("failed to sign refresh token", zap.Error(err))
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// sign 构造并签名单个令牌
func (s *jwtService) sign(user *domain.User, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.App.Name,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWT.Secret))
}

// ValidateAccessToken 验证访问令牌
func (s *jwtService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, "access")
}

// ValidateRefreshToken 验证刷新令牌
func (s *jwtService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, "refresh")
}

// validateToken 验证令牌的通用方法
func (s *jwtService) validateToken(tokenString, expectedType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// 只接受HMAC签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWT.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotReady
		}
		s.logger.Warn("token validation failed", zap.Error(err))
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != expectedType {
		s.logger.Warn("token type mismatch",
			zap.String("expected", expectedType),
			zap.String("actual", claims.Type),
		)
		return nil, ErrInvalidToken
	}
	if claims.Issuer != s.config.App.Name {
		s.logger.Warn("token issuer mismatch",
			zap.String("expected", s.config.App.Name),
			zap.String("actual", claims.Issuer),
		)
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RefreshTokenPair 使用刷新令牌生成新的令牌对，
// 让用户在访问令牌过期后继续使用应用而无需重新登录
func (s *jwtService) RefreshTokenPair(refreshTokenString string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshTokenString)
	if err != nil {
		return nil, fmt.Errorf("validate refresh token: %w", err)
	}

	user := &domain.User{
		ID:       claims.UserID,
		Email:    claims.Email,
		Role:     claims.Role,
		IsActive: true,
	}
	return s.GenerateTokenPair(user)
}
