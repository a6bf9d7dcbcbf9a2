package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/domain"
	"github.com/marcdejesus/graph-market/internal/middleware"
	"github.com/marcdejesus/graph-market/internal/resp"
	"github.com/marcdejesus/graph-market/internal/service"
)

// UserHandler 用户相关的HTTP处理器
type UserHandler struct {
	userService service.UserService
	jwtService  service.JWTService
	logger      *zap.Logger
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userService service.UserService, jwtService service.JWTService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// Register 处理用户注册请求
// POST /api/v1/auth/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	// 基本验证
	if err := h.validateRegisterRequest(&req); err != nil {
		h.logger.Warn("validation failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, err.Error(), reqID, "")
		return
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			resp.Error(w, http.StatusConflict, resp.CodeInvalidParam, "email already registered", reqID, "")
			return
		}

		h.logger.Error("register failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "register failed", reqID, "")
		return
	}

	resp.OK(w, user, reqID, "")
}

// Login 处理用户登录请求
// POST /api/v1/auth/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	if req.Email == "" || req.Password == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "email and password are required", reqID, "")
		return
	}

	user, err := h.userService.Login(&req)
	if err != nil {
		// 凭证错误统一返回401，不区分账号不存在与密码错误
		if errors.Is(err, service.ErrInvalidCredentials) {
			resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "invalid email or password", reqID, "")
			return
		}
		if errors.Is(err, service.ErrUserInactive) {
			resp.Error(w, http.StatusForbidden, resp.CodeForbidden, "user is inactive", reqID, "")
			return
		}

		h.logger.Error("login failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "login failed", reqID, "")
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(user)
	if err != nil {
		h.logger.Error("failed to generate tokens", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "token generation failed", reqID, "")
		return
	}

	loginResp := &domain.LoginResponse{
		User:         user,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
	}
	resp.OK(w, loginResp, reqID, "")
}

// GetProfile 获取当前用户信息
// GET /api/v1/users/profile
// 需要认证：使用AuthMiddleware保护
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.logger.Error("user not found in context", zap.String("request_id", reqID))
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
		return
	}

	// 令牌里的信息可能过时，取仓储中的最新数据
	fullUser, err := h.userService.GetUserByID(user.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "user not found", reqID, "")
			return
		}

		h.logger.Error("get profile failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get profile failed", reqID, "")
		return
	}

	resp.OK(w, fullUser, reqID, "")
}

// RefreshToken 刷新访问令牌
// POST /api/v1/auth/refresh
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req domain.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	tokenPair, err := h.jwtService.RefreshTokenPair(req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrTokenExpired) {
			resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "refresh token expired", reqID, "")
			return
		}
		if errors.Is(err, service.ErrInvalidToken) {
			resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "invalid refresh token", reqID, "")
			return
		}

		h.logger.Error("refresh token failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "refresh token failed", reqID, "")
		return
	}

	resp.OK(w, tokenPair, reqID, "")
}

// validateRegisterRequest 验证注册请求
func (h *UserHandler) validateRegisterRequest(req *domain.RegisterRequest) error {
	if req.Email == "" || !isValidEmail(req.Email) {
		return errors.New("invalid email format")
	}
	if len(req.Password) < 6 || len(req.Password) > 72 {
		return errors.New("password must be between 6 and 72 characters")
	}
	if req.FirstName == "" || req.LastName == "" {
		return errors.New("first name and last name are required")
	}
	return nil
}

// isValidEmail 简单的邮箱格式验证
func isValidEmail(email string) bool {
	if len(email) == 0 || len(email) > 254 {
		return false
	}
	at := -1
	for i, c := range email {
		if c == '@' {
			if at >= 0 {
				return false
			}
			at = i
		}
	}
	return at > 0 && at < len(email)-1
}
