package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/api"
	"github.com/marcdejesus/graph-market/internal/cart"
	"github.com/marcdejesus/graph-market/internal/checkout"
	"github.com/marcdejesus/graph-market/internal/config"
	"github.com/marcdejesus/graph-market/internal/limiter"
	"github.com/marcdejesus/graph-market/internal/logger"
	mw "github.com/marcdejesus/graph-market/internal/middleware"
	"github.com/marcdejesus/graph-market/internal/repo"
	"github.com/marcdejesus/graph-market/internal/resp"
	"github.com/marcdejesus/graph-market/internal/service"
	"github.com/marcdejesus/graph-market/internal/store"
)

// AppDependencies 包含应用的所有依赖
type AppDependencies struct {
	UserHandler     *api.UserHandler
	ProductHandler  *api.ProductHandler
	CartHandler     *api.CartHandler
	CheckoutHandler *api.CheckoutHandler
	OrderHandler    *api.OrderHandler
	JWTService      service.JWTService
	Store           store.Store
}

// initConfigAndLogger 初始化配置和日志器
func initConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %v", err)
	}

	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %v", err)
	}

	return cfg, lg, nil
}

// initStore 初始化购物车快照存储。
// Redis不可用时降级到内存存储：快照丢失只影响恢复，不影响会话。
func initStore(cfg *config.Config, lg *zap.Logger) store.Store {
	switch cfg.Store.Type {
	case "redis":
		redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		rs, err := store.NewRedisStore(redisAddr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			lg.Sugar().Warnw("failed to connect to Redis, falling back to memory store", "error", err)
			return store.NewMemoryStore()
		}
		lg.Sugar().Infow("snapshot store enabled", "type", "redis", "addr", redisAddr)
		return rs
	case "file":
		fs, err := store.NewFileStore(cfg.Store.Dir)
		if err != nil {
			lg.Sugar().Warnw("failed to init file store, falling back to memory store", "error", err)
			return store.NewMemoryStore()
		}
		lg.Sugar().Infow("snapshot store enabled", "type", "file", "dir", cfg.Store.Dir)
		return fs
	case "off":
		lg.Sugar().Infow("snapshot store disabled")
		return store.NewNullStore()
	default:
		lg.Sugar().Infow("snapshot store enabled", "type", "memory")
		return store.NewMemoryStore()
	}
}

// initLimiter 初始化登录接口的限流器。
// 快照存储用Redis时限流配额也走Redis，多实例共享；否则用进程内令牌桶。
func initLimiter(cfg *config.Config, st store.Store, lg *zap.Logger) limiter.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}

	lcfg := &limiter.Config{
		Rate:   cfg.RateLimit.Rate,
		Burst:  cfg.RateLimit.Burst,
		Window: cfg.RateLimit.Window,
	}

	if rs, ok := st.(*store.RedisStore); ok {
		l, err := limiter.NewRedisTokenBucket(rs.Client(), lcfg)
		if err == nil {
			lg.Sugar().Infow("rate limiter enabled", "type", "redis",
				"rate", lcfg.Rate, "burst", lcfg.Burst, "window", lcfg.Window)
			return l
		}
		lg.Sugar().Warnw("failed to init redis limiter, falling back to memory", "error", err)
	}

	l, err := limiter.NewMemoryTokenBucket(lcfg)
	if err != nil {
		lg.Sugar().Warnw("failed to init rate limiter, rate limiting disabled", "error", err)
		return nil
	}
	lg.Sugar().Infow("rate limiter enabled", "type", "memory",
		"rate", lcfg.Rate, "burst", lcfg.Burst, "window", lcfg.Window)
	return l
}

// initDependencies 初始化应用依赖（仓储 -> 服务 -> 处理器）
func initDependencies(cfg *config.Config, st store.Store, lg *zap.Logger) *AppDependencies {
	userRepo := repo.NewUserRepository()
	userService := service.NewUserService(userRepo, lg)
	jwtService := service.NewJWTService(cfg, lg)
	userHandler := api.NewUserHandler(userService, jwtService, lg)

	productRepo := repo.NewProductRepository()
	productService := service.NewProductService(productRepo)
	productHandler := api.NewProductHandler(productService, lg)

	registry := cart.NewRegistry(st, lg)
	cartHandler := api.NewCartHandler(registry, productService, lg)

	orderRepo := repo.NewOrderRepository()
	orderService := service.NewOrderService(orderRepo, lg)
	manager := checkout.NewManager(lg)
	checkoutHandler := api.NewCheckoutHandler(manager, registry, orderService, lg)
	orderHandler := api.NewOrderHandler(orderService, lg)

	return &AppDependencies{
		UserHandler:     userHandler,
		ProductHandler:  productHandler,
		CartHandler:     cartHandler,
		CheckoutHandler: checkoutHandler,
		OrderHandler:    orderHandler,
		JWTService:      jwtService,
		Store:           st,
	}
}

// setupRoutes 设置路由和中间件
func setupRoutes(cfg *config.Config, deps *AppDependencies, rateLimiter limiter.Limiter, lg *zap.Logger) http.Handler {
	// 标准库 ServeMux 即可满足当前需求（后续可替换为 chi/gin）
	mux := http.NewServeMux()

	// 健康检查端点
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		reqID := mw.RequestIDFromContext(r.Context())
		data := map[string]any{
			"status":  "ok",
			"version": cfg.App.Version,
		}
		resp.OK(w, &data, reqID, "")
	})

	// 用户认证相关API路由（无需认证）；登录接口带限流
	mux.HandleFunc("/api/v1/auth/register", deps.UserHandler.Register)
	if rateLimiter != nil {
		mux.Handle("/api/v1/auth/login",
			limiter.Middleware(rateLimiter, lg)(http.HandlerFunc(deps.UserHandler.Login)))
	} else {
		mux.HandleFunc("/api/v1/auth/login", deps.UserHandler.Login)
	}
	mux.HandleFunc("/api/v1/auth/refresh", deps.UserHandler.RefreshToken)

	// 需要认证的API路由
	authMiddleware := mw.AuthMiddleware(deps.JWTService, lg)
	mux.Handle("/api/v1/users/profile", authMiddleware(http.HandlerFunc(deps.UserHandler.GetProfile)))

	// 商品相关API路由（公开访问）
	mux.HandleFunc("/api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			deps.ProductHandler.ListProducts(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/products/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			deps.ProductHandler.GetProduct(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// 购物车/结账/订单路由共享一条会话链：
	// 可选认证（登录用户绑定user:<id>键）-> 购物车会话键注入
	optionalAuth := mw.OptionalAuth(deps.JWTService, lg)
	session := func(h http.Handler) http.Handler {
		return optionalAuth(mw.CartSession(h))
	}

	mux.Handle("/api/v1/cart", session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			deps.CartHandler.GetCart(w, r)
		case http.MethodDelete:
			deps.CartHandler.ClearCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/api/v1/cart/items", session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			deps.CartHandler.AddItem(w, r)
		case http.MethodPut:
			deps.CartHandler.UpdateItem(w, r)
		case http.MethodDelete:
			deps.CartHandler.RemoveItem(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// 结账流程
	mux.Handle("/api/v1/checkout", session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			deps.CheckoutHandler.Begin(w, r)
		case http.MethodGet:
			deps.CheckoutHandler.GetState(w, r)
		case http.MethodDelete:
			deps.CheckoutHandler.Discard(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/api/v1/checkout/steps/complete", session(http.HandlerFunc(deps.CheckoutHandler.CompleteStep)))
	mux.Handle("/api/v1/checkout/next", session(http.HandlerFunc(deps.CheckoutHandler.NextStep)))
	mux.Handle("/api/v1/checkout/goto", session(http.HandlerFunc(deps.CheckoutHandler.GoToStep)))
	mux.Handle("/api/v1/checkout/shipping", session(http.HandlerFunc(deps.CheckoutHandler.SetShipping)))
	mux.Handle("/api/v1/checkout/payment", session(http.HandlerFunc(deps.CheckoutHandler.SetPayment)))
	mux.Handle("/api/v1/checkout/promo", session(http.HandlerFunc(deps.CheckoutHandler.ApplyPromo)))
	mux.Handle("/api/v1/checkout/place",
		session(mw.Idempotency(cfg.IdempotencyKeyHeader)(http.HandlerFunc(deps.CheckoutHandler.PlaceOrder))))

	// 订单查询与操作
	mux.Handle("/api/v1/orders", session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			deps.OrderHandler.ListOrders(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/api/v1/orders/", session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/cancel") && r.Method == http.MethodPost:
			deps.OrderHandler.Cancel(w, r)
		case strings.HasSuffix(r.URL.Path, "/reorder") && r.Method == http.MethodPost:
			deps.OrderHandler.Reorder(w, r)
		case strings.HasSuffix(r.URL.Path, "/pay") && r.Method == http.MethodPost:
			deps.OrderHandler.Pay(w, r)
		case strings.HasSuffix(r.URL.Path, "/tracking") && r.Method == http.MethodGet:
			deps.OrderHandler.Tracking(w, r)
		case r.Method == http.MethodGet:
			deps.OrderHandler.GetOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// 管理员专用API路由（需要管理员权限）
	adminMiddleware := mw.RequireAdmin(lg)
	mux.Handle("/api/v1/admin/orders/", authMiddleware(adminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/status") && r.Method == http.MethodPut:
			deps.OrderHandler.UpdateStatus(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))))

	// 构建中间件链：请求进入时执行顺序为 access log → CORS → timeout → recovery → request ID
	// 响应返回时执行顺序为 request ID → recovery → timeout → CORS → access log
	handler := mw.RequestID(mux)
	handler = mw.Recovery(lg)(handler)
	handler = mw.Timeout(cfg.App.RequestTimeout)(handler)
	handler = mw.CORS(mw.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	})(handler)
	handler = mw.AccessLog(lg)(handler)

	return handler
}

// startServer 启动服务器并处理优雅关闭
func startServer(cfg *config.Config, handler http.Handler, lg *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	lg.Sugar().Infow("server starting", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	// 启动服务器（异步）
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	select {
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			lg.Sugar().Fatalw("server error", "err", err)
		}
	case <-quit:
		lg.Sugar().Infow("shutdown signal received")
	}

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Sugar().Errorw("graceful shutdown failed", "err", err)
	} else {
		lg.Sugar().Infow("server stopped gracefully")
	}
}

func main() {
	cfg, lg, err := initConfigAndLogger()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = lg.Sync() }()

	st := initStore(cfg, lg)
	defer func() { _ = st.Close() }()

	rateLimiter := initLimiter(cfg, st, lg)
	deps := initDependencies(cfg, st, lg)
	handler := setupRoutes(cfg, deps, rateLimiter, lg)

	startServer(cfg, handler, lg)
}
