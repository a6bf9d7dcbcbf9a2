// Package config 提供应用配置的加载和校验。
// 配置来源优先级：环境变量 > .env 文件 > 默认值。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 应用基础配置
type AppConfig struct {
	Name            string
	Env             string // dev | test | prod
	Version         string
	Port            int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string // debug | info | warn | error
	Encoding string // json | console
}

// JWTConfig JWT令牌配置
type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// StoreConfig 购物车快照存储配置
// Type 可选 memory | file | redis | off；file 类型需要指定 Dir。
type StoreConfig struct {
	Type string
	Dir  string
}

// RedisConfig Redis连接配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// RateLimitConfig 登录接口限流配置
type RateLimitConfig struct {
	Enabled bool
	Rate    int64         // 窗口内允许的请求数
	Burst   int64         // 突发容量
	Window  time.Duration // 时间窗口
}

// Config 汇总所有配置项
type Config struct {
	App       AppConfig
	Log       LogConfig
	JWT       JWTConfig
	Store     StoreConfig
	Redis     RedisConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig

	// IdempotencyKeyHeader 下单幂等键的请求头名称
	IdempotencyKeyHeader string
}

// Load 加载并校验配置。
// .env 文件不存在不是错误；显式设置的环境变量始终优先生效。
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:            getEnv("APP_NAME", "graph-market"),
			Env:             getEnv("APP_ENV", "dev"),
			Version:         getEnv("APP_VERSION", "0.1.0"),
			Port:            getEnvInt("APP_PORT", 8080),
			RequestTimeout:  getEnvDuration("APP_REQUEST_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", ""),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},
		Store: StoreConfig{
			Type: getEnv("STORE_TYPE", "memory"),
			Dir:  getEnv("STORE_DIR", "./data"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "127.0.0.1"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvList("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type", "X-Request-ID", "X-Cart-Session"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", true),
			Rate:    int64(getEnvInt("RATE_LIMIT_RATE", 10)),
			Burst:   int64(getEnvInt("RATE_LIMIT_BURST", 20)),
			Window:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		IdempotencyKeyHeader: getEnv("IDEMPOTENCY_KEY_HEADER", "X-Idempotency-Key"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate 校验配置的合法性
func (c *Config) validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid APP_PORT: %d", c.App.Port)
	}

	switch c.App.Env {
	case "dev", "test", "prod":
	default:
		return fmt.Errorf("invalid APP_ENV: %s", c.App.Env)
	}

	switch c.Store.Type {
	case "memory", "file", "redis", "off":
	default:
		return fmt.Errorf("invalid STORE_TYPE: %s", c.Store.Type)
	}
	if c.Store.Type == "file" && strings.TrimSpace(c.Store.Dir) == "" {
		return fmt.Errorf("STORE_DIR is required when STORE_TYPE=file")
	}

	// 生产环境必须显式配置JWT密钥
	if c.JWT.Secret == "" {
		if c.App.Env == "prod" {
			return fmt.Errorf("JWT_SECRET is required in prod")
		}
		c.JWT.Secret = "dev-insecure-secret"
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Rate <= 0 || c.RateLimit.Burst <= 0 || c.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit config: rate=%d burst=%d window=%s",
				c.RateLimit.Rate, c.RateLimit.Burst, c.RateLimit.Window)
		}
	}

	return nil
}

// getEnv 读取字符串环境变量，未设置时返回默认值
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// getEnvInt 读取整型环境变量，解析失败时返回默认值
func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// getEnvBool 读取布尔环境变量
func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// getEnvDuration 读取时间间隔环境变量，如 "10s"、"5m"
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}

// getEnvList 读取逗号分隔的列表环境变量
func getEnvList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
