package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 儲存與事件驅動名稱
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	EventsLog     = "log"
	EventsRedis   = "redis"
	EventsWebhook = "webhook"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Events      EventsConfig    `mapstructure:"events"`
	Auth        AuthConfig      `mapstructure:"auth"`
	Grocery     GroceryConfig   `mapstructure:"grocery"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogDir      string          `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 連線設定
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
}

// StorageConfig 儲存層設定
type StorageConfig struct {
	Driver   string `mapstructure:"driver"`    // memory | postgres
	SeedFile string `mapstructure:"seed_file"` // 記憶體模式的初始資料 (YAML)
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// EventsConfig 家庭事件發布設定
type EventsConfig struct {
	Drivers       []string      `mapstructure:"drivers"` // log | redis | webhook，可多選
	ChannelPrefix string        `mapstructure:"channel_prefix"`
	Webhook       WebhookConfig `mapstructure:"webhook"`
	QueueSize     int           `mapstructure:"queue_size"` // 0 表示同步發送
	Workers       int           `mapstructure:"workers"`
}

// WebhookConfig 即時閘道 webhook 設定
type WebhookConfig struct {
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
}

// AuthConfig JWT 驗證設定
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// GroceryConfig 購物清單設定
type GroceryConfig struct {
	MaxRangeDays   int    `mapstructure:"max_range_days"`
	CategoriesFile string `mapstructure:"categories_file"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// MetricsConfig Prometheus 指標設定
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（可選）
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	viper.Reset()

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	_ = viper.BindEnv("server.port", "PORT")
	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = viper.BindEnv("storage.seed_file", "STORAGE_SEED_FILE")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("events.drivers", "EVENTS_DRIVERS")
	_ = viper.BindEnv("events.webhook.url", "EVENTS_WEBHOOK_URL")
	_ = viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = viper.BindEnv("grocery.max_range_days", "GROCERY_MAX_RANGE_DAYS")
	_ = viper.BindEnv("grocery.categories_file", "GROCERY_CATEGORIES_FILE")
	_ = viper.BindEnv("metrics.enabled", "METRICS_ENABLED")
	_ = viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("log_dir", "LOG_DIR")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Events.Drivers = normalizeList(config.Events.Drivers)

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskSecret 遮罩密鑰，只顯示前後各 4 個字符
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// normalizeList 支援 "a,b" 與 ["a","b"] 兩種寫法
func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// HasEventDriver 是否啟用指定事件驅動
func (c *Config) HasEventDriver(name string) bool {
	for _, d := range c.Events.Drivers {
		if d == name {
			return true
		}
	}
	return false
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "meal-planner")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.request_timeout", "30s")
	viper.SetDefault("server.shutdown_timeout", "5s")
	viper.SetDefault("server.max_body_size", 1<<20) // 1MB
	viper.SetDefault("server.allow_origins", []string{"*"})

	// 資料庫設定
	viper.SetDefault("database.max_conns", 10)
	viper.SetDefault("database.min_conns", 1)
	viper.SetDefault("database.max_conn_lifetime", "1h")
	viper.SetDefault("database.max_conn_idle_time", "30m")
	viper.SetDefault("database.migrate_on_start", true)

	// 儲存設定
	viper.SetDefault("storage.driver", StorageMemory)

	// Redis 設定
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	// 事件設定
	viper.SetDefault("events.drivers", []string{EventsLog})
	viper.SetDefault("events.channel_prefix", "household:")
	viper.SetDefault("events.webhook.timeout", "5s")
	viper.SetDefault("events.webhook.retry_count", 2)
	viper.SetDefault("events.queue_size", 256)
	viper.SetDefault("events.workers", 2)

	// 驗證設定
	viper.SetDefault("auth.issuer", "meal-planner")

	// 購物清單設定
	viper.SetDefault("grocery.max_range_days", 62)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 指標設定
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	viper.SetDefault("dedup_window", "1m")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Server.MaxBodySize <= 0 {
		return fmt.Errorf("invalid server max body size")
	}

	// 驗證儲存設定
	switch config.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if config.Database.URL == "" {
			return fmt.Errorf("database url is required for postgres storage")
		}
		if config.Database.MaxConns <= 0 {
			return fmt.Errorf("invalid database max conns")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	// 驗證事件設定
	for _, d := range config.Events.Drivers {
		switch d {
		case EventsLog:
		case EventsRedis:
			if config.Redis.Addr == "" {
				return fmt.Errorf("redis addr is required for redis events")
			}
		case EventsWebhook:
			if config.Events.Webhook.URL == "" {
				return fmt.Errorf("webhook url is required for webhook events")
			}
		default:
			return fmt.Errorf("unknown events driver %q", d)
		}
	}

	if config.Events.QueueSize < 0 {
		return fmt.Errorf("invalid events queue size")
	}
	if config.Events.QueueSize > 0 && config.Events.Workers <= 0 {
		return fmt.Errorf("events workers must be positive when the queue is enabled")
	}

	// 驗證 JWT 設定
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	// 驗證購物清單設定
	if config.Grocery.MaxRangeDays <= 0 {
		return fmt.Errorf("invalid grocery max range days")
	}

	// 驗證限流設定
	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 {
			return fmt.Errorf("invalid rate limit requests")
		}
		if config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit window")
		}
	}

	return nil
}
