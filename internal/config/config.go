package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Redis     RedisConfig
	Lock      LockConfig
	Reconcile ReconcileConfig
	Printer   PrinterConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	SQLitePath      string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	Timezone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// JWTConfig validates bearer tokens minted by the shop's identity service.
// ExpiryHours only applies to tokens minted locally for tooling.
type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// RateLimitConfig is applied per shop. Requests are allowed per Duration seconds.
type RateLimitConfig struct {
	Requests int
	Duration int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port pair
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LockConfig selects the per-bill lock backend
type LockConfig struct {
	Driver        string // memory or redis
	TTL           time.Duration
	WaitTimeout   time.Duration
	RetryInterval time.Duration
}

// ReconcileConfig holds the payment reconciliation policy
type ReconcileConfig struct {
	OverpaymentTolerance decimal.Decimal
	StrictTax            bool
}

// PrinterConfig describes the receipt printer attached to the shop counter
type PrinterConfig struct {
	Type        string // usb, network, or none
	USBPath     string
	Address     string
	PaperWidth  int // characters per line
	ShopName    string
	ShopAddress string
	ShopPhone   string
}

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	LockDriverMemory = "memory"
	LockDriverRedis  = "redis"
)

// Load reads .env from the working directory and the environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile reads configuration from the given dotenv file, with environment
// variables taking precedence. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name:  v.GetString("APP_NAME"),
			Env:   v.GetString("APP_ENV"),
			Port:  v.GetString("APP_PORT"),
			Debug: v.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			SQLitePath:      v.GetString("DB_SQLITE_PATH"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			Name:            v.GetString("DB_NAME"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			SSLMode:         v.GetString("DB_SSL_MODE"),
			Timezone:        v.GetString("DB_TIMEZONE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute,
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			Issuer:      v.GetString("JWT_ISSUER"),
			ExpiryHours: time.Duration(v.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetStringSlice("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(v.GetStringSlice("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(v.GetStringSlice("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Lock: LockConfig{
			Driver:        strings.ToLower(v.GetString("LOCK_DRIVER")),
			TTL:           time.Duration(v.GetInt("LOCK_TTL_SECONDS")) * time.Second,
			WaitTimeout:   time.Duration(v.GetInt("LOCK_WAIT_TIMEOUT_MS")) * time.Millisecond,
			RetryInterval: time.Duration(v.GetInt("LOCK_RETRY_INTERVAL_MS")) * time.Millisecond,
		},
		Reconcile: ReconcileConfig{
			StrictTax: v.GetBool("RECONCILE_STRICT_TAX"),
		},
		Printer: PrinterConfig{
			Type:        strings.ToLower(v.GetString("PRINTER_TYPE")),
			USBPath:     v.GetString("PRINTER_USB_PATH"),
			Address:     v.GetString("PRINTER_ADDRESS"),
			PaperWidth:  v.GetInt("PRINTER_PAPER_WIDTH"),
			ShopName:    v.GetString("PRINTER_SHOP_NAME"),
			ShopAddress: v.GetString("PRINTER_SHOP_ADDRESS"),
			ShopPhone:   v.GetString("PRINTER_SHOP_PHONE"),
		},
	}

	tolerance, err := decimal.NewFromString(v.GetString("RECONCILE_OVERPAYMENT_TOLERANCE"))
	if err != nil {
		return nil, fmt.Errorf("RECONCILE_OVERPAYMENT_TOLERANCE must be a decimal number: %w", err)
	}
	cfg.Reconcile.OverpaymentTolerance = tolerance

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "tailorbook-api")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("DB_DRIVER", DBDriverPostgres)
	v.SetDefault("DB_SQLITE_PATH", "tailorbook.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "tailorbook")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("DB_MAX_OPEN_CONNS", 50)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,Authorization,Idempotency-Key,X-Request-ID")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOCK_DRIVER", LockDriverMemory)
	v.SetDefault("LOCK_TTL_SECONDS", 10)
	v.SetDefault("LOCK_WAIT_TIMEOUT_MS", 3000)
	v.SetDefault("LOCK_RETRY_INTERVAL_MS", 25)
	v.SetDefault("RECONCILE_OVERPAYMENT_TOLERANCE", "5")
	v.SetDefault("RECONCILE_STRICT_TAX", false)
	v.SetDefault("PRINTER_TYPE", "none")
	v.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	v.SetDefault("PRINTER_ADDRESS", "")
	v.SetDefault("PRINTER_PAPER_WIDTH", 32)
	v.SetDefault("PRINTER_SHOP_NAME", "Tailor Shop")
	v.SetDefault("PRINTER_SHOP_ADDRESS", "")
	v.SetDefault("PRINTER_SHOP_PHONE", "")
}

// splitList accepts both repeated values and a single comma separated string.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Reconcile.OverpaymentTolerance.IsNegative() {
		return fmt.Errorf("RECONCILE_OVERPAYMENT_TOLERANCE cannot be negative")
	}
	switch c.Database.Driver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DBDriverPostgres, DBDriverSQLite, c.Database.Driver)
	}
	switch c.Lock.Driver {
	case LockDriverMemory, LockDriverRedis:
	default:
		return fmt.Errorf("LOCK_DRIVER must be %q or %q, got %q", LockDriverMemory, LockDriverRedis, c.Lock.Driver)
	}
	if c.Lock.TTL <= 0 {
		return fmt.Errorf("LOCK_TTL_SECONDS must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) cannot exceed DB_MAX_OPEN_CONNS (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Duration <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_DURATION must be positive")
	}

	if c.IsProduction() {
		if c.JWT.Secret == "" || c.JWT.Secret == "change-this-secret-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be '*' in production")
			}
		}
	}
	return nil
}

// IsProduction reports whether the app runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
