package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "STORELANE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Storage      StorageConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STORELANE_APP_ENV" required:"true"`
	Port         string `envconfig:"STORELANE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STORELANE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STORELANE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STORELANE_DB_DSN"`
	Driver string `envconfig:"STORELANE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STORELANE_DB_HOST"`
	LegacyPort     int    `envconfig:"STORELANE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STORELANE_DB_USER"`
	LegacyPassword string `envconfig:"STORELANE_DB_PASSWORD"`
	LegacyName     string `envconfig:"STORELANE_DB_NAME"`
	LegacySSLMode  string `envconfig:"STORELANE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STORELANE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STORELANE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STORELANE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STORELANE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a DSN from the discrete host/user variables when a full
// DSN was not provided.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("either STORELANE_DB_DSN or STORELANE_DB_HOST/USER/NAME must be set")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.LegacyUser, d.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:   "/" + d.LegacyName,
	}
	q := u.Query()
	q.Set("sslmode", d.LegacySSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

// RedisConfig is optional; when no URL/address is set the idempotency layer
// degrades to pass-through.
type RedisConfig struct {
	URL      string `envconfig:"STORELANE_REDIS_URL"`
	Address  string `envconfig:"STORELANE_REDIS_ADDRESS"`
	Password string `envconfig:"STORELANE_REDIS_PASSWORD"`
	DB       int    `envconfig:"STORELANE_REDIS_DB" default:"0"`

	PoolSize     int           `envconfig:"STORELANE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STORELANE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STORELANE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STORELANE_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STORELANE_REDIS_WRITE_TIMEOUT" default:"3s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// StorageConfig locates the local upload directory and the public base URL
// used to build retrievable media addresses. Both are externally supplied.
type StorageConfig struct {
	UploadDir     string `envconfig:"STORELANE_UPLOAD_DIR"`
	PublicBaseURL string `envconfig:"STORELANE_PUBLIC_BASE_URL" default:"http://localhost:8080"`
	MaxUploadMB   int    `envconfig:"STORELANE_MAX_UPLOAD_MB" default:"20"`
}

func (s *StorageConfig) validate() error {
	if s.UploadDir == "" {
		return fmt.Errorf("STORELANE_UPLOAD_DIR is required")
	}
	s.PublicBaseURL = strings.TrimRight(s.PublicBaseURL, "/")
	if _, err := url.Parse(s.PublicBaseURL); err != nil {
		return fmt.Errorf("invalid public base url: %w", err)
	}
	if s.MaxUploadMB <= 0 {
		return fmt.Errorf("STORELANE_MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// MaxUploadBytes converts the configured megabyte cap to bytes.
func (s StorageConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) * 1024 * 1024
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STORELANE_FEATURE_AUTO_MIGRATE" default:"false"`
}
