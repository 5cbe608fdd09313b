package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when --config is not provided. A missing file is not an error.
const DefaultConfigPath = "config.yml"

// MinSessionSecretLength is enforced in production.
const MinSessionSecretLength = 32

const devSessionSecret = "emberhaus-dev-secret"

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	Env               string        `yaml:"env" env:"ENV"`
	ListenAddr        string        `yaml:"listen_addr" env:"LISTEN_ADDR"`
	Port              string        `yaml:"port" env:"PORT"`
	DBDriver          string        `yaml:"db_driver" env:"DB_DRIVER"`
	DatabasePath      string        `yaml:"database_path" env:"DATABASE_PATH"`
	DatabaseDSN       string        `yaml:"database_dsn" env:"DATABASE_DSN"`
	SessionSecret     string        `yaml:"session_secret" env:"SESSION_SECRET"`
	AdminPassword     string        `yaml:"admin_password" env:"ADMIN_PASSWORD"`
	AdminPasswordHash string        `yaml:"admin_password_hash" env:"ADMIN_PASSWORD_HASH"`
	SiteBaseURL       string        `yaml:"site_base_url" env:"SITE_BASE_URL"`
	SiteName          string        `yaml:"site_name" env:"SITE_NAME"`
	UploadDir         string        `yaml:"upload_dir" env:"UPLOAD_DIR"`
	UploadURLPath     string        `yaml:"upload_url_path" env:"UPLOAD_URL_PATH"`
	RedisURL          string        `yaml:"redis_url" env:"REDIS_URL"`
	CacheTTL          int           `yaml:"cache_ttl" env:"CACHE_TTL"`
	AllowedOrigins    []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	LogLevel          string        `yaml:"log_level" env:"LOG_LEVEL"`
	LogFile           string        `yaml:"log_file" env:"LOG_FILE"`
	LoginRatePerMin   int           `yaml:"login_rate_per_minute" env:"LOGIN_RATE_PER_MINUTE"`
	ReadTimeout       time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout      time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
}

// Defaults returns the values used when neither the YAML file nor the environment sets a key.
func Defaults() AppConfig {
	return AppConfig{
		Env:             "development",
		Port:            "8080",
		DBDriver:        "sqlite",
		DatabasePath:    "data/emberhaus.db",
		SiteBaseURL:     "http://localhost:8080",
		SiteName:        "Emberhaus",
		UploadDir:       "data/uploads",
		UploadURLPath:   "/uploads",
		CacheTTL:        30,
		LogLevel:        "info",
		LoginRatePerMin: 10,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
	}
}

// Load 从 YAML 文件、.env 与环境变量读取应用配置，后者覆盖前者。
func Load(path string) (AppConfig, error) {
	cfg := Defaults()

	if err := loadYAML(path, &cfg); err != nil {
		return AppConfig{}, err
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *AppConfig) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if c.DBDriver == "" {
		c.DBDriver = "sqlite"
	}
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = ":" + c.Port
	}
	c.SessionSecret = strings.TrimSpace(c.SessionSecret)
	if c.SessionSecret == "" && !c.IsProduction() {
		c.SessionSecret = devSessionSecret
	}
	c.SiteBaseURL = strings.TrimRight(strings.TrimSpace(c.SiteBaseURL), "/")
	c.UploadURLPath = "/" + strings.Trim(strings.TrimSpace(c.UploadURLPath), "/")
	if c.CacheTTL < 0 {
		c.CacheTTL = 0
	}
	if c.LoginRatePerMin <= 0 {
		c.LoginRatePerMin = 10
	}
	origins := c.AllowedOrigins[:0]
	for _, origin := range c.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.AllowedOrigins = origins
}

// Validate rejects settings that would leave the admin gate open or unusable.
func (c AppConfig) Validate() error {
	switch c.DBDriver {
	case "sqlite":
	case "mysql":
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			return errors.New("DATABASE_DSN is required when DB_DRIVER=mysql")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if !c.IsProduction() {
		return nil
	}
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes in production", MinSessionSecretLength)
	}
	if strings.TrimSpace(c.AdminPassword) == "" && strings.TrimSpace(c.AdminPasswordHash) == "" {
		return errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required in production")
	}
	return nil
}

// IsProduction reports whether ENV=production.
func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// CacheDuration converts CacheTTL seconds into a duration.
func (c AppConfig) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}
