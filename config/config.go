package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultServerPort          = 8080
	defaultSubmitRatePerMinute = 30
	defaultSiteTitle           = "Fire N Slice - Tournament Series"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	ServerPort  int    `yaml:"server_port"`
	LogLevel    string `yaml:"log_level"`

	// ResultsPassword: открытый текст или bcrypt-хеш. Пустое значение отключает проверку.
	ResultsPassword     string   `yaml:"results_password"`
	AllowedOrigins      []string `yaml:"allowed_origins"`
	SubmitRatePerMinute int      `yaml:"submit_rate_per_minute"`
	SiteTitle           string   `yaml:"site_title"`

	R2 R2Config `yaml:"r2"`

	// SnapshotInterval = 0 отключает периодическую публикацию выгрузок.
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
}

type R2Config struct {
	AccountID       string `yaml:"account_id"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket_name"`
	PublicBaseURL   string `yaml:"public_base_url"`
	KeyPrefix       string `yaml:"key_prefix"`

	// Endpoint заменяет https://<account>.r2.cloudflarestorage.com (MinIO, локальный стенд).
	Endpoint string `yaml:"endpoint"`
}

// Load собирает конфигурацию: .env (если есть), затем YAML из CONFIG_FILE,
// затем переменные окружения поверх.
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:          defaultServerPort,
		SubmitRatePerMinute: defaultSubmitRatePerMinute,
		SiteTitle:           defaultSiteTitle,
		LogLevel:            "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		cfg.ServerPort = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("RESULTS_PASSWORD"); ok {
		cfg.ResultsPassword = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("SUBMIT_RATE_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SUBMIT_RATE_PER_MINUTE environment variable: %w", err)
		}
		cfg.SubmitRatePerMinute = n
	}
	if v := os.Getenv("SITE_TITLE"); v != "" {
		cfg.SiteTitle = v
	}
	if v := os.Getenv("SNAPSHOT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SNAPSHOT_INTERVAL environment variable: %w", err)
		}
		cfg.SnapshotInterval = d
	}

	r2 := map[string]*string{
		"R2_ACCOUNT_ID":        &cfg.R2.AccountID,
		"R2_ACCESS_KEY_ID":     &cfg.R2.AccessKeyID,
		"R2_SECRET_ACCESS_KEY": &cfg.R2.SecretAccessKey,
		"R2_BUCKET_NAME":       &cfg.R2.BucketName,
		"R2_PUBLIC_BASE_URL":   &cfg.R2.PublicBaseURL,
		"R2_KEY_PREFIX":        &cfg.R2.KeyPrefix,
		"R2_ENDPOINT":          &cfg.R2.Endpoint,
	}
	for key, dst := range r2 {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.SubmitRatePerMinute < 0 {
		return fmt.Errorf("SUBMIT_RATE_PER_MINUTE must not be negative, got %d", c.SubmitRatePerMinute)
	}
	if c.SnapshotInterval < 0 {
		return fmt.Errorf("SNAPSHOT_INTERVAL must not be negative, got %s", c.SnapshotInterval)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel разбирает LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
