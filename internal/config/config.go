package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	devJWTSecret      = "dev-secret-change-in-production"
	defaultConfigPath = "config/staybook.yaml"
)

var (
	ErrAPIURLRequired   = errors.New("API_URL is required")
	ErrInvalidStayRange = errors.New("MIN_NIGHTS must be at least 1 and not above MAX_NIGHTS")
	ErrDevSecret        = errors.New("JWT_SECRET must be set in production environment")
)

// Config holds client settings plus the settings of the local stub API.
// Priority: environment variables > YAML file > defaults.
type Config struct {
	APIURL      string        `yaml:"api_url"`
	Env         string        `yaml:"env"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	MinNights int `yaml:"min_nights"`
	MaxNights int `yaml:"max_nights"`

	// Stub API
	Port          string        `yaml:"port"`
	JWTSecret     string        `yaml:"jwt_secret"`
	JWTExpiry     time.Duration `yaml:"jwt_expiry"`
	RefreshExpiry time.Duration `yaml:"refresh_expiry"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		APIURL:         "http://localhost:8080/api",
		Env:            "development",
		LogLevel:       "info",
		LogFormat:      "text",
		RateLimitRPS:   10,
		RateLimitBurst: 20,
		MinNights:      1,
		MaxNights:      20,
		Port:           "8080",
		JWTSecret:      devJWTSecret,
		JWTExpiry:      15 * time.Minute,
		RefreshExpiry:  7 * 24 * time.Hour,
	}
}

// Load reads .env (if present), the YAML file named by STAYBOOK_CONFIG or
// config/staybook.yaml (if present), then environment variables.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := Default()

	path := getEnv("STAYBOOK_CONFIG", defaultConfigPath)
	if err := loadYAML(path, &cfg); err != nil {
		return Config{}, err
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the client settings.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return ErrAPIURLRequired
	}
	if c.MinNights < 1 || c.MaxNights < c.MinNights {
		return ErrInvalidStayRange
	}
	return nil
}

// ValidateStub checks the stub API settings. Production refuses the
// development signing secret.
func (c Config) ValidateStub() error {
	if c.Env == "production" && c.JWTSecret == devJWTSecret {
		return ErrDevSecret
	}
	return nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.APIURL = getEnv("API_URL", cfg.APIURL)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.MinNights = getEnvInt("MIN_NIGHTS", cfg.MinNights)
	cfg.MaxNights = getEnvInt("MAX_NIGHTS", cfg.MaxNights)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTExpiry = getEnvDuration("JWT_EXPIRY", cfg.JWTExpiry)
	cfg.RefreshExpiry = getEnvDuration("REFRESH_EXPIRY", cfg.RefreshExpiry)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", v)
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v)
		return fallback
	}
	return d
}
