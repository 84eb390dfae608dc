// Package config provides unified configuration loading for the PDF assistant.
// Supports YAML files, .env files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the PDF assistant.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	LLM           LLMConfig           `yaml:"llm"`
	PDF           PDFConfig           `yaml:"pdf"`
	Language      LanguageConfig      `yaml:"language"`
	Session       SessionConfig       `yaml:"session"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
}

// LLMConfig holds chat-completion backend settings.
type LLMConfig struct {
	Backend     string        `yaml:"backend"` // ollama or openai
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	Stream      bool          `yaml:"stream"`
	MaxRetries  int           `yaml:"max_retries"`
	Temperature *float64      `yaml:"temperature"`
}

// PDFConfig holds text extraction settings.
type PDFConfig struct {
	Loader      string `yaml:"loader"` // fitz or plain
	MaxFileSize int64  `yaml:"max_file_size"`
}

// LanguageConfig holds language classification settings.
type LanguageConfig struct {
	SampleSize int `yaml:"sample_size"`
}

// SessionConfig holds session storage settings.
type SessionConfig struct {
	Store     string        `yaml:"store"` // memory or redis
	TTL       time.Duration `yaml:"ttl"`
	UploadDir string        `yaml:"upload_dir"`
	Redis     RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Prefix   string `yaml:"prefix"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies .env and environment overrides.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration pointing at a local Ollama instance.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "127.0.0.1",
			Port:             8501,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     5 * time.Minute,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   50 * 1024 * 1024,
		},
		LLM: LLMConfig{
			Backend:    "ollama",
			BaseURL:    "http://localhost:11434",
			Model:      "llama3.2:3b",
			Timeout:    5 * time.Minute,
			MaxRetries: 0,
		},
		PDF: PDFConfig{
			Loader:      "fitz",
			MaxFileSize: 50 * 1024 * 1024,
		},
		Language: LanguageConfig{
			SampleSize: 500,
		},
		Session: SessionConfig{
			Store: "memory",
			TTL:   2 * time.Hour,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
				Prefix:   "pdfa:",
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "console",
			ServiceName: "pdf-assistant",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.LLM.Backend != "ollama" && c.LLM.Backend != "openai" {
		return fmt.Errorf("invalid llm backend: %s", c.LLM.Backend)
	}

	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		return fmt.Errorf("llm base_url is required")
	}

	if strings.TrimSpace(c.LLM.Model) == "" {
		return fmt.Errorf("llm model is required")
	}

	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm max_retries cannot be negative")
	}

	if c.PDF.Loader != "fitz" && c.PDF.Loader != "plain" {
		return fmt.Errorf("invalid pdf loader: %s", c.PDF.Loader)
	}

	if c.Language.SampleSize < 1 {
		return fmt.Errorf("language sample_size must be positive")
	}

	if c.Session.Store != "memory" && c.Session.Store != "redis" {
		return fmt.Errorf("invalid session store: %s", c.Session.Store)
	}

	return nil
}

// ListenAddr returns host:port for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("LLM_BACKEND"); v != "" {
		cfg.LLM.Backend = v
	}

	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	if v := os.Getenv("LLM_STREAM"); v != "" {
		cfg.LLM.Stream = v == "true" || v == "1"
	}

	if v := os.Getenv("PDF_LOADER"); v != "" {
		cfg.PDF.Loader = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Session.Store = "redis"
		cfg.Session.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("SESSION_UPLOAD_DIR"); v != "" {
		cfg.Session.UploadDir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
