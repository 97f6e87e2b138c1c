package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all environment backed configuration for abby-server.
type Config struct {
	// HTTP Server
	HTTPPort    int `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int `env:"METRICS_PORT" envDefault:"9091"`

	// Model provider (OpenAI-compatible endpoint)
	ModelBaseURL string        `env:"MODEL_BASE_URL" envDefault:"http://localhost:11434/v1"`
	ModelAPIKey  string        `env:"MODEL_API_KEY"`
	ModelName    string        `env:"MODEL_NAME" envDefault:"gpt-4o-mini"`
	ModelTimeout time.Duration `env:"MODEL_TIMEOUT" envDefault:"120s"`

	// Google Custom Search
	GoogleSearchAPIKey   string        `env:"GOOGLE_SEARCH_API_KEY"`
	GoogleSearchEngineID string        `env:"GOOGLE_SEARCH_ENGINE_ID"`
	SearchConnectTimeout time.Duration `env:"SEARCH_CONNECT_TIMEOUT" envDefault:"15s"`
	SearchReadTimeout    time.Duration `env:"SEARCH_READ_TIMEOUT" envDefault:"30s"`
	SearchResultLimit    int           `env:"SEARCH_RESULT_LIMIT" envDefault:"8"`

	// Chat sessions
	MemoryWindow        int           `env:"MEMORY_WINDOW" envDefault:"20"`
	StreamTimeout       time.Duration `env:"STREAM_TIMEOUT" envDefault:"10m"`
	UploadStreamTimeout time.Duration `env:"UPLOAD_STREAM_TIMEOUT" envDefault:"5m"`

	// File uploads
	FileUploadDir string `env:"FILE_UPLOAD_DIR" envDefault:"./uploads"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"abby-server"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"abby"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.ModelBaseURL); err != nil {
		return nil, fmt.Errorf("invalid MODEL_BASE_URL: %w", err)
	}

	if cfg.MemoryWindow <= 0 {
		return nil, errors.New("MEMORY_WINDOW must be greater than zero")
	}

	if cfg.SearchResultLimit <= 0 {
		return nil, errors.New("SEARCH_RESULT_LIMIT must be greater than zero")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.ModelBaseURL = strings.TrimRight(cfg.ModelBaseURL, "/")

	return cfg, nil
}

// SearchConfigured reports whether the Google Custom Search credentials are set.
func (c *Config) SearchConfigured() bool {
	return strings.TrimSpace(c.GoogleSearchAPIKey) != "" && strings.TrimSpace(c.GoogleSearchEngineID) != ""
}
