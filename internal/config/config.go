package config

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings. An empty Key leaves AI
// extraction unavailable.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	Model             string  `yaml:"model" mapstructure:"model"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature       float64 `yaml:"temperature" mapstructure:"temperature"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ExtractionConfig tunes one pipeline invocation.
type ExtractionConfig struct {
	AIEnabled             bool    `yaml:"ai_enabled" mapstructure:"ai_enabled" json:"aiEnabled"`
	ScraperEnabled        bool    `yaml:"scraper_enabled" mapstructure:"scraper_enabled" json:"scraperEnabled"`
	AIConfidenceThreshold float64 `yaml:"ai_confidence_threshold" mapstructure:"ai_confidence_threshold" json:"aiConfidenceThreshold" validate:"gte=0,lte=1"`
	AITimeoutMs           int     `yaml:"ai_timeout_ms" mapstructure:"ai_timeout_ms" json:"aiTimeoutMs" validate:"gt=0"`
	ScraperTimeoutMs      int     `yaml:"scraper_timeout_ms" mapstructure:"scraper_timeout_ms" json:"scraperTimeoutMs" validate:"gt=0"`
	MaxRetries            int     `yaml:"max_retries" mapstructure:"max_retries" json:"maxRetries" validate:"gte=0,lte=10"`
}

// AITimeout returns AITimeoutMs as a duration.
func (e ExtractionConfig) AITimeout() time.Duration {
	return time.Duration(e.AITimeoutMs) * time.Millisecond
}

// ScraperTimeout returns ScraperTimeoutMs as a duration.
func (e ExtractionConfig) ScraperTimeout() time.Duration {
	return time.Duration(e.ScraperTimeoutMs) * time.Millisecond
}

// DefaultExtraction returns the built-in extraction settings.
func DefaultExtraction() ExtractionConfig {
	return ExtractionConfig{
		AIEnabled:             true,
		ScraperEnabled:        true,
		AIConfidenceThreshold: 0.7,
		AITimeoutMs:           15000,
		ScraperTimeoutMs:      10000,
		MaxRetries:            2,
	}
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its bounds.
func (e ExtractionConfig) Validate() error {
	if err := structValidator.Struct(e); err != nil {
		return eris.Wrap(err, "config: invalid extraction settings")
	}
	return nil
}

// ScrapeConfig configures outbound page fetches.
type ScrapeConfig struct {
	UserAgent          string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes       int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxCandidates      int    `yaml:"max_candidates" mapstructure:"max_candidates"`
	ParallelCandidates bool   `yaml:"parallel_candidates" mapstructure:"parallel_candidates"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	ext := DefaultExtraction()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.temperature", 0.1)
	v.SetDefault("anthropic.requests_per_second", 2)
	v.SetDefault("extraction.ai_enabled", ext.AIEnabled)
	v.SetDefault("extraction.scraper_enabled", ext.ScraperEnabled)
	v.SetDefault("extraction.ai_confidence_threshold", ext.AIConfidenceThreshold)
	v.SetDefault("extraction.ai_timeout_ms", ext.AITimeoutMs)
	v.SetDefault("extraction.scraper_timeout_ms", ext.ScraperTimeoutMs)
	v.SetDefault("extraction.max_retries", ext.MaxRetries)
	v.SetDefault("scrape.user_agent", defaultUserAgent)
	v.SetDefault("scrape.max_body_bytes", 2<<20)
	v.SetDefault("scrape.max_candidates", 3)
	v.SetDefault("scrape.parallel_candidates", false)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Extraction.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Validate checks the settings a command mode depends on. Mode is one of
// "extract" or "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "extract":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if err := structValidator.Struct(c.Extraction); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, "extraction."+fieldKey(fe.Field())+" fails "+fe.Tag()+" "+fe.Param())
			}
		} else {
			errs = append(errs, err.Error())
		}
	}
	if c.Scrape.MaxCandidates < 1 {
		errs = append(errs, "scrape.max_candidates must be >= 1")
	}
	if c.Anthropic.RequestsPerSecond < 0 {
		errs = append(errs, "anthropic.requests_per_second must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

var extractionKeys = map[string]string{
	"AIConfidenceThreshold": "ai_confidence_threshold",
	"AITimeoutMs":           "ai_timeout_ms",
	"ScraperTimeoutMs":      "scraper_timeout_ms",
	"MaxRetries":            "max_retries",
}

func fieldKey(field string) string {
	if k, ok := extractionKeys[field]; ok {
		return k
	}
	return strings.ToLower(field)
}
