package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Draft  DraftConfig  `yaml:"draft" mapstructure:"draft"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DraftConfig configures bio composition.
type DraftConfig struct {
	DisableCTA  bool   `yaml:"disable_cta" mapstructure:"disable_cta"`
	CatalogPath string `yaml:"catalog_path" mapstructure:"catalog_path"`
	// VariantCountFallback is the cursor wrap-around modulus used when a
	// trade has no variants in the catalog.
	VariantCountFallback int `yaml:"variant_count_fallback" mapstructure:"variant_count_fallback"`
}

// StoreConfig configures the variant usage backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// LLMConfig configures the optional model-backed description path.
type LLMConfig struct {
	Provider       string  `yaml:"provider" mapstructure:"provider"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	OllamaURL      string  `yaml:"ollama_url" mapstructure:"ollama_url"`
	OllamaModel    string  `yaml:"ollama_model" mapstructure:"ollama_model"`
	OllamaRPS      float64 `yaml:"ollama_rps" mapstructure:"ollama_rps"`
	AnthropicKey   string  `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	AnthropicModel string  `yaml:"anthropic_model" mapstructure:"anthropic_model"`
}

// CacheConfig configures the description cache.
type CacheConfig struct {
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DRAFTGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("draft.disable_cta", false)
	v.SetDefault("draft.variant_count_fallback", 7)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.path", "variants.db")
	v.SetDefault("llm.provider", "off")
	v.SetDefault("llm.timeout_secs", 45)
	v.SetDefault("llm.ollama_url", "http://127.0.0.1:11434")
	v.SetDefault("llm.ollama_model", "gemma2:9b-instruct-q4_K_S")
	v.SetDefault("llm.ollama_rps", 1.0)
	v.SetDefault("llm.anthropic_model", "claude-haiku-4-5-20251001")
	v.SetDefault("cache.ttl_minutes", 15)
	v.SetDefault("cache.max_entries", 128)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
