// Package config loads fintips settings from a TOML file, the environment and .env.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FINTIPS_LLM_MODEL.
const EnvPrefix = "FINTIPS"

// Config holds all fintips configuration.
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	LLM      LLMConfig      `toml:"llm" mapstructure:"llm"`
	Analyzer AnalyzerConfig `toml:"analyzer" mapstructure:"analyzer"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr                   string `toml:"addr" mapstructure:"addr" validate:"required"`
	Mode                   string `toml:"mode" mapstructure:"mode" validate:"oneof=debug release test"`
	CacheTTLSeconds        int    `toml:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxEntries        int64  `toml:"cache_max_entries" mapstructure:"cache_max_entries" validate:"gte=0"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// LLMConfig selects and tunes the generation backend.
type LLMConfig struct {
	Provider       string `toml:"provider" mapstructure:"provider" validate:"oneof=anthropic openai"`
	APIKey         string `toml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL        string `toml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
	Model          string `toml:"model,omitempty" mapstructure:"model"`
	MaxTokens      int64  `toml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
	MaxTurns       int    `toml:"max_turns" mapstructure:"max_turns" validate:"gte=0"`
	TimeoutSeconds int    `toml:"timeout_seconds" mapstructure:"timeout_seconds" validate:"gte=0"`
}

// AnalyzerConfig selects the budget analyzer behind the checkBudget tool.
type AnalyzerConfig struct {
	Mode           string `toml:"mode" mapstructure:"mode" validate:"oneof=stub remote"`
	BaseURL        string `toml:"base_url,omitempty" mapstructure:"base_url" validate:"required_if=Mode remote,omitempty,url"`
	APIKey         string `toml:"api_key,omitempty" mapstructure:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds" mapstructure:"timeout_seconds" validate:"gte=0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" mapstructure:"format" validate:"oneof=json text"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:                   ":8080",
			Mode:                   "release",
			CacheTTLSeconds:        300,
			CacheMaxEntries:        1000,
			ShutdownTimeoutSeconds: 10,
		},
		LLM: LLMConfig{
			Provider:       "anthropic",
			MaxTokens:      4096,
			MaxTurns:       6,
			TimeoutSeconds: 60,
		},
		Analyzer: AnalyzerConfig{
			Mode:           "stub",
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Timeout returns the generation timeout. Zero means none.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the remote analyzer request timeout.
func (c AnalyzerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long generated tips are cached. Zero disables the cache.
func (c ServerConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintips")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fintips")
}

// ConfigPath returns the default config file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads configuration from path, then the environment. An empty path
// means ConfigPath, which may be missing. A .env file in the working
// directory is loaded into the environment first.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = ConfigPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit || !missing {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = ProviderAPIKey(cfg.LLM.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.cache_ttl_seconds", d.Server.CacheTTLSeconds)
	v.SetDefault("server.cache_max_entries", d.Server.CacheMaxEntries)
	v.SetDefault("server.shutdown_timeout_seconds", d.Server.ShutdownTimeoutSeconds)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.max_turns", d.LLM.MaxTurns)
	v.SetDefault("llm.timeout_seconds", d.LLM.TimeoutSeconds)

	v.SetDefault("analyzer.mode", d.Analyzer.Mode)
	v.SetDefault("analyzer.base_url", d.Analyzer.BaseURL)
	v.SetDefault("analyzer.api_key", d.Analyzer.APIKey)
	v.SetDefault("analyzer.timeout_seconds", d.Analyzer.TimeoutSeconds)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// ProviderAPIKey returns the conventional API key variable of a provider.
func ProviderAPIKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the config to path, creating its directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists reports whether a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
