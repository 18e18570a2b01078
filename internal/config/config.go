// Package config loads codeconv settings from flags, environment, an
// optional YAML file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/valpere/codeconv/internal/completion"
	"github.com/valpere/codeconv/internal/language"
)

const (
	EnvPrefix = "CODECONV"

	// FileName is looked up in the working directory, then in $HOME.
	FileName = ".codeconv"

	DefaultAddr     = "127.0.0.1:8080"
	DefaultLogLevel = "warn"
)

// providerKeyEnv maps each provider to the variable api_key falls back to
// when neither the flag, CODECONV_API_KEY nor the config file set it.
var providerKeyEnv = map[string]string{
	completion.ProviderOpenRouter: "OPENROUTER_API_KEY",
	completion.ProviderOpenAI:     "OPENAI_API_KEY",
	completion.ProviderGemini:     "GEMINI_API_KEY",
}

type Config struct {
	completion.ServiceConfig `mapstructure:",squash"`

	Source   string `mapstructure:"source"`
	Target   string `mapstructure:"target"`
	LogLevel string `mapstructure:"log_level"`
	Addr     string `mapstructure:"addr"`

	// RateLimit caps HTTP conversions per minute; 0 means unlimited.
	RateLimit int `mapstructure:"rate_limit"`
}

// Setup registers defaults, environment bindings and the config file on v.
// An explicit cfgFile must exist; the default file is optional.
func Setup(v *viper.Viper, cfgFile string) error {
	v.SetDefault("provider", completion.DefaultProvider)
	v.SetDefault("api_key", "")
	v.SetDefault("model", "")
	v.SetDefault("base_url", "")
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("max_tokens", 0)
	v.SetDefault("temperature", 0.0)
	v.SetDefault("source", language.Auto)
	v.SetDefault("target", string(language.DefaultTarget))
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("rate_limit", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key"); err != nil {
		return fmt.Errorf("failed to bind api_key environment: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		return nil
	}

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.APIKey == "" {
		provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
		if env, ok := providerKeyEnv[provider]; ok {
			cfg.APIKey = os.Getenv(env)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := completion.NewService(c.ServiceConfig); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative, got %d", c.MaxTokens)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %d", c.RateLimit)
	}
	if _, err := c.SourceLanguage(); err != nil {
		return fmt.Errorf("invalid source: %w", err)
	}
	if _, err := c.TargetLanguage(); err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// SourceLanguage returns the zero Language for "auto" or an empty value.
func (c *Config) SourceLanguage() (language.Language, error) {
	return language.ParseOptional(c.Source)
}

func (c *Config) TargetLanguage() (language.Language, error) {
	return language.Parse(c.Target)
}

// Logger builds a logger writing to out at the configured level.
func (c *Config) Logger(out io.Writer, json bool) *logrus.Logger {
	return NewLogger(c.LogLevel, out, json)
}

// NewLogger falls back to DefaultLogLevel for an unparsable level.
func NewLogger(level string, out io.Writer, json bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl, _ = logrus.ParseLevel(DefaultLogLevel)
	}
	log.SetLevel(lvl)
	return log
}
