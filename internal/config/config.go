// Package config loads strategem settings from defaults, a YAML file and
// STRATEGEM_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dhabedank/strategem/internal/llm"
)

// FileName is the config file looked up in the working directory and home.
const FileName = ".strategem.yaml"

// Config holds all application configuration.
type Config struct {
	LLM        LLMConfig        `mapstructure:"llm"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Frameworks FrameworksConfig `mapstructure:"frameworks"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// LLMConfig selects and tunes the inference backend.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
}

// Timeout returns the per-call timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Adapter converts the settings to an llm.Config.
func (c LLMConfig) Adapter() llm.Config {
	config := llm.DefaultConfig()
	config.Provider = c.Provider
	config.Model = c.Model
	config.APIKey = c.APIKey
	if c.BaseURL != "" {
		config.BaseURL = c.BaseURL
	}
	config.Temperature = c.Temperature
	if c.MaxTokens > 0 {
		config.MaxTokens = c.MaxTokens
	}
	if c.TimeoutSecs > 0 {
		config.Timeout = c.Timeout()
	}
	return config
}

// StorageConfig selects where analyses are persisted.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Dir    string `mapstructure:"dir"`
	DSN    string `mapstructure:"dsn"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FrameworksConfig points at extra framework definitions.
type FrameworksConfig struct {
	File    string   `mapstructure:"file"`
	Default []string `mapstructure:"default"`
}

// apiKeyEnv maps providers to their conventional key variables.
var apiKeyEnv = map[string]string{
	llm.ProviderOpenRouter: "OPENROUTER_API_KEY",
	llm.ProviderAnthropic:  "ANTHROPIC_API_KEY",
	llm.ProviderGemini:     "GEMINI_API_KEY",
}

// Load reads configuration. An explicit path must exist; otherwise
// .strategem.yaml is looked up in the working directory, then home.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STRATEGEM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	file, err := configFile(path)
	if err != nil {
		return nil, err
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = file

	if cfg.LLM.APIKey == "" {
		if env, ok := apiKeyEnv[cfg.LLM.Provider]; ok {
			cfg.LLM.APIKey = os.Getenv(env)
		}
	}
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// LLM defaults
	v.SetDefault("llm.provider", llm.ProviderAuto)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", llm.DefaultOpenRouterURL)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 8000)
	v.SetDefault("llm.timeout_secs", 120)

	// Storage defaults
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.dir", "strategem_output")
	v.SetDefault("storage.dsn", "strategem.db")

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "10m")

	// Log defaults
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	v.SetDefault("frameworks.file", "")
	v.SetDefault("frameworks.default", []string{})
}

// Validate rejects settings no component can use.
func (c *Config) Validate() error {
	valid := false
	for _, p := range llm.Providers {
		if c.LLM.Provider == p {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown llm.provider %q (want one of %s)", c.LLM.Provider, strings.Join(llm.Providers, ", "))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature %.2f out of range [0, 2]", c.LLM.Temperature)
	}
	if c.LLM.TimeoutSecs <= 0 {
		return fmt.Errorf("llm.timeout_secs must be positive")
	}
	switch c.Storage.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage.driver %q (want file or sqlite)", c.Storage.Driver)
	}
	return nil
}

func configFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}
	candidates := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, FileName))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config file: %w", err)
		}
	}
	return "", nil
}

// UserFile is where setup writes its choices.
func UserFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
