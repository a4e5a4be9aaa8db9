package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath      = "config.yaml"
	defaultServerAddr      = ":8080"
	defaultCallTimeout     = 45 * time.Second
	defaultMaxOutputTokens = 2048
	defaultMeasure         = "runes"
	defaultEncoding        = "cl100k_base"
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultAnthropicModel  = "claude-3-5-haiku-latest"
	defaultGeminiModel     = "gemini-2.5-flash"
)

const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGeminiKey    = "GOOGLE_GEMINI_API_KEY"
	EnvProject      = "GOOGLE_CLOUD_PROJECT"
)

// ConfigurationError reports a required setting that no source provided.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Key)
}

type Config struct {
	OpenAIAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
	GeminiAPIKey    string `yaml:"-"`

	OpenAI     ProviderConfig   `yaml:"openai"`
	Anthropic  ProviderConfig   `yaml:"anthropic"`
	Gemini     ProviderConfig   `yaml:"gemini"`
	Generation GenerationConfig `yaml:"generation"`
	Prompts    PromptsConfig    `yaml:"prompts"`
	Server     ServerConfig     `yaml:"server"`
	Secrets    SecretsConfig    `yaml:"secrets"`
}

type ProviderConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type GenerationConfig struct {
	CallTimeout     time.Duration `yaml:"call_timeout"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Measure         string        `yaml:"measure"`  // "runes" or "tokens"
	Encoding        string        `yaml:"encoding"` // tiktoken encoding for "tokens"
}

type PromptsConfig struct {
	// Source is a local path or gs://bucket/object; empty uses the built-in templates.
	Source string `yaml:"source"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type SecretsConfig struct {
	Project string `yaml:"project"`
}

// Load reads .env, config.yaml and the environment, then fills any missing
// API key from Secret Manager when a project is configured.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, nil)
}

// LoadWith is Load with an explicit secret source. A nil source creates a
// Secret Manager client on demand.
func LoadWith(ctx context.Context, secrets SecretSource) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := loadYAMLConfig(cfg, defaultConfigPath); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := resolveSecrets(ctx, cfg, secrets); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("No config.yaml found, using defaults")
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.OpenAIAPIKey = os.Getenv(EnvOpenAIKey)
	cfg.AnthropicAPIKey = os.Getenv(EnvAnthropicKey)
	cfg.GeminiAPIKey = os.Getenv(EnvGeminiKey)

	cfg.OpenAI.Model = getEnvOrDefault("OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.Anthropic.Model = getEnvOrDefault("CLAUDE_MODEL", cfg.Anthropic.Model)
	cfg.Gemini.Model = getEnvOrDefault("GEMINI_MODEL", cfg.Gemini.Model)
	cfg.Secrets.Project = getEnvOrDefault(EnvProject, cfg.Secrets.Project)
}

func applyDefaults(cfg *Config) {
	applyProviderDefaults(cfg)
	applyGenerationDefaults(cfg)
	applyServerDefaults(cfg)
}

func applyProviderDefaults(cfg *Config) {
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = defaultOpenAIModel
	}
	if cfg.Anthropic.Model == "" {
		cfg.Anthropic.Model = defaultAnthropicModel
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = defaultGeminiModel
	}
}

func applyGenerationDefaults(cfg *Config) {
	if cfg.Generation.CallTimeout == 0 {
		cfg.Generation.CallTimeout = defaultCallTimeout
	}
	if cfg.Generation.MaxOutputTokens == 0 {
		cfg.Generation.MaxOutputTokens = defaultMaxOutputTokens
	}
	if cfg.Generation.Measure == "" {
		cfg.Generation.Measure = defaultMeasure
	}
	if cfg.Generation.Encoding == "" {
		cfg.Generation.Encoding = defaultEncoding
	}
}

func applyServerDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
}

// Validate returns one ConfigurationError per missing API key, joined.
func (c *Config) Validate() error {
	var errs []error
	for _, k := range c.credentials() {
		if *k.value == "" {
			errs = append(errs, &ConfigurationError{Key: k.env})
		}
	}
	return errors.Join(errs...)
}

type credential struct {
	env   string
	value *string
}

func (c *Config) credentials() []credential {
	return []credential{
		{env: EnvOpenAIKey, value: &c.OpenAIAPIKey},
		{env: EnvAnthropicKey, value: &c.AnthropicAPIKey},
		{env: EnvGeminiKey, value: &c.GeminiAPIKey},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
