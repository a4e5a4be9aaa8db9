package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	orig, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(orig) })
	_ = os.Chdir(tmp)
	return tmp
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvOpenAIKey, EnvAnthropicKey, EnvGeminiKey, EnvProject,
		"OPENAI_MODEL", "CLAUDE_MODEL", "GEMINI_MODEL",
	} {
		t.Setenv(key, "")
	}
}

type fakeSecrets struct {
	values   map[string]string
	requests []string
}

func (f *fakeSecrets) Secret(ctx context.Context, project, name string) (string, error) {
	f.requests = append(f.requests, project+"/"+name)
	if v, ok := f.values[name]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func (f *fakeSecrets) Close() error { return nil }

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.OpenAI.Model != defaultOpenAIModel {
		t.Errorf("OpenAI.Model = %q, want %q", cfg.OpenAI.Model, defaultOpenAIModel)
	}
	if cfg.Anthropic.Model != defaultAnthropicModel {
		t.Errorf("Anthropic.Model = %q, want %q", cfg.Anthropic.Model, defaultAnthropicModel)
	}
	if cfg.Gemini.Model != defaultGeminiModel {
		t.Errorf("Gemini.Model = %q, want %q", cfg.Gemini.Model, defaultGeminiModel)
	}
	if cfg.Generation.CallTimeout != 45*time.Second {
		t.Errorf("CallTimeout = %v, want 45s", cfg.Generation.CallTimeout)
	}
	if cfg.Generation.MaxOutputTokens != 2048 {
		t.Errorf("MaxOutputTokens = %d, want 2048", cfg.Generation.MaxOutputTokens)
	}
	if cfg.Generation.Measure != "runes" {
		t.Errorf("Measure = %q, want runes", cfg.Generation.Measure)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestLoadFromYAML(t *testing.T) {
	tmp := chdirTemp(t)
	clearEnv(t)

	yaml := `
openai:
  model: gpt-test
  base_url: http://localhost:9999/v1
generation:
  call_timeout: 10s
  max_output_tokens: 1024
  measure: tokens
prompts:
  source: gs://bucket/prompts.yaml
server:
  addr: ":9090"
`
	_ = os.WriteFile(filepath.Join(tmp, "config.yaml"), []byte(yaml), 0644)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.OpenAI.Model != "gpt-test" {
		t.Errorf("OpenAI.Model = %q, want gpt-test", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.BaseURL != "http://localhost:9999/v1" {
		t.Errorf("OpenAI.BaseURL = %q", cfg.OpenAI.BaseURL)
	}
	if cfg.Generation.CallTimeout != 10*time.Second {
		t.Errorf("CallTimeout = %v, want 10s", cfg.Generation.CallTimeout)
	}
	if cfg.Generation.MaxOutputTokens != 1024 {
		t.Errorf("MaxOutputTokens = %d, want 1024", cfg.Generation.MaxOutputTokens)
	}
	if cfg.Generation.Measure != "tokens" {
		t.Errorf("Measure = %q, want tokens", cfg.Generation.Measure)
	}
	if cfg.Prompts.Source != "gs://bucket/prompts.yaml" {
		t.Errorf("Prompts.Source = %q", cfg.Prompts.Source)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmp := chdirTemp(t)
	clearEnv(t)
	_ = os.WriteFile(filepath.Join(tmp, "config.yaml"), []byte("openai: [unclosed"), 0644)

	if _, err := Load(context.Background()); err == nil {
		t.Error("Load() should fail on malformed config.yaml")
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	t.Setenv(EnvOpenAIKey, "sk-openai")
	t.Setenv(EnvAnthropicKey, "sk-ant")
	t.Setenv(EnvGeminiKey, "gem-key")
	t.Setenv("CLAUDE_MODEL", "claude-env")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.OpenAIAPIKey != "sk-openai" || cfg.AnthropicAPIKey != "sk-ant" || cfg.GeminiAPIKey != "gem-key" {
		t.Errorf("keys = %q %q %q", cfg.OpenAIAPIKey, cfg.AnthropicAPIKey, cfg.GeminiAPIKey)
	}
	if cfg.Anthropic.Model != "claude-env" {
		t.Errorf("Anthropic.Model = %q, want claude-env", cfg.Anthropic.Model)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadResolvesMissingKeysFromSecrets(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	t.Setenv(EnvOpenAIKey, "sk-openai")
	t.Setenv(EnvProject, "ads-project")

	secrets := &fakeSecrets{values: map[string]string{EnvAnthropicKey: "sk-ant-secret"}}
	cfg, err := LoadWith(context.Background(), secrets)
	if err != nil {
		t.Fatalf("LoadWith() error: %v", err)
	}

	if cfg.AnthropicAPIKey != "sk-ant-secret" {
		t.Errorf("AnthropicAPIKey = %q, want value from secrets", cfg.AnthropicAPIKey)
	}
	if cfg.OpenAIAPIKey != "sk-openai" {
		t.Errorf("OpenAIAPIKey = %q, env value must win", cfg.OpenAIAPIKey)
	}
	if len(secrets.requests) != 2 {
		t.Errorf("secret requests = %v, want only the two missing keys", secrets.requests)
	}
	if secrets.requests[0] != "ads-project/"+EnvAnthropicKey {
		t.Errorf("first request = %q", secrets.requests[0])
	}

	var cerr *ConfigurationError
	if err := cfg.Validate(); !errors.As(err, &cerr) || cerr.Key != EnvGeminiKey {
		t.Errorf("Validate() error = %v, want ConfigurationError for %s", err, EnvGeminiKey)
	}
}

func TestLoadSkipsSecretsWithoutProject(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	secrets := &fakeSecrets{}
	if _, err := LoadWith(context.Background(), secrets); err != nil {
		t.Fatalf("LoadWith() error: %v", err)
	}
	if len(secrets.requests) != 0 {
		t.Errorf("secret requests = %v, want none without a project", secrets.requests)
	}
}

func TestValidateReportsEveryMissingKey(t *testing.T) {
	cfg := &Config{OpenAIAPIKey: "sk"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}

	var got []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var cerr *ConfigurationError
		if errors.As(e, &cerr) {
			got = append(got, cerr.Key)
		}
	}
	if len(got) != 2 || got[0] != EnvAnthropicKey || got[1] != EnvGeminiKey {
		t.Errorf("missing keys = %v", got)
	}
}
