package app

import (
	"context"
	"fmt"

	"adscript/internal/length"
	"adscript/internal/llm"
	"adscript/internal/llm/anthropic"
	"adscript/internal/llm/gemini"
	"adscript/internal/llm/openai"
	"adscript/internal/storage"
	"adscript/pkg/config"
	"adscript/pkg/httputil"
	"adscript/pkg/prompts"
)

// BuildOrchestrator wires the three providers from cfg in result order:
// OpenAI, Anthropic, Gemini.
func BuildOrchestrator(ctx context.Context, cfg *config.Config) (*Orchestrator, error) {
	p, err := loadPrompts(ctx, cfg.Prompts.Source)
	if err != nil {
		return nil, err
	}

	measurer, err := length.New(cfg.Generation.Measure, cfg.Generation.Encoding)
	if err != nil {
		return nil, fmt.Errorf("create measurer: %w", err)
	}

	openaiClient, err := openai.NewClient(openai.Options{
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.OpenAI.Model,
		BaseURL:    cfg.OpenAI.BaseURL,
		HTTPClient: httputil.NewClient(httputil.ClientConfig{Provider: openai.Name}),
	})
	if err != nil {
		return nil, err
	}

	anthropicClient, err := anthropic.NewClient(anthropic.Options{
		APIKey:     cfg.AnthropicAPIKey,
		Model:      cfg.Anthropic.Model,
		BaseURL:    cfg.Anthropic.BaseURL,
		HTTPClient: httputil.NewClient(httputil.ClientConfig{Provider: anthropic.Name}),
	})
	if err != nil {
		return nil, err
	}

	geminiClient, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.Gemini.Model,
		BaseURL:    cfg.Gemini.BaseURL,
		HTTPClient: httputil.NewClient(httputil.ClientConfig{Provider: gemini.Name}),
	})
	if err != nil {
		return nil, err
	}

	opts := llm.AdapterOptions{
		Prompts:         p,
		Measurer:        measurer,
		MaxOutputTokens: cfg.Generation.MaxOutputTokens,
		CallTimeout:     cfg.Generation.CallTimeout,
	}

	return NewOrchestrator(
		llm.NewAdapter(openaiClient, opts),
		llm.NewAdapter(anthropicClient, opts),
		llm.NewAdapter(geminiClient, opts),
	), nil
}

func loadPrompts(ctx context.Context, source string) (*prompts.Prompts, error) {
	if source == "" {
		return prompts.Load()
	}

	src, err := storage.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	data, err := src.ReadTemplates(ctx)
	if err != nil {
		return nil, err
	}

	p, err := prompts.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse templates from %s: %w", source, err)
	}
	return p, nil
}
