// Package llm defines the contract every text-generation backend fulfils and
// the provider-agnostic generate-then-refine flow built on top of it.
package llm

import (
	"context"
	"time"

	"adscript/internal/brief"
)

const (
	// TopP is the nucleus-sampling value sent with every request.
	TopP = 0.95

	DefaultMaxOutputTokens = 2048
	DefaultCallTimeout     = 45 * time.Second

	// OutputTokensPerUnit bounds how many output tokens one unit of target
	// length may cost. Japanese text can take more than one token per
	// character, and the answer may run past the target.
	OutputTokensPerUnit = 3
)

// OutputCeiling is the output token limit for a script of target units. It
// never goes below configured.
func OutputCeiling(configured, target int) int {
	return max(configured, target*OutputTokensPerUnit)
}

// Request is the logical shape of one backend call.
type Request struct {
	System          string
	Prompt          string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
	Completions     int
}

// Backend is a single text-generation service. Complete must return exactly
// req.Completions texts, in order, or an error.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) ([]string, error)
}

// Provider turns a brief into brief.NVariations finished scripts.
type Provider interface {
	Name() string
	Generate(ctx context.Context, b brief.Brief) ([]string, error)
}

// CallOptions carries the per-request settings shared by the generation and
// refine calls of one provider.
type CallOptions struct {
	System          string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

func (o CallOptions) request(prompt string, completions int) Request {
	return Request{
		System:          o.System,
		Prompt:          prompt,
		Temperature:     o.Temperature,
		TopP:            TopP,
		MaxOutputTokens: o.MaxOutputTokens,
		Completions:     completions,
	}
}
