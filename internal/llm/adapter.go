package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"adscript/internal/brief"
	"adscript/internal/length"
	"adscript/internal/metrics"
	"adscript/pkg/prompts"
)

var _ Provider = (*Adapter)(nil)

// Adapter runs the generate-then-refine flow against one Backend.
type Adapter struct {
	backend         Backend
	prompts         *prompts.Prompts
	refiner         *Refiner
	maxOutputTokens int
	callTimeout     time.Duration
}

type AdapterOptions struct {
	Prompts         *prompts.Prompts
	Measurer        length.Measurer
	MaxOutputTokens int
	CallTimeout     time.Duration
}

func NewAdapter(backend Backend, opts AdapterOptions) *Adapter {
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}

	return &Adapter{
		backend:         backend,
		prompts:         opts.Prompts,
		refiner:         NewRefiner(opts.Prompts, opts.Measurer),
		maxOutputTokens: opts.MaxOutputTokens,
		callTimeout:     opts.CallTimeout,
	}
}

func (a *Adapter) Name() string {
	return a.backend.Name()
}

// Generate returns exactly b.NVariations scripts in request order, or a
// *ProviderError if any generation call fails. A failed refine call keeps the
// variation's original text.
func (a *Adapter) Generate(ctx context.Context, b brief.Brief) ([]string, error) {
	prompt, err := a.prompts.Build(b)
	if err != nil {
		return nil, err
	}

	target := length.TargetLength(b.DurationSec)
	opts := CallOptions{
		System:          a.prompts.System.Copywriter,
		Temperature:     b.Temperature,
		MaxOutputTokens: OutputCeiling(a.maxOutputTokens, target),
		Timeout:         a.callTimeout,
	}

	drafts, err := call(ctx, a.backend, metrics.KindGenerate, opts.request(prompt, b.NVariations), a.callTimeout)
	if err != nil {
		return nil, err
	}
	if len(drafts) != b.NVariations {
		return nil, &ProviderError{
			Provider: a.Name(),
			Err:      fmt.Errorf("expected %d completions, got %d", b.NVariations, len(drafts)),
		}
	}

	measurer := a.refiner.Measurer()

	return FanOut(ctx, len(drafts), func(ctx context.Context, i int) (string, error) {
		text, err := a.refiner.RefineIfNeeded(ctx, a.backend, drafts[i], target, opts)
		if err != nil {
			slog.Warn("Refinement failed, keeping original script",
				"provider", a.Name(),
				"variation", i+1,
				"error", err,
			)
		}

		measured := measurer.Measure(text)
		metrics.ScriptLength.WithLabelValues(a.Name()).Observe(float64(measured) / float64(target))
		slog.Debug("Variation ready", "provider", a.Name(), "variation", i+1, "measured", measured, "target", target)
		return text, nil
	})
}
