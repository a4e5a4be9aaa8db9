package llm

import (
	"context"
	"errors"
	"strings"

	"adscript/internal/length"
	"adscript/internal/metrics"
	"adscript/pkg/prompts"
)

// Refiner is a one-shot length gate: a script under target gets exactly one
// extra backend call and the answer is accepted as is.
type Refiner struct {
	prompts  *prompts.Prompts
	measurer length.Measurer
}

func NewRefiner(p *prompts.Prompts, m length.Measurer) *Refiner {
	if m == nil {
		m = length.RuneMeasurer{}
	}
	return &Refiner{prompts: p, measurer: m}
}

func (r *Refiner) Measurer() length.Measurer {
	return r.measurer
}

// RefineIfNeeded returns text untouched when it already reaches target.
// Otherwise it asks backend once for a longer version. If that call fails the
// original text is returned together with a *RefinementError.
func (r *Refiner) RefineIfNeeded(ctx context.Context, backend Backend, text string, target int, opts CallOptions) (string, error) {
	if r.measurer.Measure(text) >= target {
		metrics.RefinementsTotal.WithLabelValues(backend.Name(), metrics.RefineSkipped).Inc()
		return text, nil
	}

	prompt, err := r.prompts.RenderRefine(prompts.RefineParams{
		Script:         text,
		TargetLength:   target,
		LineBreakEvery: length.PerMinute(),
	})
	if err != nil {
		return text, r.failed(backend, &ProviderError{Provider: backend.Name(), Err: err})
	}

	out, err := call(ctx, backend, metrics.KindRefine, opts.request(prompt, 1), opts.Timeout)
	if err != nil {
		var pe *ProviderError
		if !errors.As(err, &pe) {
			pe = &ProviderError{Provider: backend.Name(), Err: err}
		}
		return text, r.failed(backend, pe)
	}

	if len(out) == 0 || strings.TrimSpace(out[0]) == "" {
		return text, r.failed(backend, &ProviderError{Provider: backend.Name(), Err: errors.New("refine: empty response")})
	}

	metrics.RefinementsTotal.WithLabelValues(backend.Name(), metrics.RefineApplied).Inc()
	return out[0], nil
}

func (r *Refiner) failed(backend Backend, pe *ProviderError) error {
	metrics.RefinementsTotal.WithLabelValues(backend.Name(), metrics.RefineFailed).Inc()
	return &RefinementError{ProviderError: pe}
}
