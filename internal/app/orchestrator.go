package app

import (
	"context"
	"fmt"
	"sync"

	"adscript/internal/app/model"
	"adscript/internal/brief"
	"adscript/internal/length"
	"adscript/internal/llm"
	"adscript/internal/metrics"
)

// Orchestrator fans a brief out to every provider and collects one result per
// provider. A provider failure, including a panic, only affects that
// provider's result.
type Orchestrator struct {
	providers []llm.Provider
}

func NewOrchestrator(providers ...llm.Provider) *Orchestrator {
	return &Orchestrator{providers: providers}
}

// Names returns the provider names in result order.
func (o *Orchestrator) Names() []string {
	names := make([]string, len(o.providers))
	for i, p := range o.providers {
		names[i] = p.Name()
	}
	return names
}

// Run returns the results keyed by provider name.
func (o *Orchestrator) Run(ctx context.Context, b brief.Brief) map[string]model.GenerationResult {
	return o.Execute(ctx, b).ByProvider()
}

// Execute runs every provider concurrently and waits for all of them. The
// brief must already be validated.
func (o *Orchestrator) Execute(ctx context.Context, b brief.Brief) *model.Run {
	sess := newSession()
	sess.logger.Info("Generating scripts",
		"providers", len(o.providers),
		"variations", b.NVariations,
		"duration_sec", b.DurationSec,
	)

	results := make([]model.GenerationResult, len(o.providers))
	var wg sync.WaitGroup
	for i, p := range o.providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = o.generate(ctx, sess, p, b)
		}()
	}
	wg.Wait()

	run := &model.Run{
		ID:           sess.id,
		TargetLength: length.TargetLength(b.DurationSec),
		FormatMode:   b.FormatMode(),
		Results:      results,
	}
	sess.logger.Info("Generation finished", "failures", run.Failures(), "elapsed", sess.elapsed())
	return run
}

func (o *Orchestrator) generate(ctx context.Context, sess *session, p llm.Provider, b brief.Brief) (result model.GenerationResult) {
	name := p.Name()
	result = model.GenerationResult{Provider: name, Label: model.Label(name)}

	defer func() {
		if r := recover(); r != nil {
			result.Variations = nil
			result.Error = fmt.Sprintf("%s: panic: %v", name, r)
		}
		if result.Failed() {
			metrics.GenerationsTotal.WithLabelValues(name, metrics.StatusError).Inc()
			sess.logger.Error("Provider failed", "provider", name, "error", result.Error)
			return
		}
		metrics.GenerationsTotal.WithLabelValues(name, metrics.StatusSuccess).Inc()
		sess.logger.Info("Provider finished", "provider", name, "variations", len(result.Variations))
	}()

	variations, err := p.Generate(ctx, b)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if len(variations) != b.NVariations {
		result.Error = fmt.Sprintf("%s: expected %d variations, got %d", name, b.NVariations, len(variations))
		return result
	}

	result.Variations = variations
	return result
}
