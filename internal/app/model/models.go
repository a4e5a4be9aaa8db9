package model

import "adscript/internal/brief"

// GenerationResult is one provider's outcome. On failure Error is set and
// Variations is empty; on success len(Variations) equals the brief's
// NVariations.
type GenerationResult struct {
	Provider   string   `json:"provider"`
	Label      string   `json:"label"`
	Variations []string `json:"variations,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func (r GenerationResult) Failed() bool {
	return r.Error != ""
}

// Run is the outcome of one orchestrator invocation, results in provider
// order.
type Run struct {
	ID           string             `json:"run_id"`
	TargetLength int                `json:"target_length"`
	FormatMode   brief.FormatMode   `json:"format_mode"`
	Results      []GenerationResult `json:"results"`
}

func (r *Run) ByProvider() map[string]GenerationResult {
	out := make(map[string]GenerationResult, len(r.Results))
	for _, res := range r.Results {
		out[res.Provider] = res
	}
	return out
}

func (r *Run) Failures() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed() {
			n++
		}
	}
	return n
}

var labels = map[string]string{
	"openai":    "OpenAI",
	"anthropic": "Claude",
	"gemini":    "Gemini",
}

// Label is the display name for a provider.
func Label(provider string) string {
	if l, ok := labels[provider]; ok {
		return l
	}
	return provider
}
