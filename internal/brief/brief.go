package brief

import (
	"fmt"
	"math"
	"strings"
)

const (
	MinDuration    = 30
	MaxDuration    = 300
	DurationStep   = 30
	MinVariations  = 1
	MaxVariations  = 5
	MinTemperature = 0.0
	MaxTemperature = 1.5
)

// FormatMode selects how each line of a generated script is laid out.
type FormatMode string

const (
	SerifOnly      FormatMode = "serif_only"
	WithTime       FormatMode = "with_time"
	WithTimeAndDir FormatMode = "with_time_and_dir"
)

// DefaultTones are the tones offered by the interactive form.
var DefaultTones = []string{"コミカル", "サイエンス", "ASMR", "ドラマ", "インタビュー"}

// Brief is the creative input for one generation request. It is treated as
// immutable once handed to the orchestrator.
type Brief struct {
	ProductName   string   `json:"product_name"`
	Problem       string   `json:"problem"`
	Promise       string   `json:"promise"`
	Tones         []string `json:"tones"`
	AudienceAge   string   `json:"audience_age"`
	DurationSec   int      `json:"duration_sec"`
	OfferPrice    string   `json:"offer_price"`
	NVariations   int      `json:"n_variations"`
	Temperature   float64  `json:"temperature"`
	WithTiming    bool     `json:"with_timing"`
	WithDirection bool     `json:"with_direction"`
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid brief: %s %s", e.Field, e.Reason)
}

// FormatMode resolves the line format. Direction without timing is not a
// representable mode and falls back to SerifOnly.
func (b Brief) FormatMode() FormatMode {
	switch {
	case b.WithTiming && b.WithDirection:
		return WithTimeAndDir
	case b.WithTiming:
		return WithTime
	default:
		return SerifOnly
	}
}

// ToneList joins the tones for display inside a prompt.
func (b Brief) ToneList() string {
	return strings.Join(b.Tones, ", ")
}

func (b Brief) Validate() error {
	text := []struct {
		field string
		value string
	}{
		{"product_name", b.ProductName},
		{"problem", b.Problem},
		{"promise", b.Promise},
		{"audience_age", b.AudienceAge},
		{"offer_price", b.OfferPrice},
	}
	for _, f := range text {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Reason: "is required"}
		}
	}

	if len(b.Tones) == 0 {
		return &ValidationError{Field: "tones", Reason: "must contain at least one tone"}
	}
	for _, tone := range b.Tones {
		if strings.TrimSpace(tone) == "" {
			return &ValidationError{Field: "tones", Reason: "must not contain empty values"}
		}
	}

	if b.DurationSec < MinDuration || b.DurationSec > MaxDuration || b.DurationSec%DurationStep != 0 {
		return &ValidationError{
			Field:  "duration_sec",
			Reason: fmt.Sprintf("must be a multiple of %d between %d and %d", DurationStep, MinDuration, MaxDuration),
		}
	}

	if b.NVariations < MinVariations || b.NVariations > MaxVariations {
		return &ValidationError{
			Field:  "n_variations",
			Reason: fmt.Sprintf("must be between %d and %d", MinVariations, MaxVariations),
		}
	}

	if !ValidTemperature(b.Temperature) {
		return &ValidationError{
			Field:  "temperature",
			Reason: fmt.Sprintf("must be between %.1f and %.1f", MinTemperature, MaxTemperature),
		}
	}

	return nil
}

// ValidTemperature reports whether t is a number within the accepted range.
func ValidTemperature(t float64) bool {
	return !math.IsNaN(t) && t >= MinTemperature && t <= MaxTemperature
}

// Durations lists every selectable duration in seconds.
func Durations() []int {
	var out []int
	for d := MinDuration; d <= MaxDuration; d += DurationStep {
		out = append(out, d)
	}
	return out
}

// Sample is the brief the original form opens with.
func Sample() Brief {
	return Brief{
		ProductName: "雲ごこちプレミアムピロー",
		Problem:     "首こりで熟睡できない",
		Promise:     "ホテル級の深睡眠",
		Tones:       []string{"コミカル"},
		AudienceAge: "30-50",
		DurationSec: 60,
		OfferPrice:  "5,900円",
		NVariations: 1,
		Temperature: 0.9,
	}
}
