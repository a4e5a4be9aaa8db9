// Package length converts video durations into script length targets and
// measures generated scripts against them. Every provider shares the same
// Measurer so the refine decision never depends on which backend wrote the
// text.
package length

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// UnitsPerSecond is the speaking rate used to size scripts.
const UnitsPerSecond = 8

const (
	MeasureRunes  = "runes"
	MeasureTokens = "tokens"

	DefaultEncoding = "cl100k_base"
)

// TargetLength returns the length a script for durationSec seconds should reach.
func TargetLength(durationSec int) int {
	return durationSec * UnitsPerSecond
}

// PerMinute is the number of units spoken in sixty seconds of runtime.
func PerMinute() int {
	return TargetLength(60)
}

type Measurer interface {
	Measure(text string) int
}

// RuneMeasurer counts Unicode code points, which matches how Japanese copy
// is sized by character count.
type RuneMeasurer struct{}

func (RuneMeasurer) Measure(text string) int {
	return utf8.RuneCountInString(text)
}

type TokenMeasurer struct {
	encoding *tiktoken.Tiktoken
}

func NewTokenMeasurer(encoding string) (*TokenMeasurer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &TokenMeasurer{encoding: enc}, nil
}

func (m *TokenMeasurer) Measure(text string) int {
	return len(m.encoding.Encode(text, nil, nil))
}

// New returns the measurer named by kind.
func New(kind, encoding string) (Measurer, error) {
	switch kind {
	case "", MeasureRunes:
		return RuneMeasurer{}, nil
	case MeasureTokens:
		return NewTokenMeasurer(encoding)
	default:
		return nil, fmt.Errorf("unknown measure %q", kind)
	}
}
