package llm

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned by a Backend whose answer stopped at the output
// token ceiling instead of finishing.
var ErrTruncated = errors.New("output truncated at token limit")

// ProviderError is any failure reported by a specific backend.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// RefinementError is a ProviderError raised by the refine call. errors.As
// matches it against *ProviderError as well.
type RefinementError struct {
	*ProviderError
}

func (e *RefinementError) Error() string {
	return "refine " + e.ProviderError.Error()
}

func (e *RefinementError) Unwrap() error {
	return e.ProviderError
}
