// Package tokens provides token counting for cross-talk budget enforcement.
// A tiktoken-backed counter is preferred; a character-ratio estimator covers
// models without a known encoding and environments where the BPE data cannot
// be fetched.
package tokens

import (
	"sync/atomic"
)

// Counter counts tokens in a text.
type Counter interface {
	Count(text string) (int, error)
	Name() string
}

// NewCounter returns the best available counter for the model: tiktoken when
// the encoding can be initialized, falling back to the estimator on the first
// failure. The fallback latches, so a broken tiktoken setup is probed once.
func NewCounter(model string) Counter {
	return &fallbackCounter{
		primary:  NewTiktoken(model),
		fallback: NewEstimator(),
	}
}

type fallbackCounter struct {
	primary  Counter
	fallback Counter
	latched  atomic.Bool
}

func (f *fallbackCounter) Count(text string) (int, error) {
	if !f.latched.Load() {
		n, err := f.primary.Count(text)
		if err == nil {
			return n, nil
		}
		f.latched.Store(true)
	}
	return f.fallback.Count(text)
}

func (f *fallbackCounter) Name() string {
	if f.latched.Load() {
		return f.fallback.Name()
	}
	return f.primary.Name()
}
