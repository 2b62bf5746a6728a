// Package llm wraps the text-completion and embedding providers behind small
// interfaces so the pipeline components never touch a vendor SDK directly.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider identifies a supported LLM backend. The set is closed: the
// configuration value is resolved into a Provider exactly once at startup,
// and an unknown name is a fatal initialization error.
type Provider string

const (
	ProviderGemini Provider = "gemini"
)

// ErrUnsupportedProvider is returned when the configuration names a provider
// this service does not implement.
var ErrUnsupportedProvider = errors.New("unsupported llm provider")

// ParseProvider resolves a configuration string into a Provider.
func ParseProvider(name string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(name))) {
	case ProviderGemini:
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
	}
}

// Completer issues a single blocking text-completion round trip.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
