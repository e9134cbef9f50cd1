// Package providers adapts the upstream model vendors behind one
// Complete/Stream contract.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"talkie/server/models"
)

// Provider names an upstream vendor. The set is closed.
type Provider string

const (
	OpenAI    Provider = "openai"
	Ollama    Provider = "ollama"
	Anthropic Provider = "anthropic"
)

var (
	// ErrUnsupportedProvider is returned for any name outside the closed set.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrProviderNotConfigured means the provider is known but no client was wired.
	ErrProviderNotConfigured = errors.New("provider not configured")
	// ErrEmptyResponse means the upstream answered without any choice or content.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// ParseProvider maps a request value onto the closed provider set.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case OpenAI, Ollama, Anthropic:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, s)
	}
}

// Client is one vendor's chat API.
type Client interface {
	// Complete returns the whole assistant reply.
	Complete(ctx context.Context, model, system, user string) (string, error)
	// Stream yields reply chunks in upstream order. A non-nil error ends the
	// sequence. The sequence is single use.
	Stream(ctx context.Context, model, system, user string) iter.Seq2[string, error]
}

// Media covers the audio and image calls, served by OpenAI only.
type Media interface {
	Transcribe(ctx context.Context, path string) (string, error)
	Speech(ctx context.Context, text string) (io.ReadCloser, error)
	Image(ctx context.Context, prompt string) (string, error)
}

// ModelLister reports the models a provider can serve.
type ModelLister interface {
	ListModels(ctx context.Context) ([]models.ExternalModel, error)
}

// UpstreamError is the single error type for failed provider calls.
type UpstreamError struct {
	Provider Provider
	Op       string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err came from a provider call.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
