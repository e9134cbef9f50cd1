package providers

import (
	"context"
	"fmt"
	"iter"
)

// Adapter dispatches chat calls to the client of the requested provider.
type Adapter struct {
	openai    Client
	ollama    Client
	anthropic Client
}

// Option wires a client into the Adapter.
type Option func(*Adapter)

// WithClient registers c for p. Unknown providers are ignored.
func WithClient(p Provider, c Client) Option {
	return func(a *Adapter) {
		switch p {
		case OpenAI:
			a.openai = c
		case Ollama:
			a.ollama = c
		case Anthropic:
			a.anthropic = c
		}
	}
}

// NewAdapter builds an Adapter from the given clients.
func NewAdapter(opts ...Option) *Adapter {
	a := &Adapter{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) client(p Provider) (Client, error) {
	var c Client
	switch p {
	case OpenAI:
		c = a.openai
	case Ollama:
		c = a.ollama
	case Anthropic:
		c = a.anthropic
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, p)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, p)
	}
	return c, nil
}

// Configured reports whether a client is wired for p.
func (a *Adapter) Configured(p Provider) bool {
	_, err := a.client(p)
	return err == nil
}

// Complete asks p for a full reply.
func (a *Adapter) Complete(ctx context.Context, p Provider, model, system, user string) (string, error) {
	c, err := a.client(p)
	if err != nil {
		return "", err
	}
	text, err := c.Complete(ctx, model, system, user)
	if err != nil {
		return "", &UpstreamError{Provider: p, Op: "complete", Err: err}
	}
	return text, nil
}

// Stream opens a chunk sequence from p. Dispatch problems are returned
// before any upstream call; upstream failures arrive through the sequence
// as *UpstreamError.
func (a *Adapter) Stream(ctx context.Context, p Provider, model, system, user string) (iter.Seq2[string, error], error) {
	c, err := a.client(p)
	if err != nil {
		return nil, err
	}
	upstream := c.Stream(ctx, model, system, user)
	return func(yield func(string, error) bool) {
		for chunk, err := range upstream {
			if err != nil {
				yield("", &UpstreamError{Provider: p, Op: "stream", Err: err})
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}, nil
}
