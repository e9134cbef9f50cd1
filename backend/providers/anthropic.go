package providers

import (
	"context"
	"iter"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"talkie/server/backend/config"
)

// AnthropicClient talks to the Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	maxTokens int64
}

// NewAnthropicClient builds a client without SDK retries; upstream failures
// surface on the first attempt.
func NewAnthropicClient(cfg config.AnthropicConfig) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...), maxTokens: maxTokens}
}

func (ac *AnthropicClient) params(model, system, user string) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: ac.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
}

// Complete concatenates the text blocks of the reply.
func (ac *AnthropicClient) Complete(ctx context.Context, model, system, user string) (string, error) {
	msg, err := ac.client.Messages.New(ctx, ac.params(model, system, user))
	if err != nil {
		return "", err
	}
	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	// a reply without text blocks is an empty answer, as on the stream path
	return out.String(), nil
}

// Stream yields text deltas; tool and thinking deltas are skipped.
func (ac *AnthropicClient) Stream(ctx context.Context, model, system, user string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream := ac.client.Messages.NewStreaming(ctx, ac.params(model, system, user))
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			delta, ok := ev.Delta.AsAny().(anthropic.TextDelta)
			if !ok || delta.Text == "" {
				continue
			}
			if !yield(delta.Text, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield("", err)
		}
	}
}

var _ Client = (*AnthropicClient)(nil)
