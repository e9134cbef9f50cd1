package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"gorm.io/datatypes"

	"talkie/server/models"
)

// errStopped ends an Ollama callback loop when the consumer stops ranging.
var errStopped = errors.New("stream consumer stopped")

// OllamaClient talks to the Ollama REST API.
type OllamaClient struct {
	api *api.Client
}

// NewOllamaClient points at host, e.g. http://localhost:11434.
func NewOllamaClient(host string, httpClient *http.Client) (*OllamaClient, error) {
	base, err := url.Parse(strings.TrimSuffix(host, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OllamaClient{api: api.NewClient(base, httpClient)}, nil
}

func chatRequest(model, system, user string, stream bool) *api.ChatRequest {
	return &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: &stream,
	}
}

// Complete runs a non-streamed chat.
func (oc *OllamaClient) Complete(ctx context.Context, model, system, user string) (string, error) {
	var out strings.Builder
	err := oc.api.Chat(ctx, chatRequest(model, system, user, false), func(r api.ChatResponse) error {
		out.WriteString(r.Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// Stream yields the message content of each streamed chat response.
func (oc *OllamaClient) Stream(ctx context.Context, model, system, user string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := oc.api.Chat(ctx, chatRequest(model, system, user, true), func(r api.ChatResponse) error {
			if r.Message.Content == "" {
				return nil
			}
			if !yield(r.Message.Content, nil) {
				return errStopped
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield("", err)
		}
	}
}

// ListModels returns the locally available models (/api/tags).
func (oc *OllamaClient) ListModels(ctx context.Context) ([]models.ExternalModel, error) {
	resp, err := oc.api.List(ctx)
	if err != nil {
		return nil, &UpstreamError{Provider: Ollama, Op: "list", Err: err}
	}
	out := make([]models.ExternalModel, 0, len(resp.Models))
	for _, m := range resp.Models {
		em := models.ExternalModel{
			ID:      m.Model,
			Name:    m.Name,
			OwnedBy: string(Ollama),
			Size:    m.Size,
		}
		if raw, err := json.Marshal(m); err == nil {
			em.Raw = datatypes.JSON(raw)
		}
		out = append(out, em)
	}
	return out, nil
}

var (
	_ Client      = (*OllamaClient)(nil)
	_ ModelLister = (*OllamaClient)(nil)
)
