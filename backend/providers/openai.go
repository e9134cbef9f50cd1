package providers

import (
	"context"
	"errors"
	"io"
	"iter"

	gptLib "github.com/sashabaranov/go-openai"

	"talkie/server/backend/config"
)

// OpenAIClient serves chat, transcription, speech and image generation.
type OpenAIClient struct {
	client *gptLib.Client
	cfg    config.OpenAIConfig
}

// NewOpenAIClient creates a client for the OpenAI API, or for any
// OpenAI-compatible endpoint when cfg.BaseURL is set.
func NewOpenAIClient(cfg config.OpenAIConfig) *OpenAIClient {
	c := gptLib.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{client: gptLib.NewClientWithConfig(c), cfg: cfg}
}

func (oc *OpenAIClient) request(model, system, user string) gptLib.ChatCompletionRequest {
	return gptLib.ChatCompletionRequest{
		Model:     model,
		MaxTokens: oc.cfg.MaxTokens,
		Messages: []gptLib.ChatCompletionMessage{
			{Role: gptLib.ChatMessageRoleSystem, Content: system},
			{Role: gptLib.ChatMessageRoleUser, Content: user},
		},
	}
}

// Complete sends one chat request and returns the first choice.
func (oc *OpenAIClient) Complete(ctx context.Context, model, system, user string) (string, error) {
	resp, err := oc.client.CreateChatCompletion(ctx, oc.request(model, system, user))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream yields the content deltas of a streamed chat completion.
func (oc *OpenAIClient) Stream(ctx context.Context, model, system, user string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		req := oc.request(model, system, user)
		req.Stream = true
		stream, err := oc.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			yield("", err)
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if chunk := resp.Choices[0].Delta.Content; chunk != "" {
				if !yield(chunk, nil) {
					return
				}
			}
		}
	}
}

// Transcribe uploads the audio file at path and returns its text.
func (oc *OpenAIClient) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := oc.client.CreateTranscription(ctx, gptLib.AudioRequest{
		Model:    oc.cfg.TranscriptionModel,
		FilePath: path,
		Format:   gptLib.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return "", &UpstreamError{Provider: OpenAI, Op: "transcribe", Err: err}
	}
	return resp.Text, nil
}

// Speech synthesizes text as mp3. The caller closes the returned reader.
func (oc *OpenAIClient) Speech(ctx context.Context, text string) (io.ReadCloser, error) {
	resp, err := oc.client.CreateSpeech(ctx, gptLib.CreateSpeechRequest{
		Model:          gptLib.SpeechModel(oc.cfg.SpeechModel),
		Input:          text,
		Voice:          gptLib.SpeechVoice(oc.cfg.Voice),
		ResponseFormat: gptLib.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, &UpstreamError{Provider: OpenAI, Op: "speech", Err: err}
	}
	return resp, nil
}

// Image generates one picture for prompt and returns its URL.
func (oc *OpenAIClient) Image(ctx context.Context, prompt string) (string, error) {
	resp, err := oc.client.CreateImage(ctx, gptLib.ImageRequest{
		Prompt:         prompt,
		Model:          oc.cfg.ImageModel,
		N:              1,
		Size:           oc.cfg.ImageSize,
		ResponseFormat: gptLib.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", &UpstreamError{Provider: OpenAI, Op: "image", Err: err}
	}
	if len(resp.Data) == 0 {
		return "", &UpstreamError{Provider: OpenAI, Op: "image", Err: ErrEmptyResponse}
	}
	return resp.Data[0].URL, nil
}

var (
	_ Client = (*OpenAIClient)(nil)
	_ Media  = (*OpenAIClient)(nil)
)
