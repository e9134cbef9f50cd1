package providers

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"
)

type stubClient struct {
	reply  string
	chunks []string
	err    error
}

func (s *stubClient) Complete(ctx context.Context, model, system, user string) (string, error) {
	return s.reply, s.err
}

func (s *stubClient) Stream(ctx context.Context, model, system, user string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, c := range s.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if s.err != nil {
			yield("", s.err)
		}
	}
}

func TestParseProvider(t *testing.T) {
	for in, want := range map[string]Provider{"openai": OpenAI, " Ollama ": Ollama, "ANTHROPIC": Anthropic} {
		got, err := ParseProvider(in)
		if err != nil || got != want {
			t.Errorf("ParseProvider(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseProvider("mistral"); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestAdapterDispatchErrors(t *testing.T) {
	a := NewAdapter(WithClient(OpenAI, &stubClient{reply: "ok"}))

	if _, err := a.Complete(context.Background(), Provider("mistral"), "m", "s", "u"); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("unknown provider: got %v", err)
	}
	if _, err := a.Stream(context.Background(), Ollama, "m", "s", "u"); !errors.Is(err, ErrProviderNotConfigured) {
		t.Errorf("unwired provider: got %v", err)
	}
	if !a.Configured(OpenAI) || a.Configured(Anthropic) {
		t.Error("Configured reports wrong wiring")
	}
}

func TestAdapterWrapsUpstreamErrors(t *testing.T) {
	boom := errors.New("boom")
	a := NewAdapter(WithClient(Anthropic, &stubClient{chunks: []string{"a"}, err: boom}))

	_, err := a.Complete(context.Background(), Anthropic, "m", "s", "u")
	if !IsUpstream(err) || !errors.Is(err, boom) {
		t.Fatalf("Complete error = %v", err)
	}

	seq, err := a.Stream(context.Background(), Anthropic, "m", "s", "u")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	var streamErr error
	for chunk, err := range seq {
		if err != nil {
			streamErr = err
			break
		}
		got = append(got, chunk)
	}
	if !slices.Equal(got, []string{"a"}) {
		t.Errorf("chunks = %v", got)
	}
	var ue *UpstreamError
	if !errors.As(streamErr, &ue) || ue.Op != "stream" || ue.Provider != Anthropic {
		t.Errorf("stream error = %#v", streamErr)
	}
}

func TestAdapterStreamOrder(t *testing.T) {
	want := []string{"Hel", "lo", " there"}
	a := NewAdapter(WithClient(Ollama, &stubClient{chunks: want}))

	seq, err := a.Stream(context.Background(), Ollama, "m", "s", "u")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for chunk, err := range seq {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, chunk)
	}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
