package completions

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"talkie/server/backend/providers"
)

// State is the lifecycle of one relayed exchange.
type State int

const (
	Idle State = iota
	Streaming
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrWrite wraps a failure of the transport while forwarding a chunk.
var ErrWrite = errors.New("forward chunk")

// Request is one completion asked by an authenticated user.
type Request struct {
	UserID   uint
	Context  string
	Message  string
	Model    string
	Provider providers.Provider
}

// Result describes how an exchange ended. ConversationID is zero when
// nothing was persisted.
type Result struct {
	State          State
	ConversationID uint
	Text           string
}

// Chatter is the provider side of the relay.
type Chatter interface {
	Complete(ctx context.Context, p providers.Provider, model, system, user string) (string, error)
	Stream(ctx context.Context, p providers.Provider, model, system, user string) (iter.Seq2[string, error], error)
}

// Relay drives requests through a provider and persists the outcome.
type Relay struct {
	chat           Chatter
	recorder       *Recorder
	persistPartial bool
	logger         *slog.Logger
}

// RelayOption configures a Relay.
type RelayOption func(*Relay)

// WithPersistPartial keeps the text received before a stream failure.
func WithPersistPartial(on bool) RelayOption {
	return func(r *Relay) { r.persistPartial = on }
}

// WithLogger sets the relay logger.
func WithLogger(l *slog.Logger) RelayOption {
	return func(r *Relay) { r.logger = l }
}

// NewRelay builds a Relay.
func NewRelay(chat Chatter, recorder *Recorder, opts ...RelayOption) *Relay {
	r := &Relay{chat: chat, recorder: recorder, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Complete asks for the whole reply at once. It behaves as a stream of a
// single chunk.
func (r *Relay) Complete(ctx context.Context, req Request) (Result, error) {
	text, err := r.chat.Complete(ctx, req.Provider, req.Model, SystemPrompt(req.Context), req.Message)
	if err != nil {
		return r.finish(ctx, req, Failed, "", err)
	}
	return r.finish(ctx, req, Completed, text, nil)
}

// Stream forwards each chunk to emit in arrival order. A provider error or
// an emit error moves the exchange to Failed. Persistence happens only once
// the exchange has reached its terminal state.
func (r *Relay) Stream(ctx context.Context, req Request, emit func(chunk string) error) (Result, error) {
	seq, err := r.chat.Stream(ctx, req.Provider, req.Model, SystemPrompt(req.Context), req.Message)
	if err != nil {
		// dispatch failure: nothing was streamed
		return Result{State: Failed}, err
	}
	r.logger.Debug("stream opened", "user_id", req.UserID, "provider", string(req.Provider), "state", Streaming.String())

	var acc strings.Builder
	for chunk, err := range seq {
		if err != nil {
			return r.finish(ctx, req, Failed, acc.String(), err)
		}
		acc.WriteString(chunk)
		if err := emit(chunk); err != nil {
			return r.finish(ctx, req, Failed, acc.String(), fmt.Errorf("%w: %w", ErrWrite, err))
		}
	}
	return r.finish(ctx, req, Completed, acc.String(), nil)
}

func (r *Relay) finish(ctx context.Context, req Request, state State, text string, cause error) (Result, error) {
	res := Result{State: state, Text: text}
	log := r.logger.With("user_id", req.UserID, "provider", string(req.Provider), "model", req.Model, "state", state.String())

	persist := state == Completed || (r.persistPartial && text != "")
	if !persist {
		log.Warn("completion failed", "error", cause)
		return res, cause
	}

	// the client may already be gone; the write must still land
	id, err := r.recorder.Record(context.WithoutCancel(ctx), req.UserID, req.Message, text)
	if err != nil {
		log.Error("record conversation", "error", err)
		return res, errors.Join(cause, err)
	}
	res.ConversationID = id
	if cause != nil {
		log.Warn("completion failed, partial reply recorded", "conversation_id", id, "error", cause)
		return res, cause
	}
	log.Info("completion recorded", "conversation_id", id, "chars", len(text))
	return res, nil
}
