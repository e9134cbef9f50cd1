package socket

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"talkie/server/backend/auth"
	"talkie/server/backend/completions"
	"talkie/server/backend/constants"
	"talkie/server/backend/providers"
	"talkie/server/database"
	"talkie/server/models"
)

type fakeChat struct {
	chunks []string
	err    error
}

func (f *fakeChat) Complete(ctx context.Context, p providers.Provider, model, system, user string) (string, error) {
	return strings.Join(f.chunks, ""), f.err
}

func (f *fakeChat) Stream(ctx context.Context, p providers.Provider, model, system, user string) (iter.Seq2[string, error], error) {
	return func(yield func(string, error) bool) {
		for _, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if f.err != nil {
			yield("", &providers.UpstreamError{Provider: p, Op: "stream", Err: f.err})
		}
	}, nil
}

type fixture struct {
	srv   *httptest.Server
	db    *gorm.DB
	token string
	hub   *Hub
}

func newFixture(t *testing.T, chat *fakeChat) *fixture {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "ws.db"), logger.Silent)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}

	svc := auth.NewService(db, 0, nil)
	ctx := context.Background()
	if _, err := svc.Signup(ctx, "alice", "alice@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	tok, err := svc.Login(ctx, "alice@example.com", "pw", false)
	if err != nil {
		t.Fatal(err)
	}

	relay := completions.NewRelay(chat, completions.NewRecorder(db))
	hub := NewHub(svc, relay, models.ModelRef{Name: "gpt-4o-mini", Provider: "openai"}, nil)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, db: db, token: tok.Token, hub: hub}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws?token=" + f.token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, _ := json.Marshal(data)
	if err := conn.WriteJSON(Envelope{Event: event, Data: raw}); err != nil {
		t.Fatal(err)
	}
}

func read(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatal(err)
	}
	var data map[string]any
	_ = json.Unmarshal(env.Data, &data)
	return env.Event, data
}

func TestRejectsMissingToken(t *testing.T) {
	f := newFixture(t, &fakeChat{})
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("response %+v", resp)
	}
}

func TestStartAndStreamedMessage(t *testing.T) {
	f := newFixture(t, &fakeChat{chunks: []string{"Hel", "lo"}})
	conn := f.dial(t)

	send(t, conn, constants.EventStart, map[string]any{})
	event, data := read(t, conn)
	if event != constants.EventStarted || data["sid"] == "" {
		t.Fatalf("got %s %v", event, data)
	}
	if f.hub.Count() != 1 {
		t.Errorf("Count = %d", f.hub.Count())
	}

	send(t, conn, constants.EventMessage, MessagePayload{Message: "hi", Context: ""})
	var chunks []string
	for {
		event, data = read(t, conn)
		if event != constants.EventResponse {
			break
		}
		chunks = append(chunks, data["chunk"].(string))
	}
	if strings.Join(chunks, "") != "Hello" {
		t.Errorf("chunks %q", chunks)
	}
	if event != constants.EventResponseFinished || data["status"] != "ok" || data["ai_response"] != "Hello" {
		t.Fatalf("got %s %v", event, data)
	}

	var msgs int64
	f.db.Model(&models.Message{}).Count(&msgs)
	if msgs != 2 {
		t.Errorf("persisted %d messages", msgs)
	}
}

func TestStreamFailureSendsResponseError(t *testing.T) {
	f := newFixture(t, &fakeChat{chunks: []string{"par"}, err: errors.New("upstream closed")})
	conn := f.dial(t)

	send(t, conn, constants.EventMessage, MessagePayload{Message: "hi", Model: &models.ModelRef{Name: "llama3", Provider: "ollama"}})
	event, _ := read(t, conn)
	if event != constants.EventResponse {
		t.Fatalf("first event %s", event)
	}
	event, data := read(t, conn)
	if event != constants.EventResponseError || data["status"] != "error" {
		t.Fatalf("got %s %v", event, data)
	}

	var convs int64
	f.db.Model(&models.Conversation{}).Count(&convs)
	if convs != 0 {
		t.Errorf("persisted %d conversations", convs)
	}
}

func TestUnknownProviderSendsResponseError(t *testing.T) {
	f := newFixture(t, &fakeChat{chunks: []string{"x"}})
	conn := f.dial(t)

	send(t, conn, constants.EventMessage, MessagePayload{Message: "hi", Model: &models.ModelRef{Name: "m", Provider: "mistral"}})
	event, data := read(t, conn)
	if event != constants.EventResponseError || !strings.Contains(data["error"].(string), "unsupported provider") {
		t.Fatalf("got %s %v", event, data)
	}
}
