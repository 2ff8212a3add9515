package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/docchat-app/docchat/internal/api"
	"github.com/docchat-app/docchat/internal/config"
)

// fakeBackend records which endpoint each bot id landed on.
type fakeBackend struct {
	calls  []string
	result api.ChatResult
	err    error
}

func (f *fakeBackend) ChatWithDocuments(ctx context.Context, botID, q string) (api.ChatResult, error) {
	f.calls = append(f.calls, "documents")
	return f.result, f.err
}

func (f *fakeBackend) ChatWithCustomModel(ctx context.Context, botID, q string) (api.ChatResult, error) {
	f.calls = append(f.calls, "custom_model")
	return f.result, f.err
}

func (f *fakeBackend) ChatWithMyLLM(ctx context.Context, botID, q string) (api.ChatResult, error) {
	f.calls = append(f.calls, "my_llm")
	return f.result, f.err
}

func TestDispatchTable(t *testing.T) {
	cases := []struct {
		botID string
		want  string
	}{
		{"tc", "custom_model"},
		{"chung", "my_llm"},
		{"doc1", "documents"},
		{"anything-else", "documents"},
		{"custom", "documents"}, // only the exact ids are special-cased
	}
	for _, c := range cases {
		f := &fakeBackend{result: api.DocumentAnswer{OutputText: "x"}}
		if _, err := Dispatch(context.Background(), f, c.botID, "q"); err != nil {
			t.Fatalf("Dispatch(%q): %v", c.botID, err)
		}
		if len(f.calls) != 1 || f.calls[0] != c.want {
			t.Errorf("Dispatch(%q) hit %v, want %s", c.botID, f.calls, c.want)
		}
	}
}

func newSession(f *fakeBackend, botID string) (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	s := &Session{
		Persona: config.Chatbot{ID: 1, BotID: botID, Name: "Khoa CNTT"},
		Backend: f,
		Out:     &out,
		Now:     func() time.Time { return time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC) },
	}
	return s, &out
}

func TestSendEmptyIsNoOp(t *testing.T) {
	f := &fakeBackend{result: api.DocumentAnswer{OutputText: "x"}}
	s, out := newSession(f, "doc1")

	if err := s.Send(context.Background(), "   "); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("empty input reached the backend: %v", f.calls)
	}
	if out.Len() != 0 {
		t.Errorf("empty input rendered output: %q", out.String())
	}
}

func TestSendNoPersonaIsNoOp(t *testing.T) {
	f := &fakeBackend{result: api.DocumentAnswer{OutputText: "x"}}
	s, _ := newSession(f, "")
	if err := s.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("missing persona reached the backend: %v", f.calls)
	}
}

func TestSendRendersAnswer(t *testing.T) {
	f := &fakeBackend{result: api.DocumentAnswer{OutputText: "Câu trả lời"}}
	s, out := newSession(f, "doc1")

	if err := s.Send(context.Background(), "câu hỏi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "[10:30] Bạn: câu hỏi") {
		t.Errorf("missing user bubble in %q", got)
	}
	if !strings.Contains(got, "[10:30] Khoa CNTT: Câu trả lời") {
		t.Errorf("missing bot bubble in %q", got)
	}
}

func TestSendGenericErrorKeepsSession(t *testing.T) {
	f := &fakeBackend{err: &api.ChatError{Message: "bot unavailable"}}
	s, out := newSession(f, "doc1")

	var signedOut bool
	s.SignOut = func(context.Context) error { signedOut = true; return nil }

	if err := s.Send(context.Background(), "q"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if signedOut {
		t.Error("generic error must not force sign-out")
	}
	if !strings.Contains(out.String(), FailureMessage) {
		t.Errorf("missing failure bubble in %q", out.String())
	}
}

func TestSendTokenErrorForcesSignOut(t *testing.T) {
	for _, text := range []string{"Token expired", "invalid token"} {
		f := &fakeBackend{err: &api.ChatError{Message: text}}
		s, out := newSession(f, "doc1")

		var signedOut bool
		s.SignOut = func(context.Context) error { signedOut = true; return nil }

		err := s.Send(context.Background(), "q")
		if err != ErrSignedOut {
			t.Errorf("%q: err = %v, want ErrSignedOut", text, err)
		}
		if !signedOut {
			t.Errorf("%q: sign-out not triggered", text)
		}
		if strings.Contains(out.String(), FailureMessage) {
			t.Errorf("%q: failure bubble rendered after forced sign-out", text)
		}
	}
}

func TestTypingIndicatorStoppedExactlyOnce(t *testing.T) {
	cases := []struct {
		name    string
		backend *fakeBackend
	}{
		{"success", &fakeBackend{result: api.DocumentAnswer{OutputText: "ok"}}},
		{"failure", &fakeBackend{err: &api.ChatError{Message: "boom"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newSession(tc.backend, "doc1")

			var stops int
			s.Typing = func() func() {
				return func() { stops++ }
			}
			if err := s.Send(context.Background(), "q"); err != nil {
				t.Fatalf("Send: %v", err)
			}
			if stops != 1 {
				t.Errorf("typing indicator stopped %d times, want 1", stops)
			}
		})
	}
}

// The terminal indicator's stop closes a channel, so a second
// invocation would panic. Send must tolerate such a stop on every
// outcome.
func TestTypingStopMayCloseChannel(t *testing.T) {
	cases := []struct {
		name    string
		backend *fakeBackend
	}{
		{"success", &fakeBackend{result: api.DocumentAnswer{OutputText: "ok"}}},
		{"failure", &fakeBackend{err: &api.ChatError{Message: "boom"}}},
		{"token rejection", &fakeBackend{err: &api.ChatError{Message: "Token expired"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newSession(tc.backend, "doc1")
			s.SignOut = func(context.Context) error { return nil }
			s.Typing = func() func() {
				done := make(chan struct{})
				return func() { close(done) }
			}

			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Send panicked: %v", r)
				}
			}()
			s.Send(context.Background(), "q")
		})
	}
}

func TestGreeting(t *testing.T) {
	f := &fakeBackend{}
	s, out := newSession(f, "doc1")
	s.Greet()
	want := "Xin chào, tôi thuộc Khoa CNTT, tôi có thể giúp gì cho bạn?"
	if !strings.Contains(out.String(), want) {
		t.Errorf("greeting = %q, want contains %q", out.String(), want)
	}
}

// TestEndToEndDocumentChat exercises the full path through the real
// API client: one request to the document endpoint with the exact
// payload, and the answer rendered as a bot bubble.
func TestEndToEndDocumentChat(t *testing.T) {
	var requests int
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/chat_with_documents" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&payload)
		fmt.Fprint(w, `{"answer":{"output_text":"Hi there"}}`)
	}))
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, srv.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}))
	var out bytes.Buffer
	s := &Session{
		Persona: config.Chatbot{ID: 1, BotID: "doc1", Name: "Tài liệu"},
		Backend: client,
		Out:     &out,
	}

	if err := s.Send(context.Background(), "Hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}
	if payload["bot_id"] != "doc1" || payload["question"] != "Hello" {
		t.Errorf("payload = %v", payload)
	}
	if !strings.Contains(out.String(), "Hi there") {
		t.Errorf("bot bubble missing from %q", out.String())
	}
}
