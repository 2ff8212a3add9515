// Package chat drives an interactive persona chat: it routes each
// question to the right backend endpoint, renders user and bot
// bubbles, and enforces the token-rejection sign-out rule.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/docchat-app/docchat/internal/api"
	"github.com/docchat-app/docchat/internal/config"
	"github.com/docchat-app/docchat/internal/util"
)

// Backend is the subset of the API client a session needs.
type Backend interface {
	ChatWithDocuments(ctx context.Context, botID, question string) (api.ChatResult, error)
	ChatWithCustomModel(ctx context.Context, botID, question string) (api.ChatResult, error)
	ChatWithMyLLM(ctx context.Context, botID, question string) (api.ChatResult, error)
}

// The two bot ids with dedicated model endpoints. Every other id chats
// over the uploaded documents.
const (
	BotCustomModel = "tc"
	BotMyLLM       = "chung"
)

// Dispatch routes one question by persona bot id and returns the
// endpoint's tagged answer.
func Dispatch(ctx context.Context, b Backend, botID, question string) (api.ChatResult, error) {
	switch botID {
	case BotCustomModel:
		return b.ChatWithCustomModel(ctx, botID, question)
	case BotMyLLM:
		return b.ChatWithMyLLM(ctx, botID, question)
	default:
		return b.ChatWithDocuments(ctx, botID, question)
	}
}

// FailureMessage is the generic bot bubble shown for any chat failure.
const FailureMessage = "Xin lỗi, có lỗi xảy ra. Vui lòng thử lại."

// Greeting returns the opening bot bubble for a persona.
func Greeting(name string) string {
	return fmt.Sprintf("Xin chào, tôi thuộc %s, tôi có thể giúp gì cho bạn?", name)
}

// ErrSignedOut means a response's error text named a token problem and
// the session was force-ended.
var ErrSignedOut = errors.New("chat: signed out after token rejection")

// Session is one chat conversation with a persona.
type Session struct {
	Persona config.Chatbot
	Backend Backend
	Out     io.Writer

	// SignOut is invoked when a response reports a token problem.
	SignOut func(context.Context) error
	// Typing shows a typing indicator and returns its stop function.
	// Nil disables the indicator (tests, non-interactive output).
	Typing func() func()
	// Now supplies bubble timestamps; nil means time.Now.
	Now func() time.Time
}

// Greet renders the persona's opening bubble.
func (s *Session) Greet() {
	s.botBubble(Greeting(s.Persona.Name))
}

// Send handles one user message end to end. Empty input and a missing
// persona are no-ops. A token-rejection error forces sign-out and
// returns ErrSignedOut; every other failure renders the generic
// failure bubble and keeps the session alive. The typing indicator is
// always cleared, whatever the outcome.
func (s *Session) Send(ctx context.Context, text string) error {
	msg := strings.TrimSpace(text)
	if msg == "" || s.Persona.BotID == "" {
		return nil
	}

	s.userBubble(msg)

	stop := func() {}
	if s.Typing != nil {
		stop = s.Typing()
	}
	// The indicator must be gone before any bubble renders, and stop
	// must run exactly once even when Dispatch panics.
	var once sync.Once
	stopOnce := func() { once.Do(stop) }
	defer stopOnce()

	result, err := Dispatch(ctx, s.Backend, s.Persona.BotID, msg)
	stopOnce()

	if err != nil {
		var ce *api.ChatError
		if errors.As(err, &ce) && ce.TokenRejected() {
			if s.SignOut != nil {
				s.SignOut(ctx)
			}
			return ErrSignedOut
		}
		s.botBubble(FailureMessage)
		return nil
	}

	s.botBubble(result.Text())
	return nil
}

func (s *Session) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Session) botBubble(text string) {
	name := s.Persona.Name
	if name == "" {
		name = "Bot"
	}
	fmt.Fprintf(s.Out, "[%s] %s: %s\n", util.FormatTime(s.now()), name, text)
}

func (s *Session) userBubble(text string) {
	fmt.Fprintf(s.Out, "[%s] Bạn: %s\n", util.FormatTime(s.now()), text)
}
