package web

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/docchat-app/docchat/internal/api"
	"github.com/docchat-app/docchat/internal/chat"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type    string `json:"type"` // "message"
	Content string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type           string `json:"type"` // "greeting", "response", "error" or "signed_out"
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
	HTML           string `json:"html,omitempty"`
}

// handleWebSocket runs one chat conversation per connection. Each
// message is routed by the active persona's bot id; the answer is sent
// back both raw and rendered to HTML.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	conversationID := uuid.NewString()

	index, err := s.store.ChatFaceIndex()
	if err != nil {
		s.send(conn, chatResponse{Type: "error", ConversationID: conversationID, Content: err.Error()})
		return
	}
	persona := s.appCfg.PersonaAt(index)

	greeting := chat.Greeting(persona.Name)
	s.send(conn, chatResponse{
		Type:           "greeting",
		ConversationID: conversationID,
		Content:        greeting,
		HTML:           s.renderMarkdown(greeting),
	})

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("web: websocket read: %v", err)
			}
			return
		}

		if req.Type != "message" {
			s.send(conn, chatResponse{Type: "error", ConversationID: conversationID, Content: "unknown message type: " + req.Type})
			continue
		}
		question := strings.TrimSpace(req.Content)
		if question == "" {
			continue
		}

		result, err := chat.Dispatch(r.Context(), s.backend, persona.BotID, question)
		if err != nil {
			var ce *api.ChatError
			if errors.As(err, &ce) && ce.TokenRejected() {
				s.gateway.SignOut(r.Context())
				s.send(conn, chatResponse{Type: "signed_out", ConversationID: conversationID})
				return
			}
			s.send(conn, chatResponse{
				Type:           "response",
				ConversationID: conversationID,
				Content:        chat.FailureMessage,
				HTML:           s.renderMarkdown(chat.FailureMessage),
			})
			continue
		}

		s.send(conn, chatResponse{
			Type:           "response",
			ConversationID: conversationID,
			Content:        result.Text(),
			HTML:           s.renderMarkdown(result.Text()),
		})
	}
}

func (s *Server) renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(text), &buf); err != nil {
		return text
	}
	return buf.String()
}

func (s *Server) send(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("web: websocket write: %v", err)
	}
}
