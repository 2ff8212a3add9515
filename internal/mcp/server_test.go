package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docchat-app/docchat/internal/docapi"
)

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"ask_documents", askDocumentsTool, "ask_documents"},
		{"upload_document", uploadDocumentTool, "upload_document"},
		{"chat_history", chatHistoryTool, "chat_history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	docs := docapi.New("http://localhost:8000/api/v1")
	srv := NewServer(docs)

	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.docs != docs {
		t.Error("document client not set correctly")
	}
}

func TestHandleAskDocuments(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer":"42","context_used":true,"chunks_count":3}`))
	}))
	defer backend.Close()

	srv := NewServer(docapi.New(backend.URL))
	ctx := context.Background()

	t.Run("answer with context", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"question": "what is the answer?"}

		result, err := srv.handleAskDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		got := textContent(t, result)
		if got != "42\n\n(answered from 3 document chunks)" {
			t.Errorf("unexpected text %q", got)
		}
	})

	t.Run("missing question", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleAskDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing question")
		}
	})
}

func TestHandleAskDocumentsServiceError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"index unavailable"}`))
	}))
	defer backend.Close()

	srv := NewServer(docapi.New(backend.URL))

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"question": "anything"}

	result, err := srv.handleAskDocuments(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error")
	}
}

func TestHandleUploadDocument(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"doc_id":"d1","file_url":"/files/d1","chunks_count":5,"status":"processed","message":"ok"}`))
	}))
	defer backend.Close()

	srv := NewServer(docapi.New(backend.URL))
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("accepted file", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"path": path}

		result, err := srv.handleUploadDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"path": "script.sh"}

		result, err := srv.handleUploadDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected tool error")
		}
		if got := textContent(t, result); got != docapi.UnsupportedFileMessage {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleUploadDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing path")
		}
	})
}

func TestHandleChatHistory(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "2" {
			t.Errorf("limit = %q, want 2", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"history":[{"id":"1","question":"Q1","answer":"A1","created_at":"2024-01-01"},{"id":"2","question":"Q2","answer":"A2","created_at":"2024-01-02"}],"count":2}`))
	}))
	defer backend.Close()

	srv := NewServer(docapi.New(backend.URL))

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"limit": 2}

	result, err := srv.handleChatHistory(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	got := textContent(t, result)
	if !strings.Contains(got, "Q1") || !strings.Contains(got, "A2") {
		t.Errorf("unexpected history text %q", got)
	}
}

func TestHandleChatHistoryEmpty(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"history":[],"count":0}`))
	}))
	defer backend.Close()

	srv := NewServer(docapi.New(backend.URL))

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{}

	result, err := srv.handleChatHistory(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := textContent(t, result); got != "No chat history yet." {
		t.Errorf("unexpected text %q", got)
	}
}
