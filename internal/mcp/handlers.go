package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docchat-app/docchat/internal/docapi"
)

// handleAskDocuments forwards a question to the document service.
func (s *Server) handleAskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	answer, err := s.docs.Chat(ctx, question)
	if err != nil {
		var apiErr *docapi.Error
		if errors.As(err, &apiErr) {
			return mcp.NewToolResultError(fmt.Sprintf("question failed: %s", apiErr.Detail)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("question failed: %v", err)), nil
	}

	var b strings.Builder
	b.WriteString(answer.Answer)
	if answer.ContextUsed {
		fmt.Fprintf(&b, "\n\n(answered from %d document chunks)", answer.ChunksCount)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleUploadDocument sends a local file to the document service.
func (s *Server) handleUploadDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}

	result, err := s.uploader.Upload(ctx, path, nil)
	if err != nil {
		if errors.Is(err, docapi.ErrUnsupportedFile) {
			return mcp.NewToolResultError(docapi.UnsupportedFileMessage), nil
		}
		var apiErr *docapi.Error
		if errors.As(err, &apiErr) {
			return mcp.NewToolResultError(fmt.Sprintf("upload failed: %s", apiErr.Detail)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("upload failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Uploaded %s: %d chunks processed (doc id %s).",
		path, result.ChunksCount, result.DocID,
	)), nil
}

// handleChatHistory lists recent question/answer pairs.
func (s *Server) handleChatHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	entries, err := s.docs.History(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history failed: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No chat history yet."), nil
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "[%s]\nQ: %s\nA: %s\n\n", e.CreatedAt, e.Question, e.Answer)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}
