// Package mcp exposes the document service over the Model Context
// Protocol so AI agents can ask questions, upload documents and read
// past conversations.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/docchat-app/docchat/internal/docapi"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server over the document service client.
type Server struct {
	docs     *docapi.Client
	uploader *docapi.Uploader
	mcp      *server.MCPServer
}

// NewServer creates an MCP server with the given document client.
func NewServer(docs *docapi.Client) *Server {
	s := &Server{
		docs:     docs,
		uploader: docapi.NewUploader(docs),
	}

	s.mcp = server.NewMCPServer(
		"docchat",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(askDocumentsTool, s.handleAskDocuments)
	s.mcp.AddTool(uploadDocumentTool, s.handleUploadDocument)
	s.mcp.AddTool(chatHistoryTool, s.handleChatHistory)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
