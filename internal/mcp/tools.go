package mcp

import "github.com/mark3labs/mcp-go/mcp"

// askDocumentsTool defines the ask_documents MCP tool.
var askDocumentsTool = mcp.NewTool("ask_documents",
	mcp.WithDescription("Ask a question over the uploaded documents. Returns the answer and whether document context was used."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("Natural language question"),
	),
)

// uploadDocumentTool defines the upload_document MCP tool.
var uploadDocumentTool = mcp.NewTool("upload_document",
	mcp.WithDescription("Upload a local document (PDF, TXT, MD or DOCX) to the document service for question-answering."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the document on the local filesystem"),
	),
)

// chatHistoryTool defines the chat_history MCP tool.
var chatHistoryTool = mcp.NewTool("chat_history",
	mcp.WithDescription("List recent document questions and answers, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of entries to return (default 10)"),
	),
)
