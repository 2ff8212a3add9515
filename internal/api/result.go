package api

import "strings"

// ChatResult is the answer from one of the chat endpoints. The two
// response shapes are distinct variants rather than a field picked by
// re-inspecting the persona id: the dispatch that chose the endpoint
// also fixed the variant.
type ChatResult interface {
	// Text returns the answer text to render.
	Text() string
	chatResult()
}

// DocumentAnswer is the document endpoint's answer shape
// (answer.output_text).
type DocumentAnswer struct {
	OutputText string
}

func (a DocumentAnswer) Text() string { return a.OutputText }
func (DocumentAnswer) chatResult()    {}

// ModelAnswer is the model endpoints' answer shape (answer.answer).
type ModelAnswer struct {
	Answer string
}

func (a ModelAnswer) Text() string { return a.Answer }
func (ModelAnswer) chatResult()    {}

// ChatError is a failure reported in a chat response body.
type ChatError struct {
	Message string
}

func (e *ChatError) Error() string { return e.Message }

// TokenRejected reports whether the error text names a token or
// authorization problem, which forces a sign-out instead of an inline
// failure. Both substrings are checked case-sensitively.
func (e *ChatError) TokenRejected() bool {
	return strings.Contains(e.Message, "Token") || strings.Contains(e.Message, "token")
}
