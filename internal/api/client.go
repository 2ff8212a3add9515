// Package api is the authenticated client for the chat API. Requests
// are routed to one of two configured hosts by an explicit endpoint
// table and carry a bearer token when one is available.
//
// The chat API reports failures in the response body (an "error"
// field) rather than through HTTP status codes, so Request decodes the
// body unconditionally and callers inspect the decoded result.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Client issues authenticated requests to the chat API.
type Client struct {
	host       string
	customHost string
	tokens     oauth2.TokenSource
	client     *http.Client
}

// New creates a client over the two configured hosts. tokens may be
// nil for unauthenticated use; token-source failures mean requests go
// out without an Authorization header.
func New(host, customHost string, tokens oauth2.TokenSource) *Client {
	return &Client{
		host:       strings.TrimRight(host, "/"),
		customHost: strings.TrimRight(customHost, "/"),
		tokens:     tokens,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

// Request posts the payload to the named endpoint and decodes the JSON
// response into out. The HTTP status is deliberately not inspected;
// the API signals failure through the body.
func (c *Client) Request(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling %s request: %w", endpoint, err)
	}

	url := c.hostFor(endpoint) + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if tok, err := c.tokens.Token(); err == nil && tok.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", endpoint, err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload is the register endpoint's request body.
type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

// AuthResponse is the shape shared by the login and register
// endpoints. Error is empty on success.
type AuthResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Login posts credentials to the login endpoint.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.Request(ctx, EndpointLogin, credentialsPayload{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register posts a new account to the register endpoint.
func (c *Client) Register(ctx context.Context, p RegisterPayload) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.Request(ctx, EndpointRegister, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type chatPayload struct {
	BotID    string `json:"bot_id"`
	Question string `json:"question"`
}

// documentEnvelope is the document endpoint's response shape.
type documentEnvelope struct {
	Error  string `json:"error"`
	Answer struct {
		OutputText string `json:"output_text"`
	} `json:"answer"`
}

// modelEnvelope is the shape shared by the two model endpoints.
type modelEnvelope struct {
	Error  string `json:"error"`
	Answer struct {
		Answer string `json:"answer"`
	} `json:"answer"`
}

// ChatWithDocuments asks the document-backed chat endpoint.
func (c *Client) ChatWithDocuments(ctx context.Context, botID, question string) (ChatResult, error) {
	var env documentEnvelope
	if err := c.Request(ctx, EndpointChatDocuments, chatPayload{BotID: botID, Question: question}, &env); err != nil {
		return nil, err
	}
	if env.Error != "" {
		return nil, &ChatError{Message: env.Error}
	}
	return DocumentAnswer{OutputText: env.Answer.OutputText}, nil
}

// ChatWithCustomModel asks the custom-model endpoint.
func (c *Client) ChatWithCustomModel(ctx context.Context, botID, question string) (ChatResult, error) {
	return c.modelChat(ctx, EndpointChatCustomModel, botID, question)
}

// ChatWithMyLLM asks the self-hosted model endpoint.
func (c *Client) ChatWithMyLLM(ctx context.Context, botID, question string) (ChatResult, error) {
	return c.modelChat(ctx, EndpointChatMyLLM, botID, question)
}

func (c *Client) modelChat(ctx context.Context, endpoint, botID, question string) (ChatResult, error) {
	var env modelEnvelope
	if err := c.Request(ctx, endpoint, chatPayload{BotID: botID, Question: question}, &env); err != nil {
		return nil, err
	}
	if env.Error != "" {
		return nil, &ChatError{Message: env.Error}
	}
	return ModelAnswer{Answer: env.Answer.Answer}, nil
}
