// Package auth wraps the identity provider and the secondary profile
// store behind a gateway with a local-cache fallback. The provider is
// Firebase Auth over its REST surface; the profile store is the
// project's Firestore `users` collection.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Provider error codes surfaced to callers. The strings follow the
// provider's own naming; the user-facing mapping lives in messages.go.
const (
	CodeUserNotFound    = "auth/user-not-found"
	CodeWrongPassword   = "auth/wrong-password"
	CodeInvalidEmail    = "auth/invalid-email"
	CodeUserDisabled    = "auth/user-disabled"
	CodeTooManyRequests = "auth/too-many-requests"
	CodeEmailInUse      = "auth/email-already-in-use"
	CodeWeakPassword    = "auth/weak-password"
	CodeNetworkFailed   = "auth/network-request-failed"
)

// ProviderError is an identity-provider failure with a stable code.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

const (
	defaultIdentityURL = "https://identitytoolkit.googleapis.com"
	defaultTokenURL    = "https://securetoken.googleapis.com"
	defaultRevokeURL   = "https://oauth2.googleapis.com/revoke"
)

// Provider is a Firebase Auth REST client.
type Provider struct {
	apiKey      string
	identityURL string
	tokenURL    string
	revokeURL   string
	client      *http.Client
}

// NewProvider creates a provider client for the given project API key.
func NewProvider(apiKey string) *Provider {
	return NewProviderAt(apiKey, defaultIdentityURL, defaultTokenURL, defaultRevokeURL)
}

// NewProviderAt creates a provider client against explicit endpoints.
func NewProviderAt(apiKey, identityURL, tokenURL, revokeURL string) *Provider {
	return &Provider{
		apiKey:      apiKey,
		identityURL: identityURL,
		tokenURL:    tokenURL,
		revokeURL:   revokeURL,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// SessionTokens is the result of a successful provider exchange.
type SessionTokens struct {
	UID          string
	Email        string
	DisplayName  string
	IDToken      string
	RefreshToken string
	Expiry       time.Time
}

type identityRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type identityResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// SignIn exchanges email/password for session tokens.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*SessionTokens, error) {
	return p.exchange(ctx, "accounts:signInWithPassword", email, password)
}

// SignUp creates a provider account and returns its session tokens.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*SessionTokens, error) {
	return p.exchange(ctx, "accounts:signUp", email, password)
}

func (p *Provider) exchange(ctx context.Context, action, email, password string) (*SessionTokens, error) {
	body, err := json.Marshal(identityRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, fmt.Errorf("marshalling %s request: %w", action, err)
	}

	u := fmt.Sprintf("%s/v1/%s?key=%s", p.identityURL, action, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Code: CodeNetworkFailed, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Code: CodeNetworkFailed, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, providerErrorFrom(respBody)
	}

	var ir identityResponse
	if err := json.Unmarshal(respBody, &ir); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", action, err)
	}
	return ir.tokens(), nil
}

func (ir *identityResponse) tokens() *SessionTokens {
	expiresIn, _ := strconv.Atoi(ir.ExpiresIn)
	if expiresIn == 0 {
		expiresIn = 3600
	}
	return &SessionTokens{
		UID:          ir.LocalID,
		Email:        ir.Email,
		DisplayName:  ir.DisplayName,
		IDToken:      ir.IDToken,
		RefreshToken: ir.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
}

type refreshResponse struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

// Refresh mints a fresh ID token from a refresh token.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*SessionTokens, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	u := fmt.Sprintf("%s/v1/token?key=%s", p.tokenURL, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Code: CodeNetworkFailed, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Code: CodeNetworkFailed, Message: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, providerErrorFrom(respBody)
	}

	var rr refreshResponse
	if err := json.Unmarshal(respBody, &rr); err != nil {
		return nil, fmt.Errorf("decoding refresh response: %w", err)
	}
	expiresIn, _ := strconv.Atoi(rr.ExpiresIn)
	if expiresIn == 0 {
		expiresIn = 3600
	}
	return &SessionTokens{
		UID:          rr.UserID,
		IDToken:      rr.IDToken,
		RefreshToken: rr.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}

// Revoke invalidates a refresh token. Sign-out treats failures here as
// reportable but non-blocking.
func (p *Provider) Revoke(ctx context.Context, refreshToken string) error {
	form := url.Values{"token": {refreshToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoking session: status %d", resp.StatusCode)
	}
	return nil
}

type providerErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// providerErrorFrom maps the provider's error message constants to the
// stable auth/* codes. Unknown messages pass through unchanged.
func providerErrorFrom(body []byte) *ProviderError {
	var pe providerErrorBody
	if err := json.Unmarshal(body, &pe); err != nil || pe.Error.Message == "" {
		return &ProviderError{Code: CodeNetworkFailed, Message: strings.TrimSpace(string(body))}
	}

	msg := pe.Error.Message
	// Messages may carry a suffix, e.g. "WEAK_PASSWORD : Password
	// should be at least 6 characters".
	head := msg
	if i := strings.IndexAny(msg, " :"); i > 0 {
		head = msg[:i]
	}

	code := ""
	switch head {
	case "EMAIL_NOT_FOUND":
		code = CodeUserNotFound
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		code = CodeWrongPassword
	case "INVALID_EMAIL", "MISSING_EMAIL":
		code = CodeInvalidEmail
	case "USER_DISABLED":
		code = CodeUserDisabled
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		code = CodeTooManyRequests
	case "EMAIL_EXISTS":
		code = CodeEmailInUse
	case "WEAK_PASSWORD", "MISSING_PASSWORD":
		code = CodeWeakPassword
	default:
		code = head
	}
	return &ProviderError{Code: code, Message: msg}
}
