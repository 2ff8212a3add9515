package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/docchat-app/docchat/internal/store"
)

var (
	// ErrNoSession indicates no provider session is active.
	ErrNoSession = errors.New("auth: no active session")
	// ErrNoUser indicates neither the provider nor the local cache
	// knows a user.
	ErrNoUser = errors.New("auth: no user")
)

// Source yields the current user and token from one origin. The
// gateway queries its sources in fixed priority order: the remote
// provider session first, the local cache second.
type Source interface {
	User(ctx context.Context) (*store.User, error)
	Token(ctx context.Context) (string, error)
}

// Gateway wraps the identity provider and profile store with a local
// cache fallback and a change subscription.
type Gateway struct {
	provider *Provider
	profiles *ProfileStore
	store    *store.Store

	mu        sync.Mutex
	session   *session
	listeners []func(*store.User)

	remote Source
	cache  Source
}

type session struct {
	uid          string
	email        string
	displayName  string
	refreshToken string
	tokens       oauth2.TokenSource
}

// New creates a gateway, restoring any persisted session so a previous
// sign-in survives process restarts.
func New(provider *Provider, profiles *ProfileStore, st *store.Store) *Gateway {
	g := &Gateway{provider: provider, profiles: profiles, store: st}
	g.remote = &remoteSource{g: g}
	g.cache = &cachedSource{store: st}

	if sess, err := st.Session(); err == nil && sess != nil && sess.RefreshToken != "" {
		restored := &SessionTokens{
			IDToken:      sess.IDToken,
			RefreshToken: sess.RefreshToken,
			Expiry:       sess.Expiry,
		}
		if u, err := st.User(); err == nil && u != nil {
			restored.UID = u.UID
			restored.Email = u.Email
			restored.DisplayName = u.Username
		}
		g.setSession(restored)
	}
	return g
}

// IsAuthenticated reports whether a provider session is active.
func (g *Gateway) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session != nil
}

// CurrentUser resolves the signed-in user. With an active session the
// provider profile is merged with the secondary record; if that read
// fails the locally cached profile is used. Without a session the
// cache alone decides; ErrNoUser means nobody is known.
func (g *Gateway) CurrentUser(ctx context.Context) (*store.User, error) {
	if g.IsAuthenticated() {
		if u, err := g.remote.User(ctx); err == nil {
			return u, nil
		}
	}
	return g.cache.User(ctx)
}

// Token returns a bearer token for outgoing requests. With an active
// session a fresh token is minted; a minting failure yields empty
// rather than falling back. Without a session the cached fallback
// token is returned, or empty.
func (g *Gateway) Token(ctx context.Context) string {
	if g.IsAuthenticated() {
		tok, err := g.remote.Token(ctx)
		if err != nil {
			return ""
		}
		return tok
	}
	tok, err := g.cache.Token(ctx)
	if err != nil {
		return ""
	}
	return tok
}

// TokenSource adapts the gateway to oauth2.TokenSource for the API
// client. It errors when no token is available so callers can skip the
// Authorization header.
func (g *Gateway) TokenSource() oauth2.TokenSource {
	return gatewaySource{g: g}
}

type gatewaySource struct{ g *Gateway }

func (s gatewaySource) Token() (*oauth2.Token, error) {
	tok := s.g.Token(context.Background())
	if tok == "" {
		return nil, ErrNoSession
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// SignIn authenticates with the provider and persists the merged
// profile locally. Provider error codes pass through unchanged; the
// user-facing mapping is the caller's concern.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*store.User, error) {
	tokens, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	g.setSession(tokens)

	u := g.resolveUser(ctx, tokens)
	g.persist(u, tokens)
	g.notify(u)
	return u, nil
}

// SignUp creates the provider account, writes the secondary profile
// record, then persists locally. A profile-write failure after account
// creation is returned as-is: the account exists without profile data
// and no compensating delete is attempted.
func (g *Gateway) SignUp(ctx context.Context, email, password, username, phone string) (*store.User, error) {
	tokens, err := g.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	g.setSession(tokens)

	profile := &Profile{Username: username, Phone: phone, Email: email, CreatedAt: time.Now()}
	if err := g.profiles.Set(ctx, tokens.UID, tokens.IDToken, profile); err != nil {
		return nil, fmt.Errorf("writing profile record: %w", err)
	}

	u := &store.User{UID: tokens.UID, Email: tokens.Email, Username: username, Phone: phone}
	g.persist(u, tokens)
	g.notify(u)
	return u, nil
}

// SignOut tears down the session. Local teardown is unconditional;
// remote revocation is attempted first and its failure returned for
// reporting, but it never blocks the local teardown.
func (g *Gateway) SignOut(ctx context.Context) error {
	g.mu.Lock()
	var refreshToken string
	if g.session != nil {
		refreshToken = g.session.refreshToken
	}
	g.session = nil
	g.mu.Unlock()

	var revokeErr error
	if refreshToken != "" {
		revokeErr = g.provider.Revoke(ctx, refreshToken)
	}

	if err := g.store.ClearUser(); err != nil {
		log.Printf("auth: clearing cached user: %v", err)
	}
	if err := g.store.ClearSession(); err != nil {
		log.Printf("auth: clearing session: %v", err)
	}
	if err := g.store.ClearToken(); err != nil {
		log.Printf("auth: clearing token: %v", err)
	}

	g.notify(nil)
	return revokeErr
}

// OnChange registers a callback invoked on every session transition:
// sign-in, sign-out (nil user) and token refresh. There is no
// unsubscribe; subscriptions live as long as the gateway.
func (g *Gateway) OnChange(fn func(*store.User)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

func (g *Gateway) notify(u *store.User) {
	g.mu.Lock()
	listeners := make([]func(*store.User), len(g.listeners))
	copy(listeners, g.listeners)
	g.mu.Unlock()
	for _, fn := range listeners {
		fn(u)
	}
}

func (g *Gateway) setSession(tokens *SessionTokens) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sess := &session{
		uid:          tokens.UID,
		email:        tokens.Email,
		displayName:  tokens.DisplayName,
		refreshToken: tokens.RefreshToken,
	}
	sess.tokens = newTokenSource(g.provider, tokens, func(st *SessionTokens) {
		g.persistRefreshed(st)
	})
	g.session = sess
}

// persistRefreshed records freshly minted tokens and fires the change
// subscription for the refresh transition.
func (g *Gateway) persistRefreshed(tokens *SessionTokens) {
	if err := g.store.SaveSession(&store.Session{
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
		Expiry:       tokens.Expiry,
	}); err != nil {
		log.Printf("auth: persisting refreshed session: %v", err)
	}
	if err := g.store.SetToken(tokens.IDToken); err != nil {
		log.Printf("auth: persisting fallback token: %v", err)
	}
	if u, err := g.store.User(); err == nil && u != nil {
		g.notify(u)
	}
}

// resolveUser merges the provider identity with the secondary profile
// record. Profile-store failures degrade to the basic identity rather
// than failing the sign-in.
func (g *Gateway) resolveUser(ctx context.Context, tokens *SessionTokens) *store.User {
	u := &store.User{UID: tokens.UID, Email: tokens.Email, Username: tokens.DisplayName}
	p, err := g.profiles.Get(ctx, tokens.UID, tokens.IDToken)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			log.Printf("auth: reading profile record: %v", err)
		}
		return u
	}
	if p.Username != "" {
		u.Username = p.Username
	}
	u.Phone = p.Phone
	return u
}

func (g *Gateway) persist(u *store.User, tokens *SessionTokens) {
	if err := g.store.SaveUser(u); err != nil {
		log.Printf("auth: caching user: %v", err)
	}
	if err := g.store.SaveSession(&store.Session{
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
		Expiry:       tokens.Expiry,
	}); err != nil {
		log.Printf("auth: persisting session: %v", err)
	}
	if err := g.store.SetToken(tokens.IDToken); err != nil {
		log.Printf("auth: persisting fallback token: %v", err)
	}
}

// remoteSource resolves the user and token from the live provider
// session.
type remoteSource struct{ g *Gateway }

func (r *remoteSource) User(ctx context.Context) (*store.User, error) {
	r.g.mu.Lock()
	sess := r.g.session
	r.g.mu.Unlock()
	if sess == nil {
		return nil, ErrNoSession
	}

	tok, err := sess.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("minting token: %w", err)
	}

	u := &store.User{UID: sess.uid, Email: sess.email, Username: sess.displayName}
	p, err := r.g.profiles.Get(ctx, sess.uid, tok.AccessToken)
	if errors.Is(err, ErrProfileNotFound) {
		return u, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Username != "" {
		u.Username = p.Username
	}
	u.Phone = p.Phone
	return u, nil
}

func (r *remoteSource) Token(ctx context.Context) (string, error) {
	r.g.mu.Lock()
	sess := r.g.session
	r.g.mu.Unlock()
	if sess == nil {
		return "", ErrNoSession
	}
	tok, err := sess.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("minting token: %w", err)
	}
	return tok.AccessToken, nil
}

// cachedSource resolves the user and token from the local state store.
type cachedSource struct{ store *store.Store }

func (c *cachedSource) User(ctx context.Context) (*store.User, error) {
	u, err := c.store.User()
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNoUser
	}
	return u, nil
}

func (c *cachedSource) Token(ctx context.Context) (string, error) {
	return c.store.Token()
}
