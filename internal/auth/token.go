package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// refreshTokenSource mints ID tokens through the provider's
// secure-token endpoint. It is wrapped in oauth2.ReuseTokenSource so a
// token is only re-minted once the previous one expires.
type refreshTokenSource struct {
	provider     *Provider
	refreshToken string
	onRefresh    func(*SessionTokens)
}

func (s *refreshTokenSource) Token() (*oauth2.Token, error) {
	st, err := s.provider.Refresh(context.Background(), s.refreshToken)
	if err != nil {
		return nil, err
	}
	if st.RefreshToken != "" {
		s.refreshToken = st.RefreshToken
	}
	if s.onRefresh != nil {
		s.onRefresh(st)
	}
	return &oauth2.Token{
		AccessToken:  st.IDToken,
		TokenType:    "Bearer",
		RefreshToken: st.RefreshToken,
		Expiry:       st.Expiry,
	}, nil
}

// newTokenSource seeds a reusing token source from the current session
// tokens. onRefresh fires whenever a fresh token is actually minted.
func newTokenSource(p *Provider, current *SessionTokens, onRefresh func(*SessionTokens)) oauth2.TokenSource {
	seed := &oauth2.Token{
		AccessToken:  current.IDToken,
		TokenType:    "Bearer",
		RefreshToken: current.RefreshToken,
		Expiry:       current.Expiry,
	}
	return oauth2.ReuseTokenSource(seed, &refreshTokenSource{
		provider:     p,
		refreshToken: current.RefreshToken,
		onRefresh:    onRefresh,
	})
}
