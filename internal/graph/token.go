package graph

import (
	"context"
	"strings"
)

// TokenProvider is an IdentityProvider backed by a pre-acquired bearer
// token (typically from the SITEAUDIT_TOKEN environment variable). The
// interactive browser sign-in flow lives outside this tool; the auditor
// pastes the token it produced.
type TokenProvider struct {
	Token  string
	Client *Client
}

// ActiveIdentity returns the token's user, or (nil, nil) when no token is
// configured, which the submitter reports as "not signed in".
func (p *TokenProvider) ActiveIdentity(ctx context.Context) (*Identity, error) {
	if strings.TrimSpace(p.Token) == "" {
		return nil, nil
	}
	return p.Client.Me(ctx, p.Token)
}

// AcquireToken returns the configured token. A provider with interactive
// re-authentication would refresh here instead.
func (p *TokenProvider) AcquireToken(ctx context.Context, identity *Identity) (string, error) {
	if strings.TrimSpace(p.Token) == "" {
		return "", &AuthError{Msg: "no access token configured"}
	}
	return p.Token, nil
}
