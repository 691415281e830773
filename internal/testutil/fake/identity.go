package fake

import (
	"context"
	"fmt"

	"github.com/hireline/hireline/internal/identity"
)

// IdentityProvider resolves tokens from a fixed table. Unknown tokens fail
// with identity.ErrVerification.
type IdentityProvider struct {
	AccessTokens map[string]identity.Profile
	IDTokens     map[string]identity.Profile
}

func (p *IdentityProvider) ProfileFromAccessToken(_ context.Context, token string) (*identity.Profile, error) {
	return lookup(p.AccessTokens, token)
}

func (p *IdentityProvider) ProfileFromIDToken(_ context.Context, token string) (*identity.Profile, error) {
	return lookup(p.IDTokens, token)
}

func lookup(table map[string]identity.Profile, token string) (*identity.Profile, error) {
	prof, ok := table[token]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token", identity.ErrVerification)
	}
	return &prof, nil
}
