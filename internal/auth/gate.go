package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// Gate combines token verification and identity resolution into a single
// yes/no decision. It never reports why a token was rejected.
type Gate struct {
	tokens     *TokenManager
	identities *Resolver
	logger     *zap.Logger
}

// NewGate constructs the gate.
func NewGate(tokens *TokenManager, identities *Resolver, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{tokens: tokens, identities: identities, logger: logger}
}

// Authorize reports whether token is valid and its subject exists under role.
func (g *Gate) Authorize(ctx context.Context, token string, role domain.Role) bool {
	_, ok := g.Identity(ctx, token, role)
	return ok
}

// Identity returns the record backing an authorized token.
func (g *Gate) Identity(ctx context.Context, token string, role domain.Role) (domain.Identity, bool) {
	claims, err := g.tokens.Verify(token)
	if err != nil || claims.Subject == "" {
		return domain.Identity{}, false
	}
	return g.resolve(ctx, claims.Subject, role)
}

// ExtractSubject returns the subject of a verified token.
func (g *Gate) ExtractSubject(token string) (string, bool) {
	subject, err := g.tokens.Subject(token)
	if err != nil {
		return "", false
	}
	return subject, true
}

// ExtractEntityID returns the record id for the token's subject under role.
// An id embedded at issuance wins; otherwise the subject is looked up.
func (g *Gate) ExtractEntityID(ctx context.Context, token string, role domain.Role) (int64, bool) {
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return 0, false
	}
	if claims.EntityID != nil && claims.Role == string(role) {
		return *claims.EntityID, true
	}
	identity, ok := g.resolve(ctx, claims.Subject, role)
	if !ok {
		return 0, false
	}
	return identity.ID, true
}

func (g *Gate) resolve(ctx context.Context, subject string, role domain.Role) (domain.Identity, bool) {
	identity, err := g.identities.Resolve(ctx, subject, role)
	if err != nil {
		if !errors.Is(err, ErrIdentityNotFound) {
			g.logger.Warn("identity lookup failed", zap.String("role", string(role)), zap.Error(err))
		}
		return domain.Identity{}, false
	}
	return identity, true
}
