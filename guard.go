package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RoleGuard authorizes bearer tokens. The account is re-read on every call,
// role or status changes apply to tokens already issued.
type RoleGuard struct {
	tokens    TokenService
	lifecycle *AccountLifecycle
	logger    Logger
}

var _ Guard = (*RoleGuard)(nil)

// NewRoleGuard returns a guard that verifies tokens with tokens and
// resolves accounts through lifecycle
func NewRoleGuard(tokens TokenService, lifecycle *AccountLifecycle) *RoleGuard {
	return &RoleGuard{
		tokens:    tokens,
		lifecycle: lifecycle,
		logger:    defLogger{},
	}
}

// WithLogger sets the guard logger
func (g *RoleGuard) WithLogger(logger Logger) *RoleGuard {
	g.logger = normalizeLogger(logger)
	return g
}

// Authorize verifies token, loads its account and checks it holds at least
// one of requiredRoles. An empty requiredRoles accepts any authenticated
// account. Token failures and unknown accounts are reported as
// ErrUnauthenticated wrapping the cause.
func (g *RoleGuard) Authorize(ctx context.Context, requiredRoles Roles, token string) (*Account, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrUnableToFindSession)
	}

	accountID, err := g.tokens.Verify(token)
	if err != nil {
		g.logger.Debug("guard token rejected", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	account, err := g.lifecycle.Validate(ctx, accountID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenInvalid):
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		default:
			return nil, err
		}
	}

	if !account.Roles.Intersects(requiredRoles) {
		g.logger.Debug("guard role check failed", "id", account.ID, "roles", account.Roles, "required", requiredRoles)
		return nil, ErrForbidden
	}

	return account, nil
}
