package identity

import (
	"context"
)

// Auther wires the lifecycle engine with token issuance. It is the entry
// point transports call for register, login and session validation.
type Auther struct {
	lifecycle    *AccountLifecycle
	register     *RegisterAccountHandler
	tokenService TokenService
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(lifecycle *AccountLifecycle, opts Config) *Auther {
	return &Auther{
		lifecycle:    lifecycle,
		register:     NewRegisterAccountHandler(lifecycle),
		tokenService: NewTokenServiceFromConfig(opts),
		logger:       defLogger{},
	}
}

// WithLogger sets the logger for the authenticator and its token service
func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	if ts, ok := s.tokenService.(*TokenServiceImpl); ok {
		WithTokenLogger(s.logger)(ts)
	}
	return s
}

// WithTokenService replaces the token service
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register validates input, creates or completes the account and issues a
// token for it
func (s *Auther) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	account, err := s.register.Handle(ctx, RegisterAccountMessage{RegisterInput: input})
	if err != nil {
		s.logger.Debug("Register failed", "email", NormalizeEmail(input.Email), "error", err)
		return nil, err
	}

	return s.respond(account)
}

// Login checks credentials and issues a token
func (s *Auther) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	account, err := s.lifecycle.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Debug("Login failed", "email", NormalizeEmail(email), "error", err)
		return nil, err
	}

	return s.respond(account)
}

// ValidateSession re-reads the account behind a verified token and issues
// a fresh token on every call.
func (s *Auther) ValidateSession(ctx context.Context, accountID string) (*AuthResponse, error) {
	account, err := s.lifecycle.Validate(ctx, accountID)
	if err != nil {
		s.logger.Debug("ValidateSession failed", "id", accountID, "error", err)
		return nil, err
	}

	return s.respond(account)
}

// SessionFromToken verifies raw and returns the account id it was issued for
func (s *Auther) SessionFromToken(raw string) (string, error) {
	id, err := s.tokenService.Verify(raw)
	if err != nil {
		s.logger.Debug("SessionFromToken validation failed", "error", err)
		return "", err
	}
	return id, nil
}

func (s *Auther) respond(account *Account) (*AuthResponse, error) {
	token, err := s.tokenService.Issue(account.ID.String())
	if err != nil {
		s.logger.Error("failed to issue token", "id", account.ID, "error", err)
		return nil, err
	}

	return &AuthResponse{
		Account: account,
		Token:   token,
	}, nil
}
