package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountService is the administrative surface over stored accounts
type AccountService struct {
	repo   RepositoryManager
	phones PhoneNormalizer
	logger Logger
}

// AccountServiceOption customizes the service
type AccountServiceOption func(*AccountService)

// WithAccountServicePhones overrides the phone normalizer
func WithAccountServicePhones(n PhoneNormalizer) AccountServiceOption {
	return func(s *AccountService) {
		if n != nil {
			s.phones = n
		}
	}
}

// WithAccountServiceLogger overrides the logger
func WithAccountServiceLogger(logger Logger) AccountServiceOption {
	return func(s *AccountService) {
		s.logger = normalizeLogger(logger)
	}
}

// NewAccountService returns a service backed by repo
func NewAccountService(repo RepositoryManager, opts ...AccountServiceOption) *AccountService {
	s := &AccountService{
		repo:   repo,
		phones: NewPhoneNormalizer(DefaultPhoneRegion),
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// List returns a page of accounts ordered by creation time
func (s *AccountService) List(ctx context.Context, opts ListOptions) ([]*Account, error) {
	return s.repo.Accounts().List(ctx, opts)
}

// Get returns a single account
func (s *AccountService) Get(ctx context.Context, id string) (*Account, error) {
	return s.repo.Accounts().FindByID(ctx, id)
}

// Update changes profile fields of account id. Only the account owner or
// an admin may do so.
func (s *AccountService) Update(ctx context.Context, actor *Account, id string, input UpdateAccountInput) (*Account, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	if !isAccount(actor, id) && !actor.Roles.Has(RoleAdmin) {
		s.logger.Warn("account update rejected", "actor", actor.ID, "target", id)
		return nil, ErrCannotPerformAction
	}

	fields := AccountFields{}

	if input.Email != nil {
		email := NormalizeEmail(*input.Email)
		fields.Email = &email
	}

	if input.Phone != nil {
		phone, err := s.phones.Normalize(*input.Phone)
		if err != nil {
			return nil, err
		}
		fields.Phone = &phone
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		fields.FullName = &name
	}

	if fields.IsEmpty() {
		return s.Get(ctx, id)
	}

	var account *Account
	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		account, err = s.repo.AccountsTx(tx).UpdateFields(ctx, id, fields)
		return err
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

func isAccount(actor *Account, id string) bool {
	target, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil && target == actor.ID
}
