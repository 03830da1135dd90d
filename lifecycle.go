package identity

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

// AccountLifecycle implements registration with reconciliation of
// Incomplete accounts, credential checks and session validation on top
// of an Accounts store.
type AccountLifecycle struct {
	store            Accounts
	hasher           PasswordHasher
	phones           PhoneNormalizer
	logger           Logger
	deterministicIDs bool
}

// LifecycleOption customizes the lifecycle engine
type LifecycleOption func(*AccountLifecycle)

// WithPhoneNormalizer overrides the phone normalizer
func WithPhoneNormalizer(n PhoneNormalizer) LifecycleOption {
	return func(l *AccountLifecycle) {
		if n != nil {
			l.phones = n
		}
	}
}

// WithLifecycleLogger overrides the logger
func WithLifecycleLogger(logger Logger) LifecycleOption {
	return func(l *AccountLifecycle) {
		l.logger = normalizeLogger(logger)
	}
}

// WithDeterministicIDs derives new account ids from the email address
// instead of generating random ones.
func WithDeterministicIDs(enabled bool) LifecycleOption {
	return func(l *AccountLifecycle) {
		l.deterministicIDs = enabled
	}
}

// NewAccountLifecycle returns an engine backed by store and hasher
func NewAccountLifecycle(store Accounts, hasher PasswordHasher, opts ...LifecycleOption) *AccountLifecycle {
	l := &AccountLifecycle{
		store:  store,
		hasher: hasher,
		phones: NewPhoneNormalizer(DefaultPhoneRegion),
		logger: defLogger{},
	}

	if l.hasher == nil {
		l.hasher = NewBcryptHasher(passwordHashCost())
	}

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	return l
}

// Register creates an account or completes an Incomplete one that holds
// the same email or phone. The returned account never carries the hash.
func (l *AccountLifecycle) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	phone, err := l.phones.Normalize(input.Phone)
	if err != nil {
		return nil, err
	}

	email := NormalizeEmail(input.Email)

	existing, err := l.store.FindByEmailOrPhone(ctx, email, phone)
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	record := &Account{}
	upgrade := false
	if existing != nil {
		switch existing.Status {
		case AccountStatusPending:
			return nil, ErrUserUnderReview
		case AccountStatusIncomplete:
			record = existing
			upgrade = true
			l.logger.Debug("register completing incomplete account", "id", existing.ID)
		default:
			return nil, ErrAlreadyExists
		}
	} else {
		record.Roles = DefaultRoles()
		record.Status = AccountStatusIncomplete
		if l.deterministicIDs {
			if id, err := hashid.NewUUID(email); err == nil {
				record.ID = id
			}
		}
	}

	record.Email = email
	record.Phone = phone
	record.FullName = strings.TrimSpace(input.FullName)
	record.PasswordHash = ""

	if input.Password != "" {
		hash, err := l.hasher.HashPassword(input.Password)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}
		record.PasswordHash = hash
	}

	if upgrade {
		_, err = l.store.Upgrade(ctx, record)
	} else {
		_, err = l.store.Insert(ctx, record)
	}
	if err != nil {
		return nil, err
	}

	account, err := l.store.FindByEmail(ctx, email, false)
	if err != nil {
		return nil, err
	}

	return account.Sanitized(), nil
}

// Authenticate checks email and password. Accounts without a password
// never authenticate.
func (l *AccountLifecycle) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, err := l.store.FindByEmail(ctx, email, true)
	if err != nil {
		return nil, err
	}

	if !account.HasPassword() || !l.hasher.Verify(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return account.Sanitized(), nil
}

// Validate resolves the account behind a session. Accounts holding the
// user role must be Active. Role sets without user skip that check.
func (l *AccountLifecycle) Validate(ctx context.Context, accountID string) (*Account, error) {
	account, err := l.store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	if account.Roles.Has(RoleUser) && !account.IsActive() {
		return nil, ErrAccountNotActive
	}

	return account.Sanitized(), nil
}
