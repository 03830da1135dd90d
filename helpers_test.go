package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-identity"
	"github.com/goliatone/go-identity/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const testSigningKey = "test-signing-key"

type testConfig struct {
	signingKey string
	expiration int
}

func (c testConfig) GetSigningKey() string {
	if c.signingKey == "" {
		return testSigningKey
	}
	return c.signingKey
}

func (c testConfig) GetTokenExpiration() int {
	return c.expiration
}

func (c testConfig) GetPasswordHashCost() int {
	return bcrypt.MinCost
}

func (c testConfig) GetDefaultPhoneRegion() string {
	return identity.DefaultPhoneRegion
}

// newTestDB returns a migrated in-memory sqlite database private to t
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := persistence.Open(context.Background(), persistence.Options{
		Driver: persistence.DriverSQLite,
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, nopLogger{})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

type testEnv struct {
	db        *bun.DB
	repo      identity.RepositoryManager
	lifecycle *identity.AccountLifecycle
	auther    *identity.Auther
	guard     *identity.RoleGuard
	accounts  *identity.AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	repo := identity.NewRepositoryManager(db)
	lifecycle := identity.NewAccountLifecycle(
		repo.Accounts(),
		identity.NewBcryptHasher(bcrypt.MinCost),
		identity.WithLifecycleLogger(nopLogger{}),
	)
	auther := identity.NewAuthenticator(lifecycle, testConfig{}).WithLogger(nopLogger{})
	guard := identity.NewRoleGuard(auther.TokenService(), lifecycle).WithLogger(nopLogger{})
	accounts := identity.NewAccountService(repo, identity.WithAccountServiceLogger(nopLogger{}))

	return &testEnv{
		db:        db,
		repo:      repo,
		lifecycle: lifecycle,
		auther:    auther,
		guard:     guard,
		accounts:  accounts,
	}
}

// setStatus stands in for the administrative process that moves accounts
// out of Incomplete
func (e *testEnv) setStatus(t *testing.T, id uuid.UUID, status identity.AccountStatus) {
	t.Helper()
	_, err := e.db.NewUpdate().
		Model(&identity.Account{ID: id, Status: status}).
		Column("status").
		WherePK().
		Exec(context.Background())
	require.NoError(t, err)
}

func (e *testEnv) setRoles(t *testing.T, id uuid.UUID, roles identity.Roles) {
	t.Helper()
	_, err := e.db.NewUpdate().
		Model(&identity.Account{ID: id, Roles: roles}).
		Column("roles").
		WherePK().
		Exec(context.Background())
	require.NoError(t, err)
}

// registerActive registers an account with a password and activates it
func (e *testEnv) registerActive(t *testing.T, email, phone, password string, roles ...identity.Role) *identity.Account {
	t.Helper()
	account, err := e.lifecycle.Register(context.Background(), identity.RegisterInput{
		Email:    email,
		FullName: "Test " + email,
		Phone:    phone,
		Password: password,
	})
	require.NoError(t, err)

	e.setStatus(t, account.ID, identity.AccountStatusActive)
	account.Status = identity.AccountStatusActive

	if len(roles) > 0 {
		e.setRoles(t, account.ID, roles)
		account.Roles = roles
	}

	return account
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// MockLogger implements identity.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.Called(msg, args)
}

// MockAccounts implements identity.Accounts
type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) FindByEmailOrPhone(ctx context.Context, email, phone string) (*identity.Account, error) {
	args := m.Called(ctx, email, phone)
	return accountArg(args, 0), args.Error(1)
}

func (m *MockAccounts) FindByEmail(ctx context.Context, email string, includeHash bool) (*identity.Account, error) {
	args := m.Called(ctx, email, includeHash)
	return accountArg(args, 0), args.Error(1)
}

func (m *MockAccounts) FindByID(ctx context.Context, id string) (*identity.Account, error) {
	args := m.Called(ctx, id)
	return accountArg(args, 0), args.Error(1)
}

func (m *MockAccounts) Insert(ctx context.Context, record *identity.Account) (*identity.Account, error) {
	args := m.Called(ctx, record)
	return accountArg(args, 0), args.Error(1)
}

func (m *MockAccounts) Upgrade(ctx context.Context, record *identity.Account) (*identity.Account, error) {
	args := m.Called(ctx, record)
	return accountArg(args, 0), args.Error(1)
}

func (m *MockAccounts) UpdateFields(ctx context.Context, id string, fields identity.AccountFields) (*identity.Account, error) {
	args := m.Called(ctx, id, fields)
	return accountArg(args, 0), args.Error(1)
}

func (m *MockAccounts) List(ctx context.Context, opts identity.ListOptions) ([]*identity.Account, error) {
	args := m.Called(ctx, opts)
	records, _ := args.Get(0).([]*identity.Account)
	return records, args.Error(1)
}

func accountArg(args mock.Arguments, i int) *identity.Account {
	record, _ := args.Get(i).(*identity.Account)
	return record
}

// MockTokenService implements identity.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(accountID string) (string, error) {
	args := m.Called(accountID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}
