package identity_test

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountStatus_IsValid(t *testing.T) {
	for _, status := range []identity.AccountStatus{
		identity.AccountStatusIncomplete,
		identity.AccountStatusPending,
		identity.AccountStatusActive,
		identity.AccountStatusBlocked,
	} {
		assert.True(t, status.IsValid(), status)
	}

	assert.False(t, identity.AccountStatus("Archived").IsValid())
	assert.False(t, identity.AccountStatus("").IsValid())
}

func TestAccount_Sanitized(t *testing.T) {
	account := &identity.Account{
		ID:           uuid.New(),
		Email:        "a@b.com",
		PasswordHash: "$2a$10$hash",
		Roles:        identity.Roles{identity.RoleUser},
	}

	clean := account.Sanitized()
	require.NotNil(t, clean)
	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, "$2a$10$hash", account.PasswordHash)

	clean.Roles[0] = identity.RoleAdmin
	assert.Equal(t, identity.RoleUser, account.Roles[0])

	var nilAccount *identity.Account
	assert.Nil(t, nilAccount.Sanitized())
}

func TestAccount_JSONOmitsHash(t *testing.T) {
	account := identity.Account{
		ID:           uuid.New(),
		Email:        "a@b.com",
		PasswordHash: "$2a$10$hash",
		Status:       identity.AccountStatusActive,
		Roles:        identity.DefaultRoles(),
	}

	raw, err := json.Marshal(account)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.Contains(t, string(raw), `"status":"Active"`)
}

func TestAccount_Helpers(t *testing.T) {
	account := &identity.Account{}
	account.EnsureStatus()
	assert.Equal(t, identity.AccountStatusIncomplete, account.Status)
	assert.False(t, account.IsActive())
	assert.False(t, account.HasPassword())

	account.Status = identity.AccountStatusActive
	account.PasswordHash = "x"
	assert.True(t, account.IsActive())
	assert.True(t, account.HasPassword())

	assert.Equal(t, "a@b.com", identity.NormalizeEmail("  A@B.Com "))
}

func TestRoles(t *testing.T) {
	user := identity.Roles{identity.RoleUser}
	admin := identity.Roles{identity.RoleUser, identity.RoleAdmin}

	assert.True(t, user.Has(identity.RoleUser))
	assert.False(t, user.Has(identity.RoleAdmin))

	assert.True(t, user.Intersects(nil))
	assert.True(t, user.Intersects(identity.Roles{identity.RoleAdmin, identity.RoleUser}))
	assert.False(t, user.Intersects(identity.Roles{identity.RoleAdmin}))
	assert.True(t, admin.Intersects(identity.Roles{identity.RoleAdmin}))

	assert.Equal(t, identity.Roles{"admin", "user"}, identity.Roles{" Admin", "admin", "", "USER"}.Normalize())
	assert.Equal(t, identity.DefaultRoles(), identity.Roles{}.Normalize())
	assert.Equal(t, identity.DefaultRoles(), identity.Roles(nil).Normalize())

	assert.True(t, identity.IsValidRole("admin"))
	assert.False(t, identity.IsValidRole("root"))
	assert.ElementsMatch(t, identity.Roles{"user", "admin"}, identity.GetAllRoles())
}
