package identity_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAccountMessage_Type(t *testing.T) {
	var msg command.Message = identity.RegisterAccountMessage{}
	assert.Equal(t, "account.register", msg.Type())
}

func TestRegisterAccountHandler_Execute(t *testing.T) {
	env := newTestEnv(t)
	handler := identity.NewRegisterAccountHandler(env.lifecycle)

	err := handler.Execute(context.Background(), identity.RegisterAccountMessage{
		RegisterInput: identity.RegisterInput{
			Email: "A@B.com", FullName: "A B", Phone: "+61412345678", Password: "Abc123!",
		},
	})
	require.NoError(t, err)

	account, err := env.repo.Accounts().FindByEmail(context.Background(), "a@b.com", false)
	require.NoError(t, err)
	assert.Equal(t, identity.AccountStatusIncomplete, account.Status)
}

func TestRegisterAccountHandler_Handle(t *testing.T) {
	env := newTestEnv(t)
	handler := identity.NewRegisterAccountHandler(env.lifecycle)

	account, err := handler.Handle(context.Background(), identity.RegisterAccountMessage{
		RegisterInput: identity.RegisterInput{
			Email: "a@b.com", FullName: "A B", Phone: "+61412345678",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", account.Email)
	assert.Empty(t, account.PasswordHash)
}

func TestRegisterAccountHandler_InvalidMessage(t *testing.T) {
	env := newTestEnv(t)
	handler := identity.NewRegisterAccountHandler(env.lifecycle)

	err := handler.Execute(context.Background(), identity.RegisterAccountMessage{
		RegisterInput: identity.RegisterInput{Email: "nope", Phone: "+61412345678"},
	})
	require.Error(t, err)

	var cmdErr *command.Error
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "InvalidMessage", cmdErr.Type)

	fields := identity.ValidationFields(err)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "full_name")

	count, err := env.db.NewSelect().Model((*identity.Account)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRegisterAccountHandler_PasswordOverBcryptLimit(t *testing.T) {
	env := newTestEnv(t)
	handler := identity.NewRegisterAccountHandler(env.lifecycle)

	// 50 runes, 96 bytes
	password := "Aa1!" + strings.Repeat("é", 46)

	_, err := handler.Handle(context.Background(), identity.RegisterAccountMessage{
		RegisterInput: identity.RegisterInput{
			Email: "a@b.com", FullName: "A B", Phone: "+61412345678", Password: password,
		},
	})
	require.Error(t, err)
	assert.Contains(t, identity.ValidationFields(err), "password")
}

func TestRegisterAccountHandler_CancelledContext(t *testing.T) {
	env := newTestEnv(t)
	handler := identity.NewRegisterAccountHandler(env.lifecycle)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := handler.Handle(ctx, identity.RegisterAccountMessage{
		RegisterInput: identity.RegisterInput{
			Email: "a@b.com", FullName: "A B", Phone: "+61412345678",
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryOperation))
}
