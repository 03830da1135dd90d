package identity

import (
	"context"
	"time"

	"github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultRegisterTimeout bounds a single registration
const DefaultRegisterTimeout = 10 * time.Second

// RegisterAccountMessage asks for an account to be created or completed
type RegisterAccountMessage struct {
	RegisterInput
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

func (e RegisterAccountMessage) Validate() error {
	return e.RegisterInput.Validate()
}

// RegisterAccountHandler runs registrations through the lifecycle engine
type RegisterAccountHandler struct {
	command.MessageHandler[RegisterAccountMessage]
	lifecycle *AccountLifecycle
	timeout   time.Duration
}

var _ command.Commander[RegisterAccountMessage] = (*RegisterAccountHandler)(nil)

// NewRegisterAccountHandler returns a handler using lifecycle
func NewRegisterAccountHandler(lifecycle *AccountLifecycle) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		lifecycle: lifecycle,
		timeout:   DefaultRegisterTimeout,
	}
}

// WithTimeout overrides the per registration timeout
func (h *RegisterAccountHandler) WithTimeout(timeout time.Duration) *RegisterAccountHandler {
	if timeout > 0 {
		h.timeout = timeout
	}
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, msg RegisterAccountMessage) error {
	_, err := h.Handle(ctx, msg)
	return err
}

// Handle executes msg and returns the stored account
func (h *RegisterAccountHandler) Handle(ctx context.Context, msg RegisterAccountMessage) (*Account, error) {
	if err := h.ValidateMessage(msg); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, msg)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, msg RegisterAccountMessage) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	return h.lifecycle.Register(ctx, msg.RegisterInput)
}
