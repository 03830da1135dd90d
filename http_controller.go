package identity

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RegisterRoutes mounts the auth and account routes on app
func RegisterRoutes[T any](app router.Router[T], opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.Register).
		SetName("auth.register")
	app.Post(controller.Routes.Login, controller.Login).
		SetName("auth.login")
	app.Get(controller.Routes.ValidateToken,
		controller.ValidateToken,
		controller.protect(),
	).SetName("auth.validate-token")

	app.Get(controller.Routes.Users,
		controller.ListAccounts,
		controller.protect(RoleAdmin),
	).SetName("users.list")
	app.Get(controller.Routes.Users+"/:id",
		controller.GetAccount,
		controller.protect(RoleAdmin),
	).SetName("users.get")
	app.Patch(controller.Routes.Users+"/:id",
		controller.UpdateAccount,
		controller.protect(RoleUser, RoleAdmin),
	).SetName("users.update")

	return controller
}

// AuthControllerRoutes holds the route paths
type AuthControllerRoutes struct {
	Register      string
	Login         string
	ValidateToken string
	Users         string
}

// AuthController serves the JSON auth and account endpoints
type AuthController struct {
	Logger     Logger
	Auther     Authenticator
	Guard      Guard
	Accounts   *AccountService
	Routes     *AuthControllerRoutes
	ContextKey string
}

// AuthControllerOption configures the controller
type AuthControllerOption func(*AuthController) *AuthController

// WithControllerLogger sets the controller logger
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Logger = normalizeLogger(logger)
		return ac
	}
}

// WithAuthenticator sets the authenticator
func WithAuthenticator(auther Authenticator) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Auther = auther
		return ac
	}
}

// WithGuard sets the guard used by protected routes
func WithGuard(guard Guard) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Guard = guard
		return ac
	}
}

// WithAccountService sets the account service
func WithAccountService(svc *AccountService) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Accounts = svc
		return ac
	}
}

// WithRoutes overrides the route paths
func WithRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		if routes != nil {
			ac.Routes = routes
		}
		return ac
	}
}

// NewAuthController returns a controller. It panics if a required
// dependency is missing.
func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		ContextKey: DefaultContextKey,
		Routes: &AuthControllerRoutes{
			Register:      "/auth/register",
			Login:         "/auth/login",
			ValidateToken: "/auth/validate-token",
			Users:         "/users",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Guard == nil {
		panic("Missing Guard in auth controller...")
	}

	if c.Accounts == nil {
		panic("Missing AccountService in auth controller...")
	}

	return c
}

func (a *AuthController) protect(roles ...Role) router.MiddlewareFunc {
	return Protected(a.Guard, GuardConfig{
		Roles:      roles,
		ContextKey: a.ContextKey,
		ErrorHandler: func(ctx router.Context, err error) error {
			return a.fail(ctx, err)
		},
	})
}

// Register handles POST /auth/register. The payload is validated by the
// registration command.
func (a *AuthController) Register(ctx router.Context) error {
	payload := RegisterInput{}
	if err := ctx.Bind(&payload); err != nil {
		return a.fail(ctx, ErrInvalidInput)
	}

	res, err := a.Auther.Register(ctx.Context(), payload)
	if err != nil {
		return a.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, res)
}

// Login handles POST /auth/login
func (a *AuthController) Login(ctx router.Context) error {
	payload := LoginInput{}
	if err := ctx.Bind(&payload); err != nil {
		return a.fail(ctx, ErrInvalidInput)
	}

	if err := payload.Validate(); err != nil {
		return a.fail(ctx, err)
	}

	res, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		a.logInternal(ctx, err)
		return writePublicError(ctx, PublicLoginError(err))
	}

	return ctx.JSON(http.StatusOK, res)
}

// ValidateToken handles GET /auth/validate-token
func (a *AuthController) ValidateToken(ctx router.Context) error {
	account, ok := AccountFromRouter(ctx, a.ContextKey)
	if !ok {
		return a.fail(ctx, ErrUnauthenticated)
	}

	res, err := a.Auther.ValidateSession(ctx.Context(), account.ID.String())
	if err != nil {
		return a.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, res)
}

// ListAccounts handles GET /users
func (a *AuthController) ListAccounts(ctx router.Context) error {
	opts := ListOptions{
		Offset: ctx.QueryInt("offset", 0),
		Limit:  ctx.QueryInt("limit", 0),
		Search: ctx.Query("search", ""),
	}

	records, err := a.Accounts.List(ctx.Context(), opts)
	if err != nil {
		return a.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, records)
}

// GetAccount handles GET /users/:id
func (a *AuthController) GetAccount(ctx router.Context) error {
	record, err := a.Accounts.Get(ctx.Context(), ctx.Param("id", ""))
	if err != nil {
		return a.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, record)
}

// UpdateAccount handles PATCH /users/:id
func (a *AuthController) UpdateAccount(ctx router.Context) error {
	actor, ok := AccountFromRouter(ctx, a.ContextKey)
	if !ok {
		return a.fail(ctx, ErrUnauthenticated)
	}

	payload := UpdateAccountInput{}
	if err := ctx.Bind(&payload); err != nil {
		return a.fail(ctx, ErrInvalidInput)
	}

	if err := payload.Validate(); err != nil {
		return a.fail(ctx, err)
	}

	record, err := a.Accounts.Update(ctx.Context(), actor, ctx.Param("id", ""), payload)
	if err != nil {
		return a.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, record)
}

func (a *AuthController) fail(ctx router.Context, err error) error {
	a.logInternal(ctx, err)
	return WriteError(ctx, err)
}

func (a *AuthController) logInternal(ctx router.Context, err error) {
	if ValidationFields(err) == nil && errors.Is(PublicError(err), ErrInternal) {
		a.Logger.Error("request failed", "method", ctx.Method(), "path", ctx.Path(), "error", err)
	}
}

// WriteError writes err as a JSON error response. Shape validation
// failures carry per field messages, everything else is collapsed with
// PublicError.
func WriteError(ctx router.Context, err error) error {
	if fields := ValidationFields(err); fields != nil {
		verr := goerrors.NewValidationFromMap(ErrInvalidInput.Message, fields).
			WithTextCode(TextCodeInvalidInput).
			WithCode(goerrors.CodeBadRequest)
		return writePublicError(ctx, verr)
	}
	return writePublicError(ctx, PublicError(err))
}

// writePublicError never mutates the shared sentinels
func writePublicError(ctx router.Context, pub *goerrors.Error) error {
	out := pub.Clone()
	out.Location = nil
	out.Source = nil

	status := out.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return ctx.JSON(status, out.ToErrorResponse(false, nil))
}
