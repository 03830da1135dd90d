package identity

import (
	"context"
	"fmt"
	"strings"
)

// Logger is the structured logger used across the package. Args are
// key/value pairs, e.g. logger.Error("login failed", "error", err).
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds identity options. Values are read once at construction time.
type Config interface {
	GetSigningKey() string
	// GetTokenExpiration in hours
	GetTokenExpiration() int
	GetPasswordHashCost() int
	GetDefaultPhoneRegion() string
}

// Authenticator is the public entry point used by transports
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	ValidateSession(ctx context.Context, accountID string) (*AuthResponse, error)
	SessionFromToken(token string) (string, error)
}

// Guard authorizes a bearer token against a required role set
type Guard interface {
	Authorize(ctx context.Context, requiredRoles Roles, token string) (*Account, error)
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	Verify(password, hash string) bool
}

// AuthResponse is returned by register, login and session validation
type AuthResponse struct {
	Account *Account `json:"user"`
	Token   string   `json:"token"`
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] IDENTITY " + format(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] IDENTITY " + format(msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] IDENTITY " + format(msg, args...))
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] IDENTITY " + format(msg, args...))
}

func format(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	b.WriteString("\n")
	return b.String()
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
