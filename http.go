package identity

import (
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

const (
	// DefaultContextKey is the request store key holding the authorized account
	DefaultContextKey = "account"
	// DefaultTokenLookup reads the token from the Authorization header
	DefaultTokenLookup = "header:" + router.HeaderAuthorization
	// DefaultAuthScheme is the Authorization header scheme
	DefaultAuthScheme = "Bearer"
)

// ErrTokenMissingOrMalformed no token could be extracted from the request
var ErrTokenMissingOrMalformed = goerrors.New("missing or malformed token", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(goerrors.CodeUnauthorized)

// GuardConfig configures the Protected middleware
type GuardConfig struct {
	// Filter skips the middleware when it returns true
	Filter func(router.Context) bool
	// SuccessHandler runs after a successful check instead of the next
	// handler in the chain
	SuccessHandler router.HandlerFunc
	ErrorHandler   func(router.Context, error) error
	// Roles required to pass, empty accepts any authenticated account
	Roles       Roles
	ContextKey  string
	TokenLookup string
	AuthScheme  string
}

// Protected returns a router middleware that authorizes the request bearer
// token with guard. On success the account is stored in the request store
// under ContextKey and in the request context.
func Protected(guard Guard, config ...GuardConfig) router.MiddlewareFunc {
	cfg := guardDefaults(config...)
	extractors := TokenExtractors(cfg.TokenLookup, cfg.AuthScheme)

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return next(ctx)
			}

			raw, err := ExtractToken(ctx, extractors)
			if err != nil {
				return cfg.ErrorHandler(ctx, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrUnableToFindSession))
			}

			account, err := guard.Authorize(ctx.Context(), cfg.Roles, raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Set(cfg.ContextKey, account)
			ctx.SetContext(WithContext(ctx.Context(), account))

			if cfg.SuccessHandler != nil {
				return cfg.SuccessHandler(ctx)
			}

			return next(ctx)
		}
	}
}

func guardDefaults(config ...GuardConfig) (cfg GuardConfig) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = WriteError
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = DefaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = DefaultAuthScheme
	}

	return cfg
}

// TokenExtractor pulls a raw token out of a request
type TokenExtractor func(ctx router.Context) (string, error)

// TokenExtractors builds extractors from a lookup string such as
// "header:Authorization,query:auth_token,param:token"
func TokenExtractors(tokenLookup, authScheme string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}

		source, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		switch source {
		case "header":
			extractors = append(extractors, tokenFromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(name))
		case "param":
			extractors = append(extractors, tokenFromParam(name))
		}
	}

	return extractors
}

// ExtractToken returns the first token any extractor finds
func ExtractToken(ctx router.Context, extractors []TokenExtractor) (string, error) {
	for _, extractor := range extractors {
		raw, err := extractor(ctx)
		if raw != "" && err == nil {
			return raw, nil
		}
	}
	return "", ErrTokenMissingOrMalformed
}

func tokenFromHeader(header, authScheme string) TokenExtractor {
	authScheme = strings.TrimSpace(authScheme)
	return func(ctx router.Context) (string, error) {
		a := ctx.Header(header)
		l := len(authScheme)
		if l == 0 {
			if a = strings.TrimSpace(a); a != "" {
				return a, nil
			}
			return "", ErrTokenMissingOrMalformed
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			if token := strings.TrimSpace(a[l:]); token != "" {
				return token, nil
			}
		}
		return "", ErrTokenMissingOrMalformed
	}
}

func tokenFromQuery(param string) TokenExtractor {
	return func(ctx router.Context) (string, error) {
		token := ctx.Query(param, "")
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

func tokenFromParam(param string) TokenExtractor {
	return func(ctx router.Context) (string, error) {
		token := ctx.Param(param, "")
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}
