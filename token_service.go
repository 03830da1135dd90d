package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultTokenExpiration is 12 days, in hours
const DefaultTokenExpiration = 12 * 24

// TokenService issues and verifies bearer tokens
type TokenService interface {
	Issue(accountID string) (string, error)
	Verify(token string) (string, error)
}

// TokenServiceImpl implements TokenService with HS256 JWTs
type TokenServiceImpl struct {
	signingKey []byte
	expiration time.Duration
	now        func() time.Time
	logger     Logger
}

// TokenOption customizes the token service
type TokenOption func(*TokenServiceImpl)

// WithTokenClock injects a custom clock (useful for tests)
func WithTokenClock(clock func() time.Time) TokenOption {
	return func(ts *TokenServiceImpl) {
		if clock != nil {
			ts.now = clock
		}
	}
}

// WithTokenLogger overrides the logger
func WithTokenLogger(logger Logger) TokenOption {
	return func(ts *TokenServiceImpl) {
		ts.logger = normalizeLogger(logger)
	}
}

// NewTokenService creates a new TokenService. tokenExpiration is in hours,
// zero or negative values use DefaultTokenExpiration.
func NewTokenService(signingKey []byte, tokenExpiration int, opts ...TokenOption) *TokenServiceImpl {
	if tokenExpiration <= 0 {
		tokenExpiration = DefaultTokenExpiration
	}

	key := make([]byte, len(signingKey))
	copy(key, signingKey)

	ts := &TokenServiceImpl{
		signingKey: key,
		expiration: time.Duration(tokenExpiration) * time.Hour,
		now:        time.Now,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// NewTokenServiceFromConfig builds the service from Config
func NewTokenServiceFromConfig(cfg Config, opts ...TokenOption) *TokenServiceImpl {
	return NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetTokenExpiration(), opts...)
}

// Expiration returns the validity window of issued tokens
func (ts *TokenServiceImpl) Expiration() time.Duration {
	return ts.expiration
}

// Issue signs a token for accountID that expires after the configured window
func (ts *TokenServiceImpl) Issue(accountID string) (string, error) {
	if strings.TrimSpace(accountID) == "" {
		return "", goerrors.New("account id is required", goerrors.CategoryBadInput)
	}

	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiration)),
		},
		AccountID: accountID,
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Verify checks signature and expiry and returns the account id
func (ts *TokenServiceImpl) Verify(tokenString string) (string, error) {
	claims, err := ts.Validate(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID(), nil
}

// Validate parses and validates a token string, returning its claims
func (ts *TokenServiceImpl) Validate(tokenString string) (*JWTClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Debug("token service unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		ts.logger.Debug("token service validation failed", "error", err)
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.AccountID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
