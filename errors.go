package identity

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

const (
	TextCodeInvalidPhone       = "INVALID_PHONE_NUMBER"
	TextCodeUserUnderReview    = "USER_IS_BEING_REVIEWED"
	TextCodeAlreadyExists      = "USER_ALREADY_EXIST"
	TextCodeAccountNotFound    = "USER_NOT_FOUND"
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeTokenInvalid       = "TOKEN_INVALID"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeAccountNotActive   = "USER_IS_NOT_ACTIVE"
	TextCodeForbidden          = "FORBIDDEN"
	TextCodeUnauthenticated    = "UNAUTHENTICATED"
	TextCodeInvalidInput       = "INVALID_INPUT"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeSessionNotFound    = "SESSION_NOT_FOUND"
	TextCodeInternalFailure    = "INTERNAL_ERROR"
	TextCodeCannotPerform      = "CANNOT_PERFORM_THIS_ACTION"
)

// ErrInvalidPhone is returned when a phone number cannot be parsed
var ErrInvalidPhone = goerrors.New("invalid phone number", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidPhone).
	WithCode(goerrors.CodeBadRequest)

// ErrUserUnderReview is returned when registering against a Pending account
var ErrUserUnderReview = goerrors.New("user is being reviewed", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserUnderReview).
	WithCode(goerrors.CodeUnauthorized)

// ErrAlreadyExists is returned when the email or phone is taken by a completed account
var ErrAlreadyExists = goerrors.New("user already exist", goerrors.CategoryConflict).
	WithTextCode(TextCodeAlreadyExists).
	WithCode(goerrors.CodeConflict)

// ErrAccountNotFound is the error we return for non found accounts
var ErrAccountNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrInvalidCredentials password does not match the stored hash
var ErrInvalidCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalid token signature or structure is not valid
var ErrTokenInvalid = goerrors.New("token is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired token is past its expiration
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountNotActive a regular user account that has not been activated
var ErrAccountNotActive = goerrors.New("user is not active", goerrors.CategoryAuthz).
	WithTextCode(TextCodeAccountNotActive).
	WithCode(goerrors.CodeForbidden)

// ErrForbidden authenticated but lacking the required role
var ErrForbidden = goerrors.New("user does not have the required role(s) to access this resource", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrCannotPerformAction caller may not act on another account
var ErrCannotPerformAction = goerrors.New("cannot perform this action", goerrors.CategoryAuthz).
	WithTextCode(TextCodeCannotPerform).
	WithCode(goerrors.CodeForbidden)

// ErrUnauthenticated is the single outward signal for any failed token check
var ErrUnauthenticated = goerrors.New("unauthenticated", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToFindSession request carried no bearer token
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidInput request payload failed shape validation
var ErrInvalidInput = goerrors.New("invalid input", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidInput).
	WithCode(goerrors.CodeBadRequest)

// ErrNoEmptyString empty passwords are never hashed
var ErrNoEmptyString = goerrors.New("password can not be an empty string", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrInternal opaque failure, the cause is logged and never returned to clients
var ErrInternal = goerrors.New("internal server error", goerrors.CategoryInternal).
	WithTextCode(TextCodeInternalFailure).
	WithCode(goerrors.CodeInternal)

// PublicError collapses core errors into the taxonomy we expose to clients.
// Token failures and missing accounts become ErrUnauthenticated so callers
// cannot tell which part of the check failed. Anything we do not classify
// is reported as ErrInternal.
func PublicError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrUnableToFindSession),
		errors.Is(err, ErrTokenMissingOrMalformed),
		errors.Is(err, ErrUnauthenticated):
		return ErrUnauthenticated
	}

	for _, known := range []*goerrors.Error{
		ErrInvalidPhone,
		ErrUserUnderReview,
		ErrAlreadyExists,
		ErrAccountNotFound,
		ErrInvalidCredentials,
		ErrAccountNotActive,
		ErrForbidden,
		ErrCannotPerformAction,
		ErrInvalidInput,
		ErrNoEmptyString,
	} {
		if errors.Is(err, known) {
			return known
		}
	}

	return ErrInternal
}

// PublicLoginError is PublicError plus folding a missing account into
// ErrInvalidCredentials, so the login endpoint does not leak which emails exist.
func PublicLoginError(err error) *goerrors.Error {
	if errors.Is(err, ErrAccountNotFound) {
		return ErrInvalidCredentials
	}
	return PublicError(err)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint,
// for both postgres (23505) and sqlite drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
