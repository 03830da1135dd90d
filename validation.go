package identity

import (
	"errors"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 50
	// bcrypt only reads the first 72 bytes
	maxPasswordBytes = 72
)

// RegisterInput is the registration payload. Password is optional, accounts
// registered without one stay Incomplete until claimed.
type RegisterInput struct {
	Email    string `json:"email" form:"email"`
	FullName string `json:"full_name" form:"full_name"`
	Phone    string `json:"phone" form:"phone"`
	Password string `json:"password,omitempty" form:"password"`
}

// Validate checks the shape of the payload
func (r RegisterInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Phone, validation.Required, validation.Length(4, 32)),
		validation.Field(&r.Password,
			validation.RuneLength(minPasswordLength, maxPasswordLength),
			validation.By(passwordBytes),
			validation.By(passwordStrength),
		),
	)
}

// LoginInput is the login payload
type LoginInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate checks the shape of the payload
func (l LoginInput) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Email, validation.Required, is.Email),
		validation.Field(&l.Password, validation.Required),
	)
}

// UpdateAccountInput holds profile changes, nil fields are left untouched
type UpdateAccountInput struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// Validate checks the shape of the payload
func (u UpdateAccountInput) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&u.FullName, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&u.Phone, validation.NilOrNotEmpty, validation.Length(4, 32)),
	)
}

func passwordBytes(value any) error {
	password, _ := value.(string)
	if len(password) > maxPasswordBytes {
		return errors.New("must be at most 72 bytes long")
	}
	return nil
}

// passwordStrength requires an upper and a lower case letter plus a digit or symbol
func passwordStrength(value any) error {
	password, _ := value.(string)
	if password == "" {
		return nil
	}

	var upper, lower, other bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			other = true
		}
	}

	if strings.ContainsRune(password, '\n') || !upper || !lower || !other {
		return errors.New("must have an uppercase letter, a lowercase letter and a number")
	}

	return nil
}

// ValidationFields returns the per field messages of an ozzo validation
// error, or nil if err is not one.
func ValidationFields(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for name, ferr := range verrs {
		if ferr != nil {
			fields[name] = ferr.Error()
		}
	}
	return fields
}
