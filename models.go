package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the lifecycle status of an account
type AccountStatus string

const (
	// AccountStatusIncomplete is the initial status, the account may be claimed
	AccountStatusIncomplete AccountStatus = "Incomplete"
	// AccountStatusPending is under administrative review
	AccountStatusPending AccountStatus = "Pending"
	// AccountStatusActive fully activated account
	AccountStatusActive AccountStatus = "Active"
	// AccountStatusBlocked account was blocked by an administrator
	AccountStatusBlocked AccountStatus = "Blocked"
)

// IsValid checks the status is one of the known values
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusIncomplete, AccountStatusPending, AccountStatusActive, AccountStatusBlocked:
		return true
	default:
		return false
	}
}

// Account is the account model
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID     `bun:"id,pk" json:"id"`
	Email         string        `bun:"email,notnull,unique" json:"email"`
	Phone         string        `bun:"phone,notnull,unique" json:"phone"`
	FullName      string        `bun:"full_name,notnull" json:"full_name"`
	PasswordHash  string        `bun:"password_hash,nullzero" json:"-"`
	Status        AccountStatus `bun:"status,notnull" json:"status"`
	Roles         Roles         `bun:"roles,notnull" json:"roles"`
	CreatedAt     time.Time     `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time     `bun:"updated_at,notnull" json:"updated_at"`
}

var _ bun.BeforeAppendModelHook = (*Account)(nil)

// BeforeAppendModel normalizes the email and maintains timestamps on every write
func (a *Account) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		a.Email = NormalizeEmail(a.Email)
		now := time.Now().UTC()
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		a.UpdatedAt = now
	case *bun.UpdateQuery:
		a.Email = NormalizeEmail(a.Email)
		a.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// EnsureStatus sets the default status if none is present
func (a *Account) EnsureStatus() {
	if a.Status == "" {
		a.Status = AccountStatusIncomplete
	}
}

// HasPassword reports whether the account holds a password hash
func (a *Account) HasPassword() bool {
	return a != nil && a.PasswordHash != ""
}

// IsActive checks the account status
func (a *Account) IsActive() bool {
	return a != nil && a.Status == AccountStatusActive
}

// Sanitized returns a copy without the password hash
func (a *Account) Sanitized() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.PasswordHash = ""
	if a.Roles != nil {
		clone.Roles = append(Roles(nil), a.Roles...)
	}
	return &clone
}

// NormalizeEmail lowercases and trims an email before it is persisted or queried
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	record.Roles = record.Roles.Normalize()
	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
