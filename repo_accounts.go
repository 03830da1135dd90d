package identity

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// DefaultListLimit page size when none is given
	DefaultListLimit = 10
	// MaxListLimit upper bound for a single page
	MaxListLimit = 100
)

// Accounts is the store adapter the lifecycle engine uses
type Accounts interface {
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*Account, error)
	FindByEmail(ctx context.Context, email string, includeHash bool) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Insert(ctx context.Context, record *Account) (*Account, error)
	Upgrade(ctx context.Context, record *Account) (*Account, error)
	UpdateFields(ctx context.Context, id string, fields AccountFields) (*Account, error)
	List(ctx context.Context, opts ListOptions) ([]*Account, error)
}

// AccountFields are the profile fields that can be updated after registration.
// Nil pointers are left untouched.
type AccountFields struct {
	Email    *string
	Phone    *string
	FullName *string
}

// IsEmpty reports whether no field is set
func (f AccountFields) IsEmpty() bool {
	return f.Email == nil && f.Phone == nil && f.FullName == nil
}

// ListOptions paginates and filters account listings
type ListOptions struct {
	Offset int    `json:"offset" query:"offset"`
	Limit  int    `json:"limit" query:"limit"`
	Search string `json:"search" query:"search"`
}

func (o ListOptions) normalized() ListOptions {
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	o.Search = strings.TrimSpace(o.Search)
	return o
}

type accounts struct {
	repository.Repository[*Account]
}

var _ Accounts = (*accounts)(nil)

// NewAccountsRepository returns a bun backed Accounts store. db may be a
// *bun.DB or a bun.Tx.
func NewAccountsRepository(db bun.IDB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{Repository: repo}
}

func (a *accounts) FindByEmailOrPhone(ctx context.Context, email, phone string) (*Account, error) {
	record, err := a.Get(ctx,
		repository.ExcludeColumns("password_hash"),
		repository.SelectBy("email", "=", NormalizeEmail(email)),
		repository.SelectOrBy("phone", "=", phone),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return record, nil
}

func (a *accounts) FindByEmail(ctx context.Context, email string, includeHash bool) (*Account, error) {
	criteria := []repository.SelectCriteria{}
	if !includeHash {
		criteria = append(criteria, repository.ExcludeColumns("password_hash"))
	}

	record, err := a.GetByIdentifier(ctx, NormalizeEmail(email), criteria...)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return record, nil
}

func (a *accounts) FindByID(ctx context.Context, id string) (*Account, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrAccountNotFound
	}

	record, err := a.GetByID(ctx, uid.String(), repository.ExcludeColumns("password_hash"))
	if err != nil {
		return nil, mapStoreError(err)
	}

	return record, nil
}

// Insert stores a new account. An id, email or phone already taken
// surfaces as ErrAlreadyExists.
func (a *accounts) Insert(ctx context.Context, record *Account) (*Account, error) {
	if record == nil {
		return nil, goerrors.New("account record is required", goerrors.CategoryBadInput)
	}

	prepareAccountDefaults(record)

	if _, err := a.Create(ctx, record); err != nil {
		return nil, mapStoreError(err)
	}

	return a.FindByID(ctx, record.ID.String())
}

// Upgrade completes the Incomplete account with the same id. The status
// is left as is; only contact fields, the name and a non empty password
// hash are written. An id that is unknown or no longer Incomplete fails
// with ErrAlreadyExists.
func (a *accounts) Upgrade(ctx context.Context, record *Account) (*Account, error) {
	if record == nil || record.ID == uuid.Nil {
		return nil, goerrors.New("account id is required", goerrors.CategoryBadInput)
	}

	columns := []string{"email", "phone", "full_name", "updated_at"}
	if record.PasswordHash != "" {
		columns = append(columns, "password_hash")
	}

	_, err := a.Update(ctx, record,
		repository.UpdateColumns(columns...),
		repository.UpdateBy("status", "=", string(AccountStatusIncomplete)),
	)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAlreadyExists
		}
		return nil, mapStoreError(err)
	}

	return a.FindByID(ctx, record.ID.String())
}

func (a *accounts) UpdateFields(ctx context.Context, id string, fields AccountFields) (*Account, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrAccountNotFound
	}

	record := &Account{ID: uid}
	columns := []string{"updated_at"}

	if fields.Email != nil {
		record.Email = *fields.Email
		columns = append(columns, "email")
	}

	if fields.Phone != nil {
		record.Phone = *fields.Phone
		columns = append(columns, "phone")
	}

	if fields.FullName != nil {
		record.FullName = *fields.FullName
		columns = append(columns, "full_name")
	}

	if _, err := a.Update(ctx, record, repository.UpdateColumns(columns...)); err != nil {
		return nil, mapStoreError(err)
	}

	return a.FindByID(ctx, uid.String())
}

func (a *accounts) List(ctx context.Context, opts ListOptions) ([]*Account, error) {
	opts = opts.normalized()

	criteria := []repository.SelectCriteria{
		repository.ExcludeColumns("password_hash"),
		repository.OrderBy("created_at ASC"),
		repository.Paginate(opts.Limit, opts.Offset),
	}

	if opts.Search != "" {
		term := "%" + strings.ToLower(opts.Search) + "%"
		criteria = append(criteria, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where("LOWER(?TableAlias.full_name) LIKE ?", term).
					WhereOr("LOWER(?TableAlias.email) LIKE ?", term).
					WhereOr("?TableAlias.phone LIKE ?", term)
			})
		}))
	}

	records, _, err := a.Repository.List(ctx, criteria...)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return records, nil
}

// mapStoreError maps driver errors into the package taxonomy. Anything we
// do not recognise is returned unchanged so callers treat it as internal.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case repository.IsRecordNotFound(err):
		return ErrAccountNotFound
	case IsUniqueViolation(err):
		return ErrAlreadyExists
	default:
		return err
	}
}
