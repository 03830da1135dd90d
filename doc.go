// Package identity provides account registration, password login, bearer
// token sessions and role based authorization backed by a bun store.
//
// Account lifecycle:
//   - Accounts carry an AccountStatus: Incomplete, Pending, Active or Blocked.
//     Registration only ever creates Incomplete accounts. Moving an account to
//     Pending, Active or Blocked is left to administrative tooling.
//   - Registering with an email or phone that belongs to an Incomplete account
//     completes that same account in place (same id) instead of failing.
//     Pending accounts report ErrUserUnderReview, any other status
//     ErrAlreadyExists.
//
// Sessions:
//   - Tokens are HS256 JWTs carrying only the account id, valid for 12 days
//     by default. The account is re-read on every validation so status and
//     role changes take effect on tokens already issued.
//
// Errors:
//   - Core operations return the package sentinels unchanged. Transports call
//     PublicError (or PublicLoginError) to collapse token failures into
//     ErrUnauthenticated and hide unclassified failures behind ErrInternal.
package identity
