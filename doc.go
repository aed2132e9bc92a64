// Package membership provides a credential and role-membership store for
// application users: account creation, password validation, lockout and
// activation state, soft/hard deletion, and membership in a small fixed set
// of roles.
//
// Password handling:
//   - Credentials are stored as salted, iterated PBKDF2 derivations. The
//     iteration count is picked uniformly at random per account from a
//     configured range so accounts do not share a predictable cost factor.
//     Verification recomputes the derivation and compares in constant time.
//
// Login lifecycle:
//   - Logins carry a LoginStatus field that is persisted via Bun. Soft
//     deletion re-tags the record and hides it from active lookups while the
//     data stays retrievable through the deleted-record view; hard deletion
//     purges the row for good. Lockout is an orthogonal flag that blocks
//     validation until cleared.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Provider and
//     RoleProvider to describe creation, deletion, lockout, validation, and
//     role membership events. Sinks run best-effort (errors are logged) so
//     you can forward events to a database or queue without blocking callers.
package membership
