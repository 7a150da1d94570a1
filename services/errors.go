package services

import "errors"

// Error kinds surfaced across the store boundary. Everything the facade
// returns wraps one of these, so callers can branch with errors.Is instead
// of matching on backend-specific failures.
var (
	// ErrAuth: no session where one is required, or the identity provider
	// rejected the credentials.
	ErrAuth = errors.New("store: authentication required or rejected")

	// ErrNotFound: a referenced record id does not resolve.
	ErrNotFound = errors.New("store: record not found")

	// ErrNoConnection: no reachable remote store. The facade treats this as
	// the signal to fall through to local storage.
	ErrNoConnection = errors.New("store: no remote connection")

	// ErrValidation: malformed filter or write payload.
	ErrValidation = errors.New("store: invalid payload")

	// ErrPartialWrite: the primary insert succeeded but a follow-up counter
	// or membership write failed. The inserted row is NOT rolled back — the
	// two writes are deliberately non-transactional. Callers get the record
	// together with this error and decide on compensation themselves.
	ErrPartialWrite = errors.New("store: secondary write failed")
)
