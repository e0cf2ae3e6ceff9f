package service

import "errors"

// Sentinel errors shared by all services. Callers distinguish outcomes with
// errors.Is; the HTTP layer maps them onto status codes.
var (
	// ErrNotFound means a referenced entity id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers uniqueness violations, SKU collisions, moves that
	// would create a cycle and deletions blocked by dependent entities.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials means the email or password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInactiveUser means the account exists but has been deactivated.
	ErrInactiveUser = errors.New("user account is inactive")
)
