package contract

import "errors"

// Error taxonomy for the contract. Operations wrap these sentinels with
// fmt.Errorf("...: %w", ...) so callers and tests can match categories with
// errors.Is while still seeing the specific record and reason in the message.
var (
	// ErrUnauthorized means the caller lacks the required authority or
	// ownership for the operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput covers malformed categories, non-future expiry times,
	// oversized or empty strings, and bad identity hashes.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the referenced record or registry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyTerminal means the record already completed its one-way
	// transition: resolving a resolved alert, revoking a revoked credential.
	ErrAlreadyTerminal = errors.New("already in terminal state")

	// ErrAlreadyInitialized means a record with a fixed address (a registry
	// singleton, an emergency contact type) was created twice.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrConsistencyViolation means a freshly derived address is already
	// occupied. Sequence counters never hand out the same number twice, so
	// this indicates a counter or key-derivation bug and is not recoverable
	// by the caller.
	ErrConsistencyViolation = errors.New("consistency violation")
)
