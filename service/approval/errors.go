package approval

import "errors"

var (
	// ErrActionNotFound is returned when no action with the given id exists
	// within the caller's ownership scope. Another user's action is
	// indistinguishable from an absent one.
	ErrActionNotFound = errors.New("approval: action not found")

	// ErrActionNotPending is returned when the action has already been
	// resolved. A caller losing a concurrent resolution race observes this
	// error, never a silent second success.
	ErrActionNotPending = errors.New("approval: action is not pending")

	// ErrActionExpired is returned when an approval arrives past the
	// action's deadline; the action transitions to expired as a side effect.
	ErrActionExpired = errors.New("approval: action has expired")

	// ErrQueueUnavailable is returned when the backing store cannot accept
	// a new pending action.
	ErrQueueUnavailable = errors.New("approval: queue unavailable")
)
