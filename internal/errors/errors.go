package errors

import "errors"

// Engine error kinds. All are recoverable and reported to the caller as typed
// failures; Map translates them for the transport layer.
var (
	// ErrNotFound means a referenced profile, target, or ledger entry is absent.
	ErrNotFound = errors.New("not found")

	// ErrSelfAction means an actor targeted their own profile.
	ErrSelfAction = errors.New("cannot act on yourself")

	// ErrDuplicateAction means a repeated right/maybe action on the same pair.
	ErrDuplicateAction = errors.New("action already recorded for this pair")

	// ErrInvalidFilter means a discovery filter is missing its mandatory
	// geolocation or carries out-of-range values.
	ErrInvalidFilter = errors.New("invalid discovery filter")

	// ErrInvalidCursor means a pagination token could not be decoded.
	ErrInvalidCursor = errors.New("invalid pagination token")

	// ErrNoRecentAction means there is no swipe available to undo.
	ErrNoRecentAction = errors.New("no recent swipe to undo")

	// ErrUndoExpired means the most recent swipe is outside the undo window.
	ErrUndoExpired = errors.New("undo window expired")
)
