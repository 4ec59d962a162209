package todo

import "errors"

// ValidationError rejects an operation before any network call is made,
// for example creating a todo with empty text.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NetworkError wraps a request that failed or timed out. The engine
// rolls the affected bucket back by refetching it; the write is never
// retried automatically.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// ConflictError wraps a write the server rejected, e.g. the item was
// already deleted by another client. Handled like NetworkError: the
// optimistic change is rolled back via refetch.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string { return e.Err.Error() }
func (e *ConflictError) Unwrap() error { return e.Err }

// IsValidation reports whether err chains to a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork reports whether err chains to a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsConflict reports whether err chains to a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
