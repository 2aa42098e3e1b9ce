package identity

import "errors"

// ErrAuthUnavailable indicates the identity provider could not be reached.
// Callers surface this as a blocking condition; it is not retried here.
var ErrAuthUnavailable = errors.New("identity provider unreachable")

// ErrInteractionRequired matches InteractionRequiredError via errors.Is.
var ErrInteractionRequired = errors.New("interactive sign-in required")

// InteractionRequiredError is returned when silent token acquisition is not
// possible. It carries the login URL for the full-navigation interactive
// flow; the flow resumes via Provider.CompleteRedirect on a later run, so
// this is a terminal state for the current call, not a recoverable error.
type InteractionRequiredError struct {
	LoginURL string
}

func (e *InteractionRequiredError) Error() string {
	return "interactive sign-in required"
}

// Is reports whether target is ErrInteractionRequired.
func (e *InteractionRequiredError) Is(target error) bool {
	return target == ErrInteractionRequired
}
