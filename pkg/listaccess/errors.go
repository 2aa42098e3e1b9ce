package listaccess

import (
	"errors"
	"fmt"
)

// ErrListNotConfigured matches ListNotConfiguredError via errors.Is.
var ErrListNotConfigured = errors.New("list is not configured")

// ListNotConfiguredError indicates a semantic list key with no mapped remote
// list identifier. This is a deployment misconfiguration and is fatal for
// the requesting screen; it must never be silently swallowed.
type ListNotConfiguredError struct {
	Key string
}

func (e *ListNotConfiguredError) Error() string {
	return fmt.Sprintf("no list identifier configured for %q", e.Key)
}

// Is reports whether target is ErrListNotConfigured.
func (e *ListNotConfiguredError) Is(target error) bool {
	return target == ErrListNotConfigured
}

// ErrNoWritableFields indicates an update whose admitted field set came out
// empty after whitelist/blacklist filtering. The update is failed explicitly
// instead of issuing a vacuous write that would look successful.
var ErrNoWritableFields = errors.New("no writable fields in update")
