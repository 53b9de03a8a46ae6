package session

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a referenced doctor, device or session does not
// exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("no %s found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// UnavailableError reports that a doctor or device is not in a matchable
// state.
type UnavailableError struct {
	Entity string
	ID     string
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s %s unavailable: %s", e.Entity, e.ID, e.Reason)
}

// InvalidStateError reports an operation on a session that is not active.
type InvalidStateError struct {
	SessionID string
	Status    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session %s is not active (status %s)", e.SessionID, e.Status)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsUnavailable reports whether err is an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var is *InvalidStateError
	return errors.As(err, &is)
}
