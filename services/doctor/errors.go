package doctor

import "errors"

var (
	// ErrInvalidCredentials is returned when the email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when the registration email is already in use.
	ErrEmailTaken = errors.New("doctor already exists")
	// ErrNotFound is returned when the doctor record is absent.
	ErrNotFound = errors.New("doctor not found")
)
