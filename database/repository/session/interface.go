package sessionRepo

import (
	"errors"
	"time"

	"pharmalink/models"
)

// ErrNotFound is returned when no session matches the lookup.
var ErrNotFound = errors.New("session not found")

// SessionRepository is the session ledger: it owns every session record,
// active and historical.
type SessionRepository interface {
	// Create inserts a new session record.
	Create(session *models.Session) error
	// GetByID retrieves a session by its unique ID.
	GetByID(id string) (*models.Session, error)
	// GetActive retrieves all sessions with status active.
	GetActive() ([]models.Session, error)
	// GetAll retrieves every session, newest first by startedAt.
	GetAll() ([]models.Session, error)
	// FindActiveByDoctor returns the active session referencing the doctor,
	// or ErrNotFound when there is none.
	FindActiveByDoctor(doctorID string) (*models.Session, error)
	// FindActiveByDevice returns the active session referencing the device,
	// or ErrNotFound when there is none.
	FindActiveByDevice(deviceID string) (*models.Session, error)
	// Terminate moves an active session to the target terminal status and
	// stamps endedAt. The write is conditional on the session still being
	// active; it returns false when the session is absent or already
	// terminal, so a terminal session can never transition again.
	Terminate(id string, target string, endedAt time.Time) (bool, error)
}
