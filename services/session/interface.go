// Package session is the coordination engine: it pairs an available doctor
// with an available kiosk device into a session, keeps resource busy flags in
// lockstep with active-session membership, and fans every transition out to
// the dashboard push channel.
package session

import (
	"sync"
	"time"

	sessionRepo "pharmalink/database/repository/session"
	"pharmalink/models"
	"pharmalink/services/notifier"
	"pharmalink/services/registry"

	"go.uber.org/zap"
)

// SessionService defines the session coordination operations.
type SessionService interface {
	// Initiate pairs the device with a doctor and opens a session.
	// doctorID is optional; when empty any online available doctor is used.
	Initiate(deviceID, patientName, doctorID string) (*models.Session, error)
	// Complete terminates an active session normally.
	Complete(sessionID string) (*models.Session, error)
	// Cancel terminates an active session prematurely.
	Cancel(sessionID string) (*models.Session, error)
	// Active lists active sessions with doctor and device embedded.
	Active() ([]models.Session, error)
	// History lists all sessions, newest first, with doctor and device embedded.
	History() ([]models.Session, error)
}

// Watchdog schedules the forced expiry of a session that outlives the
// configured maximum duration.
type Watchdog interface {
	ScheduleExpiry(sessionID string, delay time.Duration) error
}

// DefaultSessionService implements SessionService. All mutating operations
// run under a single mutex: this instance is the sole coordination authority,
// and one mutation at a time keeps the busy-iff-active invariant checkable at
// every step. The store-level compare-and-set writes are a second line of
// defense against drifted status flags.
type DefaultSessionService struct {
	Registry registry.ResourceRegistry
	Ledger   sessionRepo.SessionRepository
	Notifier notifier.Notifier
	// Watchdog is optional; when nil sessions never expire automatically.
	Watchdog    Watchdog
	MaxDuration time.Duration
	Logger      *zap.Logger

	mu sync.Mutex
}

func (s *DefaultSessionService) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}
