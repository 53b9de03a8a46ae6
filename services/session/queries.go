package session

import (
	"fmt"

	"pharmalink/models"
)

// Active lists active sessions with their doctor and device embedded.
func (s *DefaultSessionService) Active() ([]models.Session, error) {
	sessions, err := s.Ledger.GetActive()
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	s.populate(sessions)
	return sessions, nil
}

// History lists all sessions, newest first, with doctor and device embedded.
func (s *DefaultSessionService) History() ([]models.Session, error) {
	sessions, err := s.Ledger.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list session history: %w", err)
	}
	s.populate(sessions)
	return sessions, nil
}

// populate embeds the referenced doctor and device records. Lookups are
// best-effort: a record deleted out-of-band simply stays empty on the wire.
func (s *DefaultSessionService) populate(sessions []models.Session) {
	for i := range sessions {
		if doctor, err := s.Registry.GetDoctor(sessions[i].DoctorID); err == nil {
			sessions[i].Doctor = doctor
		}
		if device, err := s.Registry.FindDevice(sessions[i].DeviceID); err == nil {
			sessions[i].Device = device
		}
	}
}
