package session

import (
	"fmt"
	"time"

	sessionRepo "pharmalink/database/repository/session"
	"pharmalink/models"

	"go.uber.org/zap"
)

// Complete terminates an active session normally and reverts its resources.
func (s *DefaultSessionService) Complete(sessionID string) (*models.Session, error) {
	return s.terminate(sessionID, models.SessionCompleted, models.SessionEventCompleted)
}

// Cancel terminates an active session prematurely and reverts its resources.
func (s *DefaultSessionService) Cancel(sessionID string) (*models.Session, error) {
	return s.terminate(sessionID, models.SessionCancelled, models.SessionEventCancelled)
}

func (s *DefaultSessionService) terminate(sessionID, target, eventType string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.log()

	sess, err := s.Ledger.GetByID(sessionID)
	if err != nil {
		if err == sessionRepo.ErrNotFound {
			return nil, &NotFoundError{Entity: "session", ID: sessionID}
		}
		return nil, fmt.Errorf("failed to fetch session %s: %w", sessionID, err)
	}
	if sess.Status != models.SessionActive {
		return nil, &InvalidStateError{SessionID: sessionID, Status: sess.Status}
	}

	endedAt := time.Now()
	ok, err := s.Ledger.Terminate(sessionID, target, endedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to terminate session %s: %w", sessionID, err)
	}
	if !ok {
		// Lost a race with another terminate; the session is terminal now.
		return nil, &InvalidStateError{SessionID: sessionID, Status: sess.Status}
	}
	sess.Status = target
	sess.EndedAt = &endedAt

	// Revert the resources. A missing record means the resource was deleted
	// out-of-band; that must not stop the session from terminating.
	doctor, doctorErr := s.Registry.GetDoctor(sess.DoctorID)
	if err := s.Registry.ReleaseDoctor(sess.DoctorID); err != nil {
		logger.Warn("could not release doctor for terminated session",
			zap.String("sessionId", sessionID),
			zap.String("doctorId", sess.DoctorID),
			zap.Error(err))
	}
	device, deviceErr := s.Registry.FindDevice(sess.DeviceID)
	if err := s.Registry.ReleaseDevice(sess.DeviceID); err != nil {
		logger.Warn("could not release device for terminated session",
			zap.String("sessionId", sessionID),
			zap.String("deviceId", sess.DeviceID),
			zap.Error(err))
	}

	isOnline := false
	if doctorErr == nil {
		doctorCopy := *doctor
		doctorCopy.Status = models.DoctorAvailable
		sess.Doctor = &doctorCopy
		isOnline = doctor.IsOnline
	}
	if deviceErr == nil {
		deviceCopy := *device
		deviceCopy.Status = models.DeviceActive
		sess.Device = &deviceCopy
	}

	logger.Info("session terminated",
		zap.String("sessionId", sessionID),
		zap.String("status", target))

	s.Notifier.Publish(models.TopicSessionUpdate, models.SessionEvent{
		Type:    eventType,
		Session: sess,
	})
	s.Notifier.Publish(models.TopicDoctorStatus, models.DoctorStatusEvent{
		DoctorID: sess.DoctorID,
		IsOnline: isOnline,
		Status:   models.DoctorAvailable,
	})

	return sess, nil
}
