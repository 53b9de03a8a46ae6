package session

import (
	"fmt"
	"time"

	sessionRepo "pharmalink/database/repository/session"
	"pharmalink/models"
	"pharmalink/services/registry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Initiate validates the device, resolves a doctor, and performs the pairing
// as a single transaction: mark device busy, mark doctor busy, create the
// ledger entry. If any step fails the earlier marks are rolled back so no
// resource is ever left busy without an active session referencing it.
func (s *DefaultSessionService) Initiate(deviceID, patientName, doctorID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.log()

	device, err := s.Registry.FindDevice(deviceID)
	if err != nil {
		if err == registry.ErrNotFound {
			return nil, &NotFoundError{Entity: "device", ID: deviceID}
		}
		return nil, fmt.Errorf("failed to resolve device %s: %w", deviceID, err)
	}
	if device.Status != models.DeviceActive {
		return nil, &UnavailableError{Entity: "device", ID: deviceID, Reason: "device is not active"}
	}

	// The registry status should already reflect this, but the ledger check
	// keeps a drifted status flag from double-booking the device.
	if _, err := s.Ledger.FindActiveByDevice(deviceID); err == nil {
		return nil, &UnavailableError{Entity: "device", ID: deviceID, Reason: "device is already in an active session"}
	} else if err != sessionRepo.ErrNotFound {
		return nil, fmt.Errorf("failed to check active sessions for device %s: %w", deviceID, err)
	}

	doctor, err := s.resolveDoctor(doctorID)
	if err != nil {
		return nil, err
	}

	// Same drift guard on the doctor side.
	if _, err := s.Ledger.FindActiveByDoctor(doctor.ID); err == nil {
		return nil, &UnavailableError{Entity: "doctor", ID: doctor.ID, Reason: "doctor is already in an active session"}
	} else if err != sessionRepo.ErrNotFound {
		return nil, fmt.Errorf("failed to check active sessions for doctor %s: %w", doctor.ID, err)
	}

	session, err := s.pair(device, doctor, patientName)
	if err != nil {
		return nil, err
	}

	if s.Watchdog != nil {
		if err := s.Watchdog.ScheduleExpiry(session.ID, s.MaxDuration); err != nil {
			logger.Warn("failed to schedule session expiry",
				zap.String("sessionId", session.ID), zap.Error(err))
		}
	}

	logger.Info("session initiated",
		zap.String("sessionId", session.ID),
		zap.String("deviceId", device.DeviceID),
		zap.String("doctorId", doctor.ID))

	s.Notifier.Publish(models.TopicSessionUpdate, models.SessionEvent{
		Type:    models.SessionEventInitiated,
		Session: session,
	})
	s.Notifier.Publish(models.TopicDoctorStatus, models.DoctorStatusEvent{
		DoctorID: doctor.ID,
		IsOnline: doctor.IsOnline,
		Status:   models.DoctorBusy,
	})

	return session, nil
}

// resolveDoctor fetches the requested doctor or picks any matchable one.
func (s *DefaultSessionService) resolveDoctor(doctorID string) (*models.Doctor, error) {
	if doctorID != "" {
		doctor, err := s.Registry.GetDoctor(doctorID)
		if err != nil {
			if err == registry.ErrNotFound {
				return nil, &NotFoundError{Entity: "doctor", ID: doctorID}
			}
			return nil, fmt.Errorf("failed to resolve doctor %s: %w", doctorID, err)
		}
		if !doctor.Matchable() {
			return nil, &UnavailableError{Entity: "doctor", ID: doctorID, Reason: "doctor is not available"}
		}
		return doctor, nil
	}

	doctor, err := s.Registry.FindAvailableDoctor()
	if err != nil {
		if err == registry.ErrNotFound {
			return nil, &NotFoundError{Entity: "available doctor"}
		}
		return nil, fmt.Errorf("failed to find an available doctor: %w", err)
	}
	return doctor, nil
}

// pair executes the reserve-two-locks-plus-create-a-record step. Claims are
// compare-and-set, so a racing initiate for the same resource loses here even
// if it passed the earlier checks.
func (s *DefaultSessionService) pair(device *models.Device, doctor *models.Doctor, patientName string) (*models.Session, error) {
	logger := s.log()

	claimed, err := s.Registry.ClaimDevice(device.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim device %s: %w", device.DeviceID, err)
	}
	if !claimed {
		return nil, &UnavailableError{Entity: "device", ID: device.DeviceID, Reason: "device is not active"}
	}

	claimed, err = s.Registry.ClaimDoctor(doctor.ID)
	if err != nil || !claimed {
		if rbErr := s.Registry.ReleaseDevice(device.DeviceID); rbErr != nil {
			logger.Error("rollback failed: device left busy",
				zap.String("deviceId", device.DeviceID), zap.Error(rbErr))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to claim doctor %s: %w", doctor.ID, err)
		}
		return nil, &UnavailableError{Entity: "doctor", ID: doctor.ID, Reason: "doctor is not available"}
	}

	session := &models.Session{
		ID:          uuid.New().String(),
		DoctorID:    doctor.ID,
		DeviceID:    device.DeviceID,
		PatientName: patientName,
		Status:      models.SessionActive,
		StartedAt:   time.Now(),
	}
	if err := s.Ledger.Create(session); err != nil {
		// Both resources are marked busy with no ledger entry to justify it.
		// Undo the marks rather than leave orphaned-busy state behind.
		if rbErr := s.Registry.ReleaseDoctor(doctor.ID); rbErr != nil {
			logger.Error("rollback failed: doctor left busy",
				zap.String("doctorId", doctor.ID), zap.Error(rbErr))
		}
		if rbErr := s.Registry.ReleaseDevice(device.DeviceID); rbErr != nil {
			logger.Error("rollback failed: device left busy",
				zap.String("deviceId", device.DeviceID), zap.Error(rbErr))
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	deviceCopy := *device
	deviceCopy.Status = models.DeviceBusy
	doctorCopy := *doctor
	doctorCopy.Status = models.DoctorBusy
	session.Device = &deviceCopy
	session.Doctor = &doctorCopy

	return session, nil
}
