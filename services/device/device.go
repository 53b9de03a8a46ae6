// Package device handles kiosk registration and heartbeats. Registration is
// an upsert: a known deviceId just refreshes its GPS fix and lastActive,
// status is never touched so a busy kiosk stays busy across heartbeats.
package device

import (
	"fmt"

	deviceRepo "pharmalink/database/repository/device"
	"pharmalink/models"

	"go.uber.org/zap"
)

// DeviceService manages kiosk device records.
type DeviceService interface {
	// Register upserts the device and reports whether it was newly created.
	Register(deviceID string, gps models.GPS) (*models.Device, bool, error)
	// List returns all registered devices.
	List() ([]models.Device, error)
}

// DefaultDeviceService implements DeviceService.
type DefaultDeviceService struct {
	Repo   deviceRepo.DeviceRepository
	Logger *zap.Logger
}

func (s *DefaultDeviceService) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

func (s *DefaultDeviceService) Register(deviceID string, gps models.GPS) (*models.Device, bool, error) {
	created, err := s.Repo.Upsert(&models.Device{DeviceID: deviceID, GPS: gps})
	if err != nil {
		return nil, false, fmt.Errorf("failed to register device %s: %w", deviceID, err)
	}
	device, err := s.Repo.GetByDeviceID(deviceID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch device %s after upsert: %w", deviceID, err)
	}

	if created {
		s.log().Info("device registered", zap.String("deviceId", deviceID))
	} else {
		s.log().Debug("device heartbeat", zap.String("deviceId", deviceID))
	}
	return device, created, nil
}

func (s *DefaultDeviceService) List() ([]models.Device, error) {
	devices, err := s.Repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}
