package deviceRepo

import (
	"errors"

	"pharmalink/models"
)

// ErrNotFound is returned when no device matches the lookup.
var ErrNotFound = errors.New("device not found")

// DeviceRepository defines methods for kiosk device data access.
type DeviceRepository interface {
	// Upsert inserts the device or, when the deviceId already exists,
	// refreshes its GPS fix and lastActive timestamp. It reports whether a
	// new record was created.
	Upsert(device *models.Device) (bool, error)
	// GetByDeviceID retrieves a device by its unique device identifier.
	GetByDeviceID(deviceID string) (*models.Device, error)
	// GetAll retrieves all registered devices.
	GetAll() ([]models.Device, error)
	// SetStatus sets the device status unconditionally.
	SetStatus(deviceID string, status string) error
	// CompareAndSetStatus flips the status from expect to target. It returns
	// false when the device is absent or its current status is not expect.
	CompareAndSetStatus(deviceID, expect, target string) (bool, error)
}
