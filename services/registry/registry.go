// Package registry tracks availability for the two resource pools the
// matcher draws from: on-call doctors and pharmacy kiosk devices.
package registry

import (
	"fmt"

	deviceRepo "pharmalink/database/repository/device"
	doctorRepo "pharmalink/database/repository/doctor"
	"pharmalink/models"
)

// ErrNotFound is returned by lookups for absent resources.
var ErrNotFound = fmt.Errorf("resource not found")

// ResourceRegistry exposes availability state for doctors and devices.
// Claim operations are compare-and-set: exactly one of any number of
// concurrent claims on the same resource succeeds. Release operations are
// unconditional so a revert can never be lost to a stale status flag.
type ResourceRegistry interface {
	// FindAvailableDoctor returns any doctor that is online and available.
	// Selection is first-found; there is no fairness guarantee.
	FindAvailableDoctor() (*models.Doctor, error)
	// GetDoctor returns the doctor with the given ID.
	GetDoctor(id string) (*models.Doctor, error)
	// FindDevice returns the device with the given device identifier.
	FindDevice(deviceID string) (*models.Device, error)
	// ClaimDoctor flips the doctor from available to busy. False means the
	// doctor was absent or not available.
	ClaimDoctor(id string) (bool, error)
	// ReleaseDoctor reverts the doctor to available.
	ReleaseDoctor(id string) error
	// ClaimDevice flips the device from active to busy. False means the
	// device was absent or not active.
	ClaimDevice(deviceID string) (bool, error)
	// ReleaseDevice reverts the device to active.
	ReleaseDevice(deviceID string) error
}

// DefaultResourceRegistry implements ResourceRegistry over the doctor and
// device repositories.
type DefaultResourceRegistry struct {
	Doctors doctorRepo.DoctorRepository
	Devices deviceRepo.DeviceRepository
}

func (r *DefaultResourceRegistry) FindAvailableDoctor() (*models.Doctor, error) {
	doctor, err := r.Doctors.FindMatchable()
	if err != nil {
		if err == doctorRepo.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find available doctor: %w", err)
	}
	return doctor, nil
}

func (r *DefaultResourceRegistry) GetDoctor(id string) (*models.Doctor, error) {
	doctor, err := r.Doctors.GetByID(id)
	if err != nil {
		if err == doctorRepo.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch doctor %s: %w", id, err)
	}
	return doctor, nil
}

func (r *DefaultResourceRegistry) FindDevice(deviceID string) (*models.Device, error) {
	device, err := r.Devices.GetByDeviceID(deviceID)
	if err != nil {
		if err == deviceRepo.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch device %s: %w", deviceID, err)
	}
	return device, nil
}

func (r *DefaultResourceRegistry) ClaimDoctor(id string) (bool, error) {
	return r.Doctors.CompareAndSetStatus(id, models.DoctorAvailable, models.DoctorBusy)
}

func (r *DefaultResourceRegistry) ReleaseDoctor(id string) error {
	if err := r.Doctors.SetStatus(id, models.DoctorAvailable); err != nil {
		if err == doctorRepo.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to release doctor %s: %w", id, err)
	}
	return nil
}

func (r *DefaultResourceRegistry) ClaimDevice(deviceID string) (bool, error) {
	return r.Devices.CompareAndSetStatus(deviceID, models.DeviceActive, models.DeviceBusy)
}

func (r *DefaultResourceRegistry) ReleaseDevice(deviceID string) error {
	if err := r.Devices.SetStatus(deviceID, models.DeviceActive); err != nil {
		if err == deviceRepo.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to release device %s: %w", deviceID, err)
	}
	return nil
}
