package deviceRepo

import (
	"sync"
	"time"

	"pharmalink/models"
)

// MemoryDeviceRepo is an in-memory DeviceRepository used by tests and by
// deployments running without a persistent store.
type MemoryDeviceRepo struct {
	mu      sync.RWMutex
	devices map[string]*models.Device
}

func NewMemoryDeviceRepo() *MemoryDeviceRepo {
	return &MemoryDeviceRepo{devices: make(map[string]*models.Device)}
}

func (r *MemoryDeviceRepo) Upsert(device *models.Device) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if existing, ok := r.devices[device.DeviceID]; ok {
		existing.GPS = device.GPS
		existing.LastActive = now
		existing.UpdatedAt = now
		return false, nil
	}
	cp := *device
	cp.Status = models.DeviceActive
	cp.LastActive = now
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.devices[device.DeviceID] = &cp
	return true, nil
}

func (r *MemoryDeviceRepo) GetByDeviceID(deviceID string) (*models.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[deviceID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *MemoryDeviceRepo) GetAll() ([]models.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, *d)
	}
	return out, nil
}

func (r *MemoryDeviceRepo) SetStatus(deviceID string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[deviceID]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryDeviceRepo) CompareAndSetStatus(deviceID, expect, target string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[deviceID]
	if !ok || d.Status != expect {
		return false, nil
	}
	d.Status = target
	d.UpdatedAt = time.Now()
	return true, nil
}
