package doctorRepo

import (
	"sync"
	"time"

	"pharmalink/models"
)

// MemoryDoctorRepo is an in-memory DoctorRepository used by tests and by
// deployments running without a persistent store.
type MemoryDoctorRepo struct {
	mu      sync.RWMutex
	doctors map[string]*models.Doctor
}

func NewMemoryDoctorRepo() *MemoryDoctorRepo {
	return &MemoryDoctorRepo{doctors: make(map[string]*models.Doctor)}
}

func (r *MemoryDoctorRepo) Create(doctor *models.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doctor
	r.doctors[doctor.ID] = &cp
	return nil
}

func (r *MemoryDoctorRepo) GetByID(id string) (*models.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *MemoryDoctorRepo) GetByEmail(email string) (*models.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.doctors {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryDoctorRepo) GetAll() ([]models.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		out = append(out, *d)
	}
	return out, nil
}

func (r *MemoryDoctorRepo) GetOnline() ([]models.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Doctor
	for _, d := range r.doctors {
		if d.IsOnline {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *MemoryDoctorRepo) FindMatchable() (*models.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.doctors {
		if d.Matchable() {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryDoctorRepo) SetOnline(id string, online bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return ErrNotFound
	}
	d.IsOnline = online
	d.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryDoctorRepo) SetStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryDoctorRepo) CompareAndSetStatus(id, expect, target string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok || d.Status != expect {
		return false, nil
	}
	d.Status = target
	d.UpdatedAt = time.Now()
	return true, nil
}
