package adminRepo

import (
	"sync"

	"pharmalink/models"
)

// MemoryAdminRepo is an in-memory AdminRepository used by tests.
type MemoryAdminRepo struct {
	mu     sync.RWMutex
	admins map[string]*models.Admin
}

func NewMemoryAdminRepo() *MemoryAdminRepo {
	return &MemoryAdminRepo{admins: make(map[string]*models.Admin)}
}

func (r *MemoryAdminRepo) Create(admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *admin
	r.admins[admin.ID] = &cp
	return nil
}

func (r *MemoryAdminRepo) GetByID(id string) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.admins[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryAdminRepo) GetByEmail(email string) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
