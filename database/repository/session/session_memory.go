package sessionRepo

import (
	"sort"
	"sync"
	"time"

	"pharmalink/models"
)

// MemorySessionRepo is an in-memory SessionRepository used by tests and by
// deployments running without a persistent store.
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *MemorySessionRepo) Create(session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	cp.Doctor = nil
	cp.Device = nil
	r.sessions[session.ID] = &cp
	return nil
}

func (r *MemorySessionRepo) GetByID(id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MemorySessionRepo) GetActive() ([]models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Session
	for _, s := range r.sessions {
		if s.Status == models.SessionActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *MemorySessionRepo) GetAll() ([]models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

func (r *MemorySessionRepo) FindActiveByDoctor(doctorID string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.DoctorID == doctorID && s.Status == models.SessionActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemorySessionRepo) FindActiveByDevice(deviceID string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.DeviceID == deviceID && s.Status == models.SessionActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemorySessionRepo) Terminate(id string, target string, endedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status != models.SessionActive {
		return false, nil
	}
	s.Status = target
	s.EndedAt = &endedAt
	return true, nil
}
