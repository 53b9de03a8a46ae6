package doctor

import (
	"time"

	doctorRepo "pharmalink/database/repository/doctor"
	"pharmalink/models"
	"pharmalink/services/notifier"
	"pharmalink/utils"

	"go.uber.org/zap"
)

// TokenTTL is how long an issued doctor auth token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// DoctorService manages doctor accounts and their presence.
type DoctorService interface {
	Register(name, email, password, specialization string) (*models.Doctor, error)
	// Login verifies credentials, marks the doctor online and returns a
	// signed auth token together with the doctor record.
	Login(email, password string) (string, *models.Doctor, error)
	Logout(doctorID string) error
	// ToggleAvailability flips the doctor's online flag.
	ToggleAvailability(doctorID string) (*models.Doctor, error)
}

// DefaultDoctorService implements DoctorService.
type DefaultDoctorService struct {
	Repo     doctorRepo.DoctorRepository
	Notifier notifier.Notifier
	Tokens   utils.AuthTokenCache
	Logger   *zap.Logger
}

func (s *DefaultDoctorService) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}
