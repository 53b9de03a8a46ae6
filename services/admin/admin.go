// Package admin backs the dashboard: account signup, the unified login shared
// by admins and doctors, and the read views the dashboard renders.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	adminRepo "pharmalink/database/repository/admin"
	deviceRepo "pharmalink/database/repository/device"
	doctorRepo "pharmalink/database/repository/doctor"
	"pharmalink/models"
	"pharmalink/services/doctor"
	"pharmalink/services/session"
	"pharmalink/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is how long an issued admin auth token stays valid.
const TokenTTL = 7 * 24 * time.Hour

var (
	// ErrEmailTaken is returned when the email is already in use by an admin
	// or a doctor.
	ErrEmailTaken = errors.New("email already in use by another user")
	// ErrInvalidCredentials is returned when no account matches the login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// LoginResult is the outcome of a unified login: exactly one of Admin or
// Doctor is set, matching Role.
type LoginResult struct {
	Token  string
	Role   models.Role
	Admin  *models.Admin
	Doctor *models.Doctor
}

// AdminService defines dashboard-facing operations.
type AdminService interface {
	Signup(name, email, password string) (*LoginResult, error)
	// UnifiedLogin tries the admin pool first, then the doctor pool. A
	// doctor login also marks the doctor online.
	UnifiedLogin(email, password string) (*LoginResult, error)
	OnlineDoctors() ([]models.Doctor, error)
	Devices() ([]models.Device, error)
	ActiveSessions() ([]models.Session, error)
}

// DefaultAdminService implements AdminService.
type DefaultAdminService struct {
	Admins     adminRepo.AdminRepository
	Doctors    doctorRepo.DoctorRepository
	DeviceRepo deviceRepo.DeviceRepository
	Sessions   session.SessionService
	// DoctorSvc handles the doctor leg of unified login so presence and
	// token caching behave exactly like a direct doctor login.
	DoctorSvc doctor.DoctorService
	Tokens    utils.AuthTokenCache
	Logger    *zap.Logger
}

func (s *DefaultAdminService) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

// emailUnique checks the email across both account pools.
func (s *DefaultAdminService) emailUnique(email string) (bool, error) {
	if _, err := s.Admins.GetByEmail(email); err == nil {
		return false, nil
	} else if err != adminRepo.ErrNotFound {
		return false, fmt.Errorf("failed to check admin email: %w", err)
	}
	if _, err := s.Doctors.GetByEmail(email); err == nil {
		return false, nil
	} else if err != doctorRepo.ErrNotFound {
		return false, fmt.Errorf("failed to check doctor email: %w", err)
	}
	return true, nil
}

func (s *DefaultAdminService) Signup(name, email, password string) (*LoginResult, error) {
	unique, err := s.emailUnique(email)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	adm := &models.Admin{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		CreatedAt: time.Now(),
	}
	if err := s.Admins.Create(adm); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	token, err := s.issueAdminToken(adm.ID)
	if err != nil {
		return nil, err
	}
	s.log().Info("admin signed up", zap.String("email", email))
	return &LoginResult{Token: token, Role: models.RoleAdmin, Admin: adm}, nil
}

func (s *DefaultAdminService) UnifiedLogin(email, password string) (*LoginResult, error) {
	adm, err := s.Admins.GetByEmail(email)
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(adm.Password), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		token, err := s.issueAdminToken(adm.ID)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Token: token, Role: models.RoleAdmin, Admin: adm}, nil
	}
	if err != adminRepo.ErrNotFound {
		return nil, fmt.Errorf("failed to fetch admin: %w", err)
	}

	token, doc, err := s.DoctorSvc.Login(email, password)
	if err != nil {
		if err == doctor.ErrInvalidCredentials {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &LoginResult{Token: token, Role: models.RoleDoctor, Doctor: doc}, nil
}

func (s *DefaultAdminService) issueAdminToken(adminID string) (string, error) {
	token, err := utils.GenerateToken(adminID, models.RoleAdmin.String(), TokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if s.Tokens != nil {
		if err := s.Tokens.Store(context.Background(), adminID, utils.HashToken(token), TokenTTL); err != nil {
			return "", fmt.Errorf("failed to cache auth token: %w", err)
		}
	}
	return token, nil
}

func (s *DefaultAdminService) OnlineDoctors() ([]models.Doctor, error) {
	doctors, err := s.Doctors.GetOnline()
	if err != nil {
		return nil, fmt.Errorf("failed to list online doctors: %w", err)
	}
	return doctors, nil
}

func (s *DefaultAdminService) Devices() ([]models.Device, error) {
	devices, err := s.DeviceRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

func (s *DefaultAdminService) ActiveSessions() ([]models.Session, error) {
	return s.Sessions.Active()
}
