package doctor

import (
	"context"
	"fmt"
	"time"

	doctorRepo "pharmalink/database/repository/doctor"
	"pharmalink/models"
	"pharmalink/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a doctor account with a hashed password. New doctors start
// offline and available.
func (s *DefaultDoctorService) Register(name, email, password, specialization string) (*models.Doctor, error) {
	if _, err := s.Repo.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if err != doctorRepo.ErrNotFound {
		return nil, fmt.Errorf("failed to check doctor email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	doc := &models.Doctor{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		Password:       string(hashed),
		Specialization: specialization,
		IsOnline:       false,
		Status:         models.DoctorAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.Create(doc); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	s.log().Info("doctor registered", zap.String("email", email))
	return doc, nil
}

// Login verifies credentials, marks the doctor online, caches the token hash
// for revocation and announces the presence change.
func (s *DefaultDoctorService) Login(email, password string) (string, *models.Doctor, error) {
	doc, err := s.Repo.GetByEmail(email)
	if err != nil {
		if err == doctorRepo.ErrNotFound {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to fetch doctor: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(doc.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := s.Repo.SetOnline(doc.ID, true); err != nil {
		return "", nil, fmt.Errorf("failed to mark doctor online: %w", err)
	}
	doc.IsOnline = true

	token, err := utils.GenerateToken(doc.ID, models.RoleDoctor.String(), TokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	if s.Tokens != nil {
		if err := s.Tokens.Store(context.Background(), doc.ID, utils.HashToken(token), TokenTTL); err != nil {
			return "", nil, fmt.Errorf("failed to cache auth token: %w", err)
		}
	}

	s.log().Info("doctor logged in", zap.String("email", email))
	s.Notifier.Publish(models.TopicDoctorStatus, models.DoctorStatusEvent{
		DoctorID: doc.ID,
		IsOnline: true,
		Status:   doc.Status,
	})

	return token, doc, nil
}

// Logout marks the doctor offline, revokes the auth token and announces the
// presence change.
func (s *DefaultDoctorService) Logout(doctorID string) error {
	doc, err := s.Repo.GetByID(doctorID)
	if err != nil {
		if err == doctorRepo.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch doctor: %w", err)
	}

	if err := s.Repo.SetOnline(doctorID, false); err != nil {
		return fmt.Errorf("failed to mark doctor offline: %w", err)
	}
	if s.Tokens != nil {
		if err := s.Tokens.Revoke(context.Background(), doctorID); err != nil {
			s.log().Warn("failed to revoke auth token", zap.String("doctorId", doctorID), zap.Error(err))
		}
	}

	s.log().Info("doctor logged out", zap.String("email", doc.Email))
	s.Notifier.Publish(models.TopicDoctorStatus, models.DoctorStatusEvent{
		DoctorID: doctorID,
		IsOnline: false,
		Status:   doc.Status,
	})
	return nil
}

// ToggleAvailability flips the doctor's online flag and announces the change.
func (s *DefaultDoctorService) ToggleAvailability(doctorID string) (*models.Doctor, error) {
	doc, err := s.Repo.GetByID(doctorID)
	if err != nil {
		if err == doctorRepo.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch doctor: %w", err)
	}

	online := !doc.IsOnline
	if err := s.Repo.SetOnline(doctorID, online); err != nil {
		return nil, fmt.Errorf("failed to toggle doctor availability: %w", err)
	}
	doc.IsOnline = online

	s.log().Info("doctor availability toggled",
		zap.String("email", doc.Email), zap.Bool("isOnline", online))
	s.Notifier.Publish(models.TopicDoctorStatus, models.DoctorStatusEvent{
		DoctorID: doctorID,
		IsOnline: online,
		Status:   doc.Status,
	})
	return doc, nil
}
