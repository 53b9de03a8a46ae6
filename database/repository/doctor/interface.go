package doctorRepo

import (
	"errors"

	"pharmalink/models"
)

// ErrNotFound is returned when no doctor matches the lookup.
var ErrNotFound = errors.New("doctor not found")

// DoctorRepository defines methods for doctor data access.
type DoctorRepository interface {
	// Create inserts a new doctor record.
	Create(doctor *models.Doctor) error
	// GetByID retrieves a doctor by its unique ID.
	GetByID(id string) (*models.Doctor, error)
	// GetByEmail retrieves a doctor by email address.
	GetByEmail(email string) (*models.Doctor, error)
	// GetAll retrieves all doctors.
	GetAll() ([]models.Doctor, error)
	// GetOnline retrieves all doctors currently online.
	GetOnline() ([]models.Doctor, error)
	// FindMatchable returns any doctor that is online and available, or
	// ErrNotFound when none qualifies. Selection order is unspecified.
	FindMatchable() (*models.Doctor, error)
	// SetOnline updates the online flag.
	SetOnline(id string, online bool) error
	// SetStatus sets the availability status unconditionally.
	SetStatus(id string, status string) error
	// CompareAndSetStatus flips the status from expect to target. It returns
	// false when the doctor is absent or its current status is not expect.
	CompareAndSetStatus(id, expect, target string) (bool, error)
}
