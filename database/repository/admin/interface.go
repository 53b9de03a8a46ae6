package adminRepo

import (
	"errors"

	"pharmalink/models"
)

// ErrNotFound is returned when no admin matches the lookup.
var ErrNotFound = errors.New("admin not found")

// AdminRepository defines methods for admin account data access.
type AdminRepository interface {
	Create(admin *models.Admin) error
	GetByID(id string) (*models.Admin, error)
	GetByEmail(email string) (*models.Admin, error)
}
