package handlers

import (
	adminRepo "pharmalink/database/repository/admin"
	doctorRepo "pharmalink/database/repository/doctor"
	"pharmalink/utils"
)

// HandlerBundle carries the assembled handlers plus the dependencies the
// auth middleware needs, so route registration takes a single argument.
type HandlerBundle struct {
	Session *SessionHandler
	Doctor  *DoctorHandler
	Device  *DeviceHandler
	Admin   *AdminHandler
	WS      *WSHandler

	// Auth middleware dependencies.
	DoctorRepo doctorRepo.DoctorRepository
	AdminRepo  adminRepo.AdminRepository
	Tokens     utils.AuthTokenCache
}
