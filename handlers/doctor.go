package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pharmalink/middleware"
	"pharmalink/services/doctor"
	"pharmalink/utils"
)

// DoctorHandler exposes doctor account and presence endpoints.
type DoctorHandler struct {
	Svc    doctor.DoctorService
	Logger *zap.Logger
}

func NewDoctorHandler(svc doctor.DoctorService, logger *zap.Logger) *DoctorHandler {
	return &DoctorHandler{Svc: svc, Logger: logger}
}

type doctorRegisterRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Specialization string `json:"specialization"`
}

// Register handles POST /api/doctors/register.
func (h *DoctorHandler) Register(c *gin.Context) {
	var req doctorRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid registration request", err.Error())
		return
	}

	if _, err := h.Svc.Register(req.Name, req.Email, req.Password, req.Specialization); err != nil {
		if err == doctor.ErrEmailTaken {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Doctor already exists"})
			return
		}
		h.Logger.Error("doctor registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Doctor registered successfully"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/doctors/login.
func (h *DoctorHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid login request", err.Error())
		return
	}

	token, doc, err := h.Svc.Login(req.Email, req.Password)
	if err != nil {
		if err == doctor.ErrInvalidCredentials {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}
		h.Logger.Error("doctor login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "doctor": doc})
}

// Logout handles POST /api/doctors/logout.
func (h *DoctorHandler) Logout(c *gin.Context) {
	doc, ok := middleware.DoctorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	if err := h.Svc.Logout(doc.ID); err != nil {
		h.Logger.Error("doctor logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// ToggleAvailability handles PATCH /api/doctors/availability.
func (h *DoctorHandler) ToggleAvailability(c *gin.Context) {
	doc, ok := middleware.DoctorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	updated, err := h.Svc.ToggleAvailability(doc.ID)
	if err != nil {
		h.Logger.Error("doctor availability toggle failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isOnline": updated.IsOnline})
}
