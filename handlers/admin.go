package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pharmalink/models"
	"pharmalink/services/admin"
	"pharmalink/utils"
)

// AdminHandler exposes dashboard endpoints.
type AdminHandler struct {
	Svc    admin.AdminService
	Logger *zap.Logger
}

func NewAdminHandler(svc admin.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Signup handles POST /api/admin/signup.
func (h *AdminHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid signup request", err.Error())
		return
	}

	result, err := h.Svc.Signup(req.Name, req.Email, req.Password)
	if err != nil {
		if err == admin.ErrEmailTaken {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use by another user."})
			return
		}
		h.Logger.Error("admin signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":    result.Token,
		"userType": result.Role.String(),
		"admin":    result.Admin,
	})
}

// UnifiedLogin handles POST /api/login for both admins and doctors.
func (h *AdminHandler) UnifiedLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid login request", err.Error())
		return
	}

	result, err := h.Svc.UnifiedLogin(req.Email, req.Password)
	if err != nil {
		if err == admin.ErrInvalidCredentials {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}
		h.Logger.Error("unified login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	resp := gin.H{"token": result.Token, "userType": result.Role.String()}
	if result.Role == models.RoleAdmin {
		resp["admin"] = result.Admin
	} else {
		resp["doctor"] = result.Doctor
	}
	c.JSON(http.StatusOK, resp)
}

// OnlineDoctors handles GET /api/admin/online-doctors.
func (h *AdminHandler) OnlineDoctors(c *gin.Context) {
	doctors, err := h.Svc.OnlineDoctors()
	if err != nil {
		h.Logger.Error("failed to list online doctors", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"doctors": doctors})
}

// ActiveSessions handles GET /api/admin/active-sessions.
func (h *AdminHandler) ActiveSessions(c *gin.Context) {
	sessions, err := h.Svc.ActiveSessions()
	if err != nil {
		h.Logger.Error("failed to list active sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// Devices handles GET /api/admin/devices.
func (h *AdminHandler) Devices(c *gin.Context) {
	devices, err := h.Svc.Devices()
	if err != nil {
		h.Logger.Error("failed to list devices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}
