package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pharmalink/services/session"
	"pharmalink/utils"
)

// SessionHandler exposes the session coordination endpoints.
type SessionHandler struct {
	Svc    session.SessionService
	Logger *zap.Logger
}

func NewSessionHandler(svc session.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{Svc: svc, Logger: logger}
}

type initiateRequest struct {
	DeviceID    string `json:"deviceId" binding:"required"`
	PatientName string `json:"patientName" binding:"required"`
	DoctorID    string `json:"doctorId"`
}

// Initiate handles POST /api/sessions/initiate.
func (h *SessionHandler) Initiate(c *gin.Context) {
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Missing required fields", err.Error())
		return
	}

	sess, err := h.Svc.Initiate(req.DeviceID, req.PatientName, req.DoctorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Session initiated", "session": sess})
}

// Complete handles PATCH /api/sessions/:sessionId/complete.
func (h *SessionHandler) Complete(c *gin.Context) {
	sess, err := h.Svc.Complete(c.Param("sessionId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session completed", "session": sess})
}

// Cancel handles PATCH /api/sessions/:sessionId/cancel.
func (h *SessionHandler) Cancel(c *gin.Context) {
	sess, err := h.Svc.Cancel(c.Param("sessionId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session cancelled", "session": sess})
}

// GetActive handles GET /api/sessions/active.
func (h *SessionHandler) GetActive(c *gin.Context) {
	sessions, err := h.Svc.Active()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetHistory handles GET /api/sessions/history.
func (h *SessionHandler) GetHistory(c *gin.Context) {
	sessions, err := h.Svc.History()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *SessionHandler) respondError(c *gin.Context, err error) {
	switch {
	case session.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case session.IsUnavailable(err), session.IsInvalidState(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.Logger.Error("session operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
