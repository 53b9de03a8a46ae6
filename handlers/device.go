package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pharmalink/models"
	"pharmalink/services/device"
	"pharmalink/utils"
)

// DeviceHandler exposes kiosk registration endpoints.
type DeviceHandler struct {
	Svc    device.DeviceService
	Logger *zap.Logger
}

func NewDeviceHandler(svc device.DeviceService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{Svc: svc, Logger: logger}
}

type deviceRegisterRequest struct {
	DeviceID string     `json:"deviceId" binding:"required"`
	GPS      models.GPS `json:"gps" binding:"required"`
}

// Register handles POST /api/devices/register. Re-registering a known device
// acts as a heartbeat and refreshes its location.
func (h *DeviceHandler) Register(c *gin.Context) {
	var req deviceRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid device registration", err.Error())
		return
	}

	dev, created, err := h.Svc.Register(req.DeviceID, req.GPS)
	if err != nil {
		h.Logger.Error("device registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "Device registered", "device": dev})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device updated", "device": dev})
}
