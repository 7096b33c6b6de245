package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// DeviceHandler handles ESP32 device HTTP requests
type DeviceHandler struct {
	devices usecase.DeviceUseCase
	logger  coreport.Logger
}

// NewDeviceHandler creates a new device handler instance
func NewDeviceHandler(devices usecase.DeviceUseCase, logger coreport.Logger) *DeviceHandler {
	return &DeviceHandler{devices: devices, logger: logger}
}

// Create handles POST /devices
func (h *DeviceHandler) Create(c *gin.Context) {
	var req dto.DeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	device, err := h.devices.CreateDevice(c.Request.Context(), req.ToEntity())
	if err != nil {
		respondError(c, h.logger, "create device", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewDeviceResponse(device))
}

// Get handles GET /devices/:id
func (h *DeviceHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	device, err := h.devices.GetDevice(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get device", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDeviceResponse(device))
}

// List handles GET /devices
func (h *DeviceHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	devices, err := h.devices.ListDevices(c.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		respondError(c, h.logger, "list devices", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(devices, q, dto.NewDeviceResponse))
}

// Update handles PUT /devices/:id
func (h *DeviceHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.DeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	device := req.ToEntity()
	device.ID = id
	updated, err := h.devices.UpdateDevice(c.Request.Context(), device)
	if err != nil {
		respondError(c, h.logger, "update device", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDeviceResponse(updated))
}

// SetStatus handles PUT /devices/:id/status
func (h *DeviceHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.DeviceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	device, err := h.devices.SetDeviceStatus(c.Request.Context(), id, entity.DeviceStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, "set device status", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDeviceResponse(device))
}

// Delete handles DELETE /devices/:id
func (h *DeviceHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.devices.DeleteDevice(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete device", err)
		return
	}
	c.Status(http.StatusNoContent)
}
