package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// LockerHandler serves locker provisioning and the consistency tools.
// Counters change only through bookings, so there is no endpoint that writes them directly.
type LockerHandler struct {
	lockers      usecase.LockerUseCase
	availability usecase.AvailabilityManager
	logger       coreport.Logger
}

// NewLockerHandler creates a new locker handler instance
func NewLockerHandler(lockers usecase.LockerUseCase, availability usecase.AvailabilityManager, logger coreport.Logger) *LockerHandler {
	return &LockerHandler{
		lockers:      lockers,
		availability: availability,
		logger:       logger,
	}
}

// Create handles POST /lockers
func (h *LockerHandler) Create(c *gin.Context) {
	var req dto.LockerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	locker, err := h.lockers.CreateLocker(c.Request.Context(), req.ToEntity())
	if err != nil {
		respondError(c, h.logger, "create locker", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewLockerResponse(locker))
}

// Get handles GET /lockers/:id
func (h *LockerHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	locker, err := h.lockers.GetLocker(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get locker", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLockerResponse(locker))
}

// List handles GET /lockers
func (h *LockerHandler) List(c *gin.Context) {
	var q dto.LockerListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	lockers, err := h.lockers.ListLockers(c.Request.Context(), persistence.LockerFilter{
		Status:   entity.LockerStatus(q.Status),
		Location: q.Location,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		respondError(c, h.logger, "list lockers", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(lockers, q.ListQuery, dto.NewLockerResponse))
}

// Update handles PUT /lockers/:id
func (h *LockerHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.LockerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	locker := req.ToEntity()
	locker.ID = id
	updated, err := h.lockers.UpdateLocker(c.Request.Context(), locker)
	if err != nil {
		respondError(c, h.logger, "update locker", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLockerResponse(updated))
}

// Delete handles DELETE /lockers/:id
func (h *LockerHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.lockers.DeleteLocker(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete locker", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Consistency handles GET /lockers/:id/consistency
func (h *LockerHandler) Consistency(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.availability.CheckConsistency(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "check consistency", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Reconcile handles POST /lockers/:id/reconcile
func (h *LockerHandler) Reconcile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.availability.Reconcile(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "reconcile locker", err)
		return
	}
	if report.Reconciled {
		h.logger.Warn("Locker counter reconciled", map[string]any{
			"locker_id":        report.LockerID,
			"available":        report.Available,
			"unreleased_holds": report.UnreleasedHolds,
		})
	}
	c.JSON(http.StatusOK, report)
}
