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

// LockerLogHandler exposes the audit trail
type LockerLogHandler struct {
	logs   usecase.LockerLogUseCase
	logger coreport.Logger
}

// NewLockerLogHandler creates a new locker log handler instance
func NewLockerLogHandler(logs usecase.LockerLogUseCase, logger coreport.Logger) *LockerLogHandler {
	return &LockerLogHandler{logs: logs, logger: logger}
}

// Create handles POST /locker-logs
func (h *LockerLogHandler) Create(c *gin.Context) {
	var req dto.CreateLockerLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	log, err := h.logs.CreateLog(c.Request.Context(), req.ToEntity())
	if err != nil {
		respondError(c, h.logger, "create locker log", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewLockerLogResponse(log))
}

// Get handles GET /locker-logs/:id
func (h *LockerLogHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	log, err := h.logs.GetLog(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get locker log", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLockerLogResponse(log))
}

// List handles GET /locker-logs
func (h *LockerLogHandler) List(c *gin.Context) {
	var q dto.LockerLogListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	logs, err := h.logs.ListLogs(c.Request.Context(), logFilter(q))
	if err != nil {
		respondError(c, h.logger, "list locker logs", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(logs, q.ListQuery, dto.NewLockerLogResponse))
}

// Stats handles GET /locker-logs/stats
func (h *LockerLogHandler) Stats(c *gin.Context) {
	var q dto.LockerLogListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	counts, err := h.logs.ActionStats(c.Request.Context(), logFilter(q))
	if err != nil {
		respondError(c, h.logger, "locker log stats", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLockerLogStatsResponse(q, counts))
}

func logFilter(q dto.LockerLogListQuery) persistence.LockerLogFilter {
	return persistence.LockerLogFilter{
		LockerID:      q.LockerID,
		TransactionID: q.TransactionID,
		UserID:        q.UserID,
		Action:        entity.LockerAction(q.Action),
		Since:         q.Since,
		Until:         q.Until,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
}

// Correct handles PUT /locker-logs/:id
func (h *LockerLogHandler) Correct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CorrectLockerLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	log, err := h.logs.CorrectLog(c.Request.Context(), req.ToEntity(id))
	if err != nil {
		respondError(c, h.logger, "correct locker log", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLockerLogResponse(log))
}

// Delete handles DELETE /locker-logs/:id
func (h *LockerLogHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.logs.DeleteLog(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete locker log", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Purge handles POST /locker-logs/purge
func (h *LockerLogHandler) Purge(c *gin.Context) {
	var req dto.PurgeLockerLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	deleted, err := h.logs.PurgeLogs(c.Request.Context(), req.Before)
	if err != nil {
		respondError(c, h.logger, "purge locker logs", err)
		return
	}
	c.JSON(http.StatusOK, dto.PurgeResponse{Deleted: deleted})
}
