package handler

import (
	"context"
	"net/http"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles rental transaction HTTP requests
type TransactionHandler struct {
	lifecycle usecase.LifecycleController
	logger    coreport.Logger
}

// NewTransactionHandler creates a new transaction handler instance
func NewTransactionHandler(lifecycle usecase.LifecycleController, logger coreport.Logger) *TransactionHandler {
	return &TransactionHandler{
		lifecycle: lifecycle,
		logger:    logger,
	}
}

// Book handles POST /transactions
func (h *TransactionHandler) Book(c *gin.Context) {
	var req dto.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tx, err := h.lifecycle.CreateBooking(c.Request.Context(), req.ToEntity())
	if err != nil {
		respondError(c, h.logger, "create booking", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTransactionResponse(tx))
}

// Get handles GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tx, err := h.lifecycle.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get transaction", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// List handles GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	var q dto.TransactionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	txs, err := h.lifecycle.List(c.Request.Context(), persistence.TransactionFilter{
		LockerID:      q.LockerID,
		UserID:        q.UserID,
		PaymentStatus: entity.PaymentStatus(q.PaymentStatus),
		Limit:         q.Limit,
		Offset:        q.Offset,
	})
	if err != nil {
		respondError(c, h.logger, "list transactions", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(txs, q.ListQuery, dto.NewTransactionResponse))
}

// MarkPaid handles POST /transactions/:id/paid
func (h *TransactionHandler) MarkPaid(c *gin.Context) {
	h.transition(c, "mark paid", h.lifecycle.MarkPaid)
}

// MarkFailed handles POST /transactions/:id/failed
func (h *TransactionHandler) MarkFailed(c *gin.Context) {
	h.transition(c, "mark failed", h.lifecycle.MarkFailed)
}

// MarkExpired handles POST /transactions/:id/expired
func (h *TransactionHandler) MarkExpired(c *gin.Context) {
	h.transition(c, "mark expired", h.lifecycle.MarkExpired)
}

// Checkout handles POST /transactions/:id/checkout
func (h *TransactionHandler) Checkout(c *gin.Context) {
	h.transition(c, "checkout", h.lifecycle.Checkout)
}

// CheckoutByCode handles POST /transactions/checkout
func (h *TransactionHandler) CheckoutByCode(c *gin.Context) {
	var req dto.CheckoutByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tx, err := h.lifecycle.CheckoutByAccessCode(c.Request.Context(), req.AccessCode)
	if err != nil {
		respondError(c, h.logger, "checkout by access code", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// Access handles POST /transactions/access
func (h *TransactionHandler) Access(c *gin.Context) {
	var req dto.CheckoutByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tx, err := h.lifecycle.AccessByCode(c.Request.Context(), req.AccessCode)
	if err != nil {
		respondError(c, h.logger, "access by code", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// Delete handles DELETE /transactions/:id
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.lifecycle.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete transaction", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TransactionHandler) transition(
	c *gin.Context,
	operation string,
	fn func(ctx context.Context, id string) (*entity.Transaction, error),
) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tx, err := fn(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, operation, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}
