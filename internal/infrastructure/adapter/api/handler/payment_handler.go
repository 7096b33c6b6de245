package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	payments usecase.PaymentUseCase
	logger   coreport.Logger
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(payments usecase.PaymentUseCase, logger coreport.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

// Create handles POST /payments
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	payment, err := req.ToEntity()
	if err != nil {
		respondError(c, h.logger, "create payment", err)
		return
	}

	payment, err = h.payments.CreatePayment(c.Request.Context(), payment)
	if err != nil {
		respondError(c, h.logger, "create payment", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewPaymentResponse(payment))
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get payment", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaymentResponse(payment))
}

// List handles GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	var q dto.PaymentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	payments, err := h.payments.ListPayments(c.Request.Context(), q.TransactionID, q.Limit, q.Offset)
	if err != nil {
		respondError(c, h.logger, "list payments", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(payments, q.ListQuery, dto.NewPaymentResponse))
}

// RecordOutcome handles POST /payments/:id/outcome
func (h *PaymentHandler) RecordOutcome(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	payment, err := h.payments.RecordOutcome(c.Request.Context(), id, entity.PaymentState(req.Status))
	if err != nil {
		respondError(c, h.logger, "record payment outcome", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaymentResponse(payment))
}

// Delete handles DELETE /payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.payments.DeletePayment(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete payment", err)
		return
	}
	c.Status(http.StatusNoContent)
}
