package handler

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	domainerr "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var bindingLabels sync.Once

// RegisterBindingLabels makes gin's binding validator name fields the way the domain validator does.
// It must run before the first request is bound.
func RegisterBindingLabels() {
	bindingLabels.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validation.RegisterLabels(v)
		}
	})
}

// StatusFor maps a domain error code to an HTTP status
func StatusFor(err error) int {
	switch domainerr.ErrorCode(err) {
	case domainerr.CodeValidation:
		return http.StatusBadRequest
	case domainerr.CodeNotFound:
		return http.StatusNotFound
	case domainerr.CodeLockerUnavailable,
		domainerr.CodeReleaseNoOp,
		domainerr.CodeConflict,
		domainerr.CodeInvalidTransition,
		domainerr.CodeLockerInUse,
		domainerr.CodeDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the standard error body. Server errors are logged and their message hidden.
func respondError(c *gin.Context, logger coreport.Logger, operation string, err error) {
	status := StatusFor(err)
	resp := dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: err.Error(),
		Details: errorDetails(err),
	}

	if status >= http.StatusInternalServerError {
		fields := domainerr.LogFields(err)
		fields["operation"] = operation
		fields["path"] = c.Request.URL.Path
		logger.Error("Request failed", fields)

		resp.Message = "Internal server error"
		resp.Details = nil
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// respondBindError reports a malformed body or query. Rule violations read like domain validation errors.
func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	if verr, ok := validation.Translate(err); ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.CodeValidation,
			Message: verr.Error(),
			Details: errorDetails(verr),
		})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    domainerr.CodeValidation,
		Message: "Invalid request format: " + err.Error(),
	})
}

// errorDetails exposes the structured context of rich domain errors
func errorDetails(err error) map[string]any {
	var validationErr *domainerr.ValidationError
	if errors.As(err, &validationErr) {
		return map[string]any{"field": validationErr.Field}
	}

	var lockerErr *domainerr.LockerError
	if errors.As(err, &lockerErr) {
		return map[string]any{
			"lockerId":  lockerErr.LockerID,
			"operation": lockerErr.Operation,
			"available": lockerErr.Available,
			"capacity":  lockerErr.Capacity,
		}
	}

	var transitionErr *domainerr.TransitionError
	if errors.As(err, &transitionErr) {
		return map[string]any{
			"transactionId": transitionErr.TransactionID,
			"from":          transitionErr.From,
			"to":            transitionErr.To,
		}
	}
	return nil
}

// pathID reads a required path parameter
func pathID(c *gin.Context, name string) (string, bool) {
	id := strings.TrimSpace(c.Param(name))
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.CodeValidation,
			Message: name + " is required",
		})
		return "", false
	}
	return id, true
}
