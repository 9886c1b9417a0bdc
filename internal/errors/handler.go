package errors

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/redhat-data-and-ai/teams-notifier/internal/logging"
	"go.uber.org/zap"
)

// ErrorResponse represents the standardized error response format
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Code      ErrorCode              `json:"code"`
	Details   string                 `json:"details,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// Handler provides centralized error handling for HTTP responses
type Handler struct {
	// Include sensitive details in responses (dev mode)
	IncludeSensitiveDetails bool
	logger                  *logging.Logger
}

// NewHandler creates a new error handler with default configuration
func NewHandler(logger *logging.Logger) *Handler {
	return &Handler{logger: logger}
}

// HandleError processes an error and returns an appropriate HTTP response
func (h *Handler) HandleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	appErr := h.toAppError(err)

	requestID := c.Get("X-Request-ID")
	if requestID == "" {
		requestID = c.Get("X-Correlation-ID")
	}

	h.logError(appErr, requestID, c)

	return c.Status(appErr.HTTPStatus).JSON(h.createErrorResponse(appErr, requestID))
}

// FiberErrorHandler creates a Fiber-compatible error handler
func (h *Handler) FiberErrorHandler() fiber.ErrorHandler {
	return h.HandleError
}

// toAppError converts any error to an AppError
func (h *Handler) toAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var fiberErr *fiber.Error
	if stderrors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			e := NewErrorWithCause(ErrNotFound, fiberErr.Message, err)
			e.HTTPStatus = fiberErr.Code
			return e
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return NewPayloadError("", err)
		}
	}

	return NewErrorWithCause(ErrInternalServer, "Internal server error", err)
}

func (h *Handler) createErrorResponse(appErr *AppError, requestID string) ErrorResponse {
	response := ErrorResponse{
		Error:     appErr.Message,
		Code:      appErr.Code,
		RequestID: requestID,
		Timestamp: appErr.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
	}

	// Client errors carry their details; server errors only in dev mode
	if (appErr.HTTPStatus >= 400 && appErr.HTTPStatus < 500) || h.IncludeSensitiveDetails {
		response.Details = appErr.Details
		response.Context = appErr.Context
	}

	return response
}

func (h *Handler) logError(appErr *AppError, requestID string, c *fiber.Ctx) {
	if h.logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", string(appErr.Code)),
		zap.String("severity", string(appErr.Severity)),
		zap.Int("http_status", appErr.HTTPStatus),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	}
	if requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	for key, value := range appErr.Context {
		fields = append(fields, zap.Any(key, value))
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}

	switch appErr.Severity {
	case SeverityLow:
		h.logger.Zap().Info(appErr.Message, fields...)
	case SeverityMedium:
		h.logger.Zap().Warn(appErr.Message, fields...)
	default:
		h.logger.Zap().Error(appErr.Message, fields...)
	}
}
