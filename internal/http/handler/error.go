package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"mailroom/internal/http/middleware"
	"mailroom/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Success   bool          `json:"success"`
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiError is a request problem detected by a handler before any service runs.
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(code, message string) error {
	return &apiError{status: fiber.StatusBadRequest, code: code, message: message}
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

var sentinels = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "resource not found"},
	{service.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials or token"},
	{service.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "operation not permitted"},
	{service.ErrConflict, fiber.StatusConflict, "CONFLICT", "resource state conflicts with the request"},
	{service.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION", "operation not allowed in the current status"},
	{service.ErrKYCRequired, fiber.StatusForbidden, "KYC_REQUIRED", "identity verification must be approved first"},
	{service.ErrSubscriptionRequired, fiber.StatusPaymentRequired, "SUBSCRIPTION_REQUIRED", "an active subscription is required"},
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Service errors are translated here so handlers can simply return them.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			return writeError(c, apiErr.status, apiErr.code, apiErr.message)
		}

		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", vErr.Error())
		}

		for _, s := range sentinels {
			if errors.Is(err, s.err) {
				return writeError(c, s.status, s.code, s.message)
			}
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusBadRequest:
				return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
			case fiber.StatusUnauthorized:
				return writeError(c, fe.Code, "UNAUTHORIZED", fe.Message)
			case fiber.StatusForbidden:
				return writeError(c, fe.Code, "FORBIDDEN", fe.Message)
			case fiber.StatusNotFound:
				return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
			case fiber.StatusMethodNotAllowed:
				return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
			case fiber.StatusRequestEntityTooLarge:
				return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
			case fiber.StatusTooManyRequests:
				return writeError(c, fe.Code, "RATE_LIMITED", "too many requests")
			}
			if fe.Code < fiber.StatusInternalServerError {
				return writeError(c, fe.Code, "BAD_REQUEST", fe.Message)
			}
		}

		log.Error("request_failed",
			zap.String("request_id", requestIDFromCtx(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
