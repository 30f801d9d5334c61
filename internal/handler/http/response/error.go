package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/auth"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/leave"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/upstream"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid username or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrSessionNotFound):
		Unauthorized(w, "Session not found")
	case errors.Is(err, auth.ErrSessionExpired):
		Unauthorized(w, "Session expired")
	case errors.Is(err, auth.ErrAdminOnly):
		Forbidden(w, "Admin role required")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveNotFound):
		NotFound(w, "Leave request not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidDateRange), errors.Is(err, attendance.ErrUnsupportedFormat):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, context.Canceled):
		slog.Debug("Request cancelled by client")

	default:
		handleUpstream(w, err)
	}
}

func handleUpstream(w http.ResponseWriter, err error) {
	var apiErr *upstream.APIError
	if !errors.As(err, &apiErr) {
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
		return
	}

	msg := apiErr.UserMessage()
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		Unauthorized(w, msg)
	case http.StatusForbidden:
		Forbidden(w, msg)
	case http.StatusNotFound:
		NotFound(w, msg)
	case http.StatusConflict:
		Conflict(w, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		BadRequest(w, msg, nil)
	default:
		slog.Warn("Upstream request failed", "status", apiErr.StatusCode, "error", apiErr)
		BadGateway(w, msg)
	}
}
