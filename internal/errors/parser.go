package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts storage-layer errors into user-facing codes and
// messages without leaking constraint or column internals.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An internal error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// Unique constraint violation (postgres 23505, sqlite "UNIQUE constraint failed")
	if strings.Contains(errStrLower, "duplicate key") ||
		strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The operation conflicts with linked records",
		}
	}

	// Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// Network / connectivity errors from collaborators
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An external service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// IsDuplicateKey reports whether err is a unique constraint violation.
// Retry loops around generated identifiers use it to tell collisions apart
// from real failures.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	errStrLower := strings.ToLower(err.Error())
	return strings.Contains(errStrLower, "duplicate key") ||
		strings.Contains(errStrLower, "unique constraint")
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "code") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "The generated application code collided. Please retry",
		}
	}
	if strings.Contains(errLower, "registration_number") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "A registration number conflict occurred. Please retry",
		}
	}
	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "This email address is already in use",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "The record already exists",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "application") {
		return "Application not found"
	}
	if strings.Contains(contextLower, "member") {
		return "Member not found"
	}
	if strings.Contains(contextLower, "user") {
		return "User not found"
	}
	if strings.Contains(contextLower, "notification") {
		return "Notification not found"
	}

	return "The requested record was not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "submit") {
		return "The record could not be created. Please try again later"
	}
	if strings.Contains(contextLower, "update") || strings.Contains(contextLower, "review") {
		return "The record could not be updated. Please try again later"
	}
	if strings.Contains(contextLower, "delete") {
		return "The record could not be deleted. Please try again later"
	}

	return "An internal error occurred. Please try again later"
}
