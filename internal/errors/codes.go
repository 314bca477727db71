package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The frontend maps these codes to localized messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"

	// ==================== Security (SECURITY_) ====================
	SecurityCSRFInvalid   = "SECURITY_CSRF_INVALID"
	SecurityCSRFMissing   = "SECURITY_CSRF_MISSING"
	SecurityCaptchaFailed = "SECURITY_CAPTCHA_FAILED"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationFailed        = "VALIDATION_FAILED"
	ValidationRequired      = "VALIDATION_REQUIRED"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"

	// ==================== Application lifecycle (APPLICATION_) ====================
	ApplicationNotFound         = "APPLICATION_NOT_FOUND"
	ApplicationAlreadyProcessed = "APPLICATION_ALREADY_PROCESSED"
	ApplicationDeleteApproved   = "APPLICATION_DELETE_APPROVED"
	ApplicationNoArtifact       = "APPLICATION_NO_ARTIFACT"

	// ==================== Members (MEMBER_) ====================
	MemberNotFound = "MEMBER_NOT_FOUND"

	// ==================== Notifications (NOTIFICATION_) ====================
	NotificationNotFound = "NOTIFICATION_NOT_FOUND"

	// ==================== Artifacts (ARTIFACT_) ====================
	ArtifactGenerationFailed = "ARTIFACT_GENERATION_FAILED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
