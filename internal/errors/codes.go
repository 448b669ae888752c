package errors

// Error code constants, format: CATEGORY_SPECIFIC_DETAIL.
// Clients map these codes to their own display messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthPhoneExists        = "AUTH_PHONE_EXISTS"
	AuthEmailExists        = "AUTH_EMAIL_EXISTS"
	AuthInvalidPhone       = "AUTH_INVALID_PHONE"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationTooLong       = "VALIDATION_TOO_LONG"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Users (USER_) ====================
	UserNotFound    = "USER_NOT_FOUND"
	ProfileNotFound = "PROFILE_NOT_FOUND"
	SchoolNotFound  = "SCHOOL_NOT_FOUND"

	// ==================== Listings (BOOK_) ====================
	BookNotFound        = "BOOK_NOT_FOUND"
	BookNotOnSale       = "BOOK_NOT_ON_SALE"
	BookOwnListing      = "BOOK_OWN_LISTING"
	BookCategoryInvalid = "BOOK_CATEGORY_INVALID"
	BookStatusInvalid   = "BOOK_STATUS_INVALID"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound           = "ORDER_NOT_FOUND"
	OrderInsufficientStock  = "ORDER_INSUFFICIENT_STOCK"
	OrderInvalidTransition  = "ORDER_INVALID_TRANSITION"
	OrderInvalidFulfillment = "ORDER_INVALID_FULFILLMENT"
	OrderTrackingRequired   = "ORDER_TRACKING_REQUIRED"
	OrderNotParticipant     = "ORDER_NOT_PARTICIPANT"

	// ==================== Reviews (REVIEW_) ====================
	ReviewNotFound      = "REVIEW_NOT_FOUND"
	ReviewInvalidRating = "REVIEW_INVALID_RATING"
	ReviewAlreadyExists = "REVIEW_ALREADY_EXISTS"
	ReviewNotBuyer      = "REVIEW_NOT_BUYER"
	ReviewNotCompleted  = "REVIEW_NOT_COMPLETED"
	ReviewTooManyImages = "REVIEW_TOO_MANY_IMAGES"

	// ==================== Moderation (AUDIT_) ====================
	AuditTargetUnknown  = "AUDIT_TARGET_UNKNOWN"
	AuditTargetNotFound = "AUDIT_TARGET_NOT_FOUND"
	AuditNotPending     = "AUDIT_NOT_PENDING"
	AuditNoteRequired   = "AUDIT_NOTE_REQUIRED"

	// ==================== Logistics (LOGISTICS_) ====================
	LogisticsNoTracking     = "LOGISTICS_NO_TRACKING"
	LogisticsQueryFailed    = "LOGISTICS_QUERY_FAILED"
	LogisticsUnknownCarrier = "LOGISTICS_UNKNOWN_CARRIER"

	// ==================== Chat (CHAT_) ====================
	ChatSelfForbidden = "CHAT_SELF_FORBIDDEN"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
