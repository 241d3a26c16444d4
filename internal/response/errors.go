package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// Authentication
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// Authorization
	ErrForbidden           ErrCode = "FORBIDDEN"
	ErrCandidateAccessOnly ErrCode = "CANDIDATE_ACCESS_ONLY"
	ErrProctorAccessOnly   ErrCode = "PROCTOR_ACCESS_ONLY"
	ErrNotSessionOwner     ErrCode = "NOT_SESSION_OWNER"

	// Validation
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// Resources
	ErrNotFound ErrCode = "NOT_FOUND"

	// Session lifecycle
	ErrSessionNotStarted       ErrCode = "SESSION_NOT_STARTED"
	ErrSessionAlreadyCompleted ErrCode = "SESSION_ALREADY_COMPLETED"
	ErrSessionTerminated       ErrCode = "SESSION_TERMINATED"
	ErrResultNotAvailable      ErrCode = "RESULT_NOT_AVAILABLE"
	ErrInsufficientCredits     ErrCode = "INSUFFICIENT_CREDITS"

	// Server
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// Authentication
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// Authorization
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrCandidateAccessOnly:
		return "This resource is restricted to candidates."
	case ErrProctorAccessOnly:
		return "This resource is restricted to proctors."
	case ErrNotSessionOwner:
		return "This session belongs to another candidate."

	// Validation
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// Resources
	case ErrNotFound:
		return "The requested resource was not found."

	// Session lifecycle
	case ErrSessionNotStarted:
		return "The exam session has not been started."
	case ErrSessionAlreadyCompleted:
		return "The exam session is already completed."
	case ErrSessionTerminated:
		return "The exam session was terminated for integrity violations."
	case ErrResultNotAvailable:
		return "No verifiable result exists for this session."
	case ErrInsufficientCredits:
		return "The sponsoring organization has insufficient exam credits."

	// Server
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
