package email

// These constants mirror domain error codes to avoid circular imports.
const (
	codeInvalid  = "invalid"
	codeInternal = "internal"
)

// EmailError represents an email-specific error with a code and message.
type EmailError struct {
	Code    string
	Message string
}

func (e *EmailError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *EmailError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *EmailError) ErrorMessage() string {
	return e.Message
}

var (
	// ErrInvalidToAddress is returned when the recipient address is missing.
	ErrInvalidToAddress = &EmailError{Code: codeInvalid, Message: "Invalid recipient email address"}

	// ErrRenderFailed is returned when a template fails to render.
	ErrRenderFailed = &EmailError{Code: codeInternal, Message: "Failed to render email template"}
)
