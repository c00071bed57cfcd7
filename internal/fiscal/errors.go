package fiscal

// These constants mirror domain error codes to avoid circular imports.
// The handler layer maps these to HTTP status codes.
const (
	codeInvalid  = "invalid"
	codeInternal = "internal"
)

// FiscalError represents a fiscal-specific error with a code and message.
// It follows the domain.Error code convention for consistent HTTP status
// mapping.
type FiscalError struct {
	Code    string
	Message string
}

func (e *FiscalError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *FiscalError) ErrorCode() string {
	return e.Code
}

func newFiscalError(code, message string) *FiscalError {
	return &FiscalError{Code: code, Message: message}
}

var (
	// ErrInvalidAmount is returned for negative or non-finite gross amounts.
	ErrInvalidAmount = newFiscalError(codeInvalid, "Gross amount must be a non-negative finite number")

	// ErrInvalidRate is returned for negative or non-finite VAT rates.
	ErrInvalidRate = newFiscalError(codeInvalid, "VAT rate must be a non-negative finite percentage")

	// ErrNoItems is returned when a receipt request carries no line items.
	ErrNoItems = newFiscalError(codeInvalid, "Receipt must contain at least one item")
)
