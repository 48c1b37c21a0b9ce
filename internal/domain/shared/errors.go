package shared

// DomainError is an error raised by domain rules rather than
// infrastructure. Handlers map the code to an HTTP status.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Errors shared across aggregates. Billing-specific codes live here
// too since both the calculator and the generation service return them.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrDataIntegrity       = NewDomainError("DATA_INTEGRITY", "Stored data violates a domain invariant")
	ErrMissingReading      = NewDomainError("MISSING_METER_READING", "No meter reading available for the billing boundary")
	ErrNegativeConsumption = NewDomainError("NEGATIVE_CONSUMPTION", "Meter reading delta is negative")
	ErrDuplicateInvoice    = NewDomainError("DUPLICATE_INVOICE", "An invoice already exists for this tenant and period")
)
