package service

// Kind tags the outcome of a void or order status operation.
type Kind string

const (
	KindAuthorized              Kind = "authorized"
	KindUserNotFound            Kind = "user_not_found"
	KindUnauthorized            Kind = "unauthorized"
	KindInvalidCredentials      Kind = "invalid_credentials"
	KindInternalValidationError Kind = "internal_validation_error"
	KindInvoiceNotFound         Kind = "invoice_not_found"
	KindInvoiceFinalized        Kind = "invoice_finalized"
	KindMissingField            Kind = "missing_field"
	KindPersistenceError        Kind = "persistence_error"
	KindMissingParameter        Kind = "missing_parameter"
	KindNoOrdersFound           Kind = "no_orders_found"
	KindTimestampParseError     Kind = "timestamp_parse_error"
)

// Result is returned by every void operation. Failures carry a localized
// message for the manager facing UI.
type Result struct {
	Success bool
	Kind    Kind
	Message string
}

// OK is the success result.
func OK() Result {
	return Result{Success: true, Kind: KindAuthorized}
}

// Fail builds a failure result.
func Fail(kind Kind, message string) Result {
	return Result{Kind: kind, Message: message}
}

// OrderStatusError reports a request level failure of GetOrderStatus that
// callers render as {"error": message}.
type OrderStatusError struct {
	Kind    Kind
	Message string
}

func (e *OrderStatusError) Error() string {
	return e.Message
}
