package errors

// ErrorCode classifies an Error.
type ErrorCode string

const (
	ErrCodeUnknown ErrorCode = "unknown"

	ErrCodeAuth          ErrorCode = "auth"
	ErrCodeEncoding      ErrorCode = "encoding"
	ErrCodeDelivery      ErrorCode = "delivery"
	ErrCodeUpstreamFetch ErrorCode = "upstream_fetch"
	ErrCodePersistence   ErrorCode = "persistence"

	// route layer
	ErrCodeInvalidParameter ErrorCode = "invalid_parameter"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeConflict         ErrorCode = "conflict"
	ErrCodeInsufficientData ErrorCode = "insufficient_data"
)
