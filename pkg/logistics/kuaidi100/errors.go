package kuaidi100

import "errors"

var (
	// ErrInvalidConfig is returned when the client configuration is incomplete
	ErrInvalidConfig = errors.New("invalid kuaidi100 configuration")

	// ErrInvalidRequest is returned when the tracking request is malformed
	ErrInvalidRequest = errors.New("carrier code and tracking number are required")

	// ErrQueryFailed is returned when the upstream rejects the query
	ErrQueryFailed = errors.New("tracking query failed")

	// ErrUnknownCarrier is returned for carrier codes outside the supported set
	ErrUnknownCarrier = errors.New("unknown carrier code")
)
