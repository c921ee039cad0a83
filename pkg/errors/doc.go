// Package errors provides structured error types for better observability
// and programmatic error handling across the capture engine.
//
// Codes map to the failure taxonomy of a capture run: TRANSPORT_FAILURE
// (no response), UNEXPECTED_STATUS (response outside the accepted status
// set), NOT_FOUND (404, an expected "entity absent" outcome) and IO_FAILURE
// (local output files).
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeTransportFailure,
//	    "request failed",
//	    cause,
//	    map[string]any{
//	        "url": url,
//	    },
//	)
//
//	if errors.IsCode(err, errors.ErrCodeNotFound) {
//	    // entity is absent, not a systemic failure
//	}
package errors
