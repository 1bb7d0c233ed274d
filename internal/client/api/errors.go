package api

import "errors"

// Transport failure kinds. They are raised only by Load; callers match them
// with errors.Is / errors.As and translate them into user-facing errors.
var (
	// ErrBadRequest means a valid request could not be constructed
	// (e.g. the endpoint URL plus query parameters is not a valid URL).
	ErrBadRequest = errors.New("bad request")

	// ErrInvalidResponse covers transport-level faults: connection refused,
	// timeout, DNS failure, or a response that is not well-formed HTTP.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrDecoding means the response bytes could not be decoded into the
	// expected shape.
	ErrDecoding = errors.New("decoding error")
)

// ServerError is raised when the transport detects a server-side fault in a
// response that does not decode into the expected shape: the body carries the
// generic {"error":true,"reason":...} envelope instead. Business-level
// error:true payloads that DO decode are normal values, not ServerErrors.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server error: " + e.Message
}
