// Package apperr defines the user-facing error taxonomy of the client and
// the mapping from transport failures onto it.
//
// Every failure surfaced to a user is an *AppError with a title, a
// human-readable message, and one of five kinds: Network, Server, Validation,
// Authentication, or General. Classify translates transport failures; session
// absence is classified as Authentication by the calling operation, never
// here.
package apperr

import (
	"errors"
	"fmt"

	"github.com/groceryapp/groceryclient/internal/client/api"
)

// Kind partitions failures into the categories the UI renders differently.
type Kind int

const (
	KindNetwork Kind = iota
	KindServer
	KindValidation
	KindAuthentication
	KindGeneral
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindGeneral:
		return "general"
	default:
		return "unknown"
	}
}

// AppError is a user-facing error. It is transient: created per failed
// operation and replaced by the next one or cleared explicitly.
type AppError struct {
	Title   string
	Message string
	Kind    Kind
}

func (e *AppError) Error() string {
	return e.Title + ": " + e.Message
}

// Network builds a connection-class error. An empty message selects the
// default guidance.
func Network(message string) *AppError {
	if message == "" {
		message = "Check your internet connection and try again."
	}
	return &AppError{Title: "Connection Problem", Message: message, Kind: KindNetwork}
}

// Server builds a server-fault error. An empty message selects the default.
func Server(message string) *AppError {
	if message == "" {
		message = "The server is currently unreachable. Please try again later."
	}
	return &AppError{Title: "Server Error", Message: message, Kind: KindServer}
}

// Validation builds an input-rejection error with the given reason.
func Validation(message string) *AppError {
	return &AppError{Title: "Invalid Input", Message: message, Kind: KindValidation}
}

// Authentication builds a sign-in-required error. An empty message selects
// the default.
func Authentication(message string) *AppError {
	if message == "" {
		message = "Your session has expired. Please sign in again."
	}
	return &AppError{Title: "Sign-in Required", Message: message, Kind: KindAuthentication}
}

// General wraps an unclassified technical message for diagnostic value.
func General(message string) *AppError {
	return &AppError{
		Title:   "Something Went Wrong",
		Message: fmt.Sprintf("An unexpected error occurred: %s", message),
		Kind:    KindGeneral,
	}
}

// Classify maps any error onto the taxonomy. It is pure and total:
//
//	api.ErrBadRequest      → Validation
//	*api.ServerError       → Server (carrying the server's message)
//	api.ErrDecoding        → Server ("unexpected response ...")
//	api.ErrInvalidResponse → Network
//	already an *AppError   → returned unchanged
//	anything else          → General wrapping the original message
//
// Classify(nil) returns nil.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var serverErr *api.ServerError
	switch {
	case errors.Is(err, api.ErrBadRequest):
		return Validation("Invalid request. Check your input.")
	case errors.As(err, &serverErr):
		return Server(serverErr.Message)
	case errors.Is(err, api.ErrDecoding):
		return Server("Unexpected response from the server.")
	case errors.Is(err, api.ErrInvalidResponse):
		return Network("")
	default:
		return General(err.Error())
	}
}
