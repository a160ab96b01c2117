package internal

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindHTTPStatus
	KindDecode
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http_status"
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

// APIError is the single failure type the portal surfaces: every upstream
// or validation failure is one of the four kinds, with the server-provided
// message when there is one.
type APIError struct {
	Kind    ErrorKind
	Status  int // upstream HTTP status, KindHTTPStatus only
	Message string
}

func (e *APIError) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func validationError(format string, args ...any) *APIError {
	return &APIError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// httpStatusFor maps an error to the status the portal replies with.
func httpStatusFor(err error) int {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	switch apiErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindHTTPStatus:
		return apiErr.Status
	default:
		return http.StatusBadGateway
	}
}
