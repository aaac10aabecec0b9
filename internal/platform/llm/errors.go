package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ErrorKind string

const (
	ModelUnavailable       ErrorKind = "model_unavailable"
	ModelTimeout           ErrorKind = "model_timeout"
	ModelMalformedResponse ErrorKind = "model_malformed_response"
)

// Error is a classified generation failure. Error() returns the underlying message so
// callers can show it verbatim.
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatusError is returned by HTTP based providers for non-2xx responses.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("model http %d: %s", e.StatusCode, e.Body)
}

func Malformed(provider string, format string, args ...any) *Error {
	return &Error{Kind: ModelMalformedResponse, Provider: provider, Err: fmt.Errorf(format, args...)}
}

// Classify wraps err into an *Error, inferring the kind from context, gRPC, googleapi and
// HTTP status information. Already classified errors are returned unchanged.
func Classify(provider string, err error) *Error {
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	return &Error{Kind: kindOf(err), Provider: provider, Err: err}
}

// KindOf reports the kind of a classified error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) && le != nil {
		return le.Kind
	}
	return ""
}

func kindOf(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ModelTimeout
	}
	var he *HTTPStatusError
	if errors.As(err, &he) {
		return kindFromHTTP(he.StatusCode)
	}
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		return kindFromHTTP(ge.Code)
	}
	if st, ok := status.FromError(err); ok && st.Code() == codes.DeadlineExceeded {
		return ModelTimeout
	}
	return ModelUnavailable
}

func kindFromHTTP(code int) ErrorKind {
	switch code {
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ModelTimeout
	default:
		return ModelUnavailable
	}
}
