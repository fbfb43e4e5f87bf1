package pocketbase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Static errors for err113 compliance. Both are returned wrapped with context
// and before any network activity.
var (
	// ErrUnauthenticated is returned when an operation requires a credential
	// and none is set on the client context.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidConfig is returned when caller-supplied configuration is
	// malformed or self-contradictory.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// FieldError is the validation detail PocketBase reports per field.
type FieldError struct {
	Code    string `json:"code"    yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// APIError represents a non-2xx response from the PocketBase API.
type APIError struct {
	// Status is the HTTP status code of the response.
	Status  int                   `json:"-"       yaml:"status"`
	Code    int                   `json:"code"    yaml:"code"`
	Message string                `json:"message" yaml:"message"`
	Data    map[string]FieldError `json:"data"    yaml:"data"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
	}

	fields := make([]string, 0, len(e.Data))
	for name, detail := range e.Data {
		fields = append(fields, name+": "+detail.Message)
	}

	sort.Strings(fields)

	return fmt.Sprintf("%s (code: %d; %s)", e.Message, e.Code, strings.Join(fields, ", "))
}

// StatusCode returns the HTTP status, falling back to the payload code.
func (e *APIError) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}

	return e.Code
}

// ParseAPIError builds an APIError from a non-2xx response. Bodies that do not
// match the {code, message, data} shape keep the HTTP status as code and the
// trimmed body (or the status text) as message.
func ParseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Status: status,
		Code:   status,
		Data:   map[string]FieldError{},
	}

	var payload struct {
		Code    *int                       `json:"code"`
		Message *string                    `json:"message"`
		Data    map[string]json.RawMessage `json:"data"`
	}

	err := json.Unmarshal(body, &payload)
	if err == nil && payload.Message != nil {
		apiErr.Message = *payload.Message
		if payload.Code != nil && *payload.Code != 0 {
			apiErr.Code = *payload.Code
		}

		for field, raw := range payload.Data {
			var detail FieldError
			if json.Unmarshal(raw, &detail) == nil {
				apiErr.Data[field] = detail
			}
		}

		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}

	return apiErr
}

// TransportError wraps a network, timeout, DNS or cancellation failure.
type TransportError struct {
	Op  string
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// SerializationError is returned when a request body cannot be encoded or a
// response body cannot be decoded.
type SerializationError struct {
	Op   string
	Body []byte
	Err  error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SerializationError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies an error returned by the client.
type ErrorKind int

// Error kinds.
const (
	KindUnknown ErrorKind = iota
	KindTransport
	KindSerialization
	KindAPI
	KindUnauthenticated
	KindInvalidConfig
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindSerialization:
		return "serialization"
	case KindAPI:
		return "api"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidConfig:
		return "invalid_config"
	case KindUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// ErrorKindOf reports which variant of the taxonomy err belongs to.
func ErrorKindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return KindAPI
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrInvalidConfig):
		return KindInvalidConfig
	}

	transportErr := &TransportError{}
	if errors.As(err, &transportErr) {
		return KindTransport
	}

	serializationErr := &SerializationError{}
	if errors.As(err, &serializationErr) {
		return KindSerialization
	}

	return KindUnknown
}

// AsAPIError extracts the APIError from err, if any.
func AsAPIError(err error) (*APIError, bool) {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsStatus checks if the error is an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)

	return ok && apiErr.StatusCode() == status
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return IsStatus(err, http.StatusForbidden)
}

// IsBadRequest checks if the error is a bad request error.
func IsBadRequest(err error) bool {
	return IsStatus(err, http.StatusBadRequest)
}

// IsUnauthenticated checks if the operation was rejected locally for lack of a credential.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsInvalidConfig checks if the operation was rejected locally for bad configuration.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
