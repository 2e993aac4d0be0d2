// Package errors carries the typed failures raised by the services and turns
// them into RFC 7807 problem responses.
//
// Services return *Error values built with the Kind constructors below; the
// HTTP layer never decides status codes itself, it hands every failure to
// ErrorHandler.HandleError.
package errors

import (
	"fmt"
	"maps"
	"net/http"
)

// Kind classifies a failure. Each kind owns one HTTP status and problem type.
type Kind string

const (
	KindValidation       Kind = "VALIDATION"
	KindParsing          Kind = "PARSING"
	KindNotFound         Kind = "NOT_FOUND"
	KindExport           Kind = "EXPORT"
	KindConfig           Kind = "CONFIG"
	KindUnavailable      Kind = "UNAVAILABLE"
	KindTooLarge         Kind = "PAYLOAD_TOO_LARGE"
	KindUnsupportedMedia Kind = "UNSUPPORTED_MEDIA_TYPE"
	KindRateLimited      Kind = "RATE_LIMITED"
	KindTimeout          Kind = "TIMEOUT"
	KindInternal         Kind = "INTERNAL"
)

type kindInfo struct {
	status      int
	problemType string
	title       string
}

var kindInfos = map[Kind]kindInfo{
	KindValidation:       {http.StatusBadRequest, TypeValidation, "Validation Failed"},
	KindParsing:          {http.StatusBadRequest, TypeParsing, "Unreadable Input"},
	KindNotFound:         {http.StatusNotFound, TypeNotFound, "Resource Not Found"},
	KindExport:           {http.StatusInternalServerError, TypeExport, "Export Failed"},
	KindConfig:           {http.StatusInternalServerError, TypeConfig, "Server Misconfigured"},
	KindUnavailable:      {http.StatusServiceUnavailable, TypeServiceDown, "Service Unavailable"},
	KindTooLarge:         {http.StatusRequestEntityTooLarge, TypePayloadTooLarge, "Payload Too Large"},
	KindUnsupportedMedia: {http.StatusUnsupportedMediaType, TypeValidation, "Unsupported Media Type"},
	KindRateLimited:      {http.StatusTooManyRequests, TypeRateLimit, "Too Many Requests"},
	KindTimeout:          {http.StatusGatewayTimeout, TypeTimeout, "Request Timeout"},
	KindInternal:         {http.StatusInternalServerError, TypeInternal, "Internal Server Error"},
}

func (k Kind) info() kindInfo {
	if s, ok := kindInfos[k]; ok {
		return s
	}
	return kindInfos[KindInternal]
}

// Status is the HTTP status a failure of this kind is reported with
func (k Kind) Status() int { return k.info().status }

// Error is a classified failure. Code refines Kind for clients that branch on
// error_code; Fields are copied into the problem body as extensions.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
	Fields  map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// ErrorCode is the machine-readable code sent as the error_code extension
func (e *Error) ErrorCode() string {
	if e.Code != "" {
		return e.Code
	}
	return string(e.Kind)
}

// With returns a copy of e carrying an extra field. The receiver is left
// untouched so the package-level sentinels below stay shareable.
func (e *Error) With(key string, value any) *Error {
	c := *e
	c.Fields = maps.Clone(e.Fields)
	if c.Fields == nil {
		c.Fields = make(map[string]any, 1)
	}
	c.Fields[key] = value
	return &c
}

func newError(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

func Validation(message string, cause error) *Error {
	return newError(KindValidation, "", message, cause)
}

func Parsing(message string, cause error) *Error {
	return newError(KindParsing, "", message, cause)
}

func Export(message string, cause error) *Error {
	return newError(KindExport, "", message, cause)
}

func NotFound(resource string) *Error {
	return newError(KindNotFound, "", resource+" not found", nil)
}

func Config(message string, cause error) *Error {
	return newError(KindConfig, "", message, cause)
}

// Unavailable marks a backend that is switched off or cannot be reached
func Unavailable(message string, cause error) *Error {
	return newError(KindUnavailable, "", message, cause)
}

// FieldError is one rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InvalidFields reports request fields that failed validation
func InvalidFields(violations ...FieldError) *Error {
	return newError(KindValidation, "VALIDATION_FAILED", "Request validation failed", nil).
		With("errors", violations)
}

// BadRequest wraps a body that could not be decoded at all
func BadRequest(cause error) *Error {
	return newError(KindValidation, "INVALID_REQUEST", "Invalid request format", cause).
		With("details", cause.Error())
}

// Request-level sentinels. Never mutate these; use With to derive.
var (
	ErrMissingFile        = newError(KindValidation, "MISSING_FILE", "No file uploaded", nil)
	ErrEmptyFilename      = newError(KindValidation, "EMPTY_FILENAME", "Empty filename", nil)
	ErrUnsupportedFormat  = newError(KindValidation, "UNSUPPORTED_FORMAT", "Unsupported file format. Use CSV or Excel", nil)
	ErrMissingContentType = newError(KindValidation, "MISSING_CONTENT_TYPE", "Content-Type header is required", nil)
	ErrUnsupportedMedia   = newError(KindUnsupportedMedia, "", "Unsupported content type", nil)
	ErrMetricsDisabled    = newError(KindUnavailable, "SERVICE_UNAVAILABLE", "Metrics export is disabled", nil)
)
