// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses
// and the mapping from service errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"financetracker/internal/auth"
	"financetracker/internal/core"
	"financetracker/internal/log"
	"financetracker/internal/storage"
)

const contentTypeJSON = "application/json"

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

type errorBody struct {
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// nonFieldErrors is the key for errors not tied to one input.
const nonFieldErrors = "non_field_errors"

// ErrorResponse creates a standard {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// ValidationErrorResponse reports ve under its field name.
func ValidationErrorResponse(statusCode int, ve *core.ValidationError) *JSONResponseBuilder {
	field := ve.Field
	if field == "" {
		field = nonFieldErrors
	}
	return NewJSONResponse().Status(statusCode).Body(errorBody{
		Error:  ve.Message,
		Errors: map[string][]string{field: {ve.Message}},
	})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, "Not found.")
}

func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message).Header("WWW-Authenticate", `Bearer realm="financetracker"`)
}

func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "Internal server error.")
}

const invalidLoginMessage = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// errorResponseFor maps a service error to a response. Duplicates are
// checked before generic validation so they get 409.
func errorResponseFor(err error) (*JSONResponseBuilder, string) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve) && errors.Is(err, core.ErrDuplicate):
		return ValidationErrorResponse(http.StatusConflict, ve), log.ErrorTypeConflict
	case errors.As(err, &ve):
		return ValidationErrorResponse(http.StatusUnprocessableEntity, ve), log.ErrorTypeValidation
	case errors.Is(err, auth.ErrInvalidCredentials):
		return UnauthorizedError(invalidLoginMessage), log.ErrorTypeAuth
	case errors.Is(err, storage.ErrNotFound):
		return NotFoundError(), log.ErrorTypeNotFound
	case errors.Is(err, storage.ErrDuplicate):
		return ErrorResponse(http.StatusConflict, "Already exists."), log.ErrorTypeConflict
	case errors.Is(err, errMalformedBody):
		return BadRequestError("Malformed request body."), log.ErrorTypeValidation
	default:
		return InternalServerError(), log.ErrorTypeInternal
	}
}

// writeError logs err at a level matching its class and writes the mapped response.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp, errType := errorResponseFor(err)
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentHTTP)
	fields := log.NewFields().WithOperation(op).WithError(err, errType)
	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		fields.WithUser(p.UserID)
	}
	if errType == log.ErrorTypeInternal {
		logger.ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", fields.ToSlice()...)
	}
	resp.Write(w)
}
