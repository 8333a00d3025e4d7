// Package http provides the JSON API server and its handlers.
//
// This file implements a small builder for JSON responses so every handler
// answers with the same content type and error shape.

package http

import (
	"bytes"
	"encoding/json"
	"net/http"
)

const jsonContentType = "application/json; charset=utf-8"

// ErrorBody is the payload of every non-2xx JSON response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSONResponseBuilder provides a fluent API for building responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	raw        []byte
	rawSet     bool
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    map[string]string{"Content-Type": jsonContentType},
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

// Payload sets the value encoded as the response body.
func (b *JSONResponseBuilder) Payload(v any) *JSONResponseBuilder {
	b.payload = v
	b.rawSet = false
	return b
}

// Body sends content verbatim with the given content type.
func (b *JSONResponseBuilder) Body(contentType string, content []byte) *JSONResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.raw = content
	b.rawSet = true
	return b
}

// Write sends the built response. Encoding happens before any header is
// written so a marshalling failure can still become a clean 500.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	body := b.raw
	if !b.rawSet && b.payload != nil && b.statusCode != http.StatusNoContent {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(b.payload); err != nil {
			w.Header().Set("Content-Type", jsonContentType)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
			return
		}
		body = buf.Bytes()
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.statusCode == http.StatusNoContent {
		w.Header().Del("Content-Type")
	}
	w.WriteHeader(b.statusCode)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Payload(ErrorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// InternalServerError hides the cause from the client; callers log it.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal error")
}

func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").
		Header("Retry-After", "60")
}
