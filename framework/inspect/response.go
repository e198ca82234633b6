package inspect

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/km-arc/go-container/framework/container"
)

// Response writes inspector replies. JSON bodies use one envelope:
//
//	{"data": ...}       on success
//	{"message": "..."}  on failure
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// JSON sends v as-is with status.
func (res *Response) JSON(status int, v any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(v)
}

// Success sends 200 {"data": v}.
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Fail sends err's message with the status StatusFor picks.
func (res *Response) Fail(err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	res.JSON(status, envelope{"message": msg})
}

// YAML sends an encoded YAML document.
func (res *Response) YAML(body []byte) {
	res.w.Header().Set("Content-Type", "application/yaml")
	res.w.WriteHeader(http.StatusOK)
	_, _ = res.w.Write(body)
}

// StatusFor maps container errors to HTTP status codes. Missing services
// and parameters are 404; anything else is a server error.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case container.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, container.ErrInvalidParameterName),
		errors.Is(err, container.ErrMalformedPlaceholder):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type envelope map[string]any
