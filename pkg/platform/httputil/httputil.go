// Package httputil holds the JSON envelope helpers shared by every handler.
package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	dErrors "usermgmt/pkg/domain-errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

// DefaultMaxBodyBytes caps request bodies when the caller does not choose a limit.
const DefaultMaxBodyBytes int64 = 1 << 20

// internalMessage is the only text a caller sees for uncoded failures.
const internalMessage = "An internal error occurred."

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the envelope for operations that return no entity.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into a status and JSON error envelope. Coded
// errors expose their message; anything else is reported as an internal error
// without leaking its text.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := internalMessage
	if de, ok := dErrors.As(err); ok {
		status = ToHTTPStatus(de.Code)
		if de.Message != "" {
			msg = de.Message
		}
	}
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// ToHTTPStatus maps a domain code to its HTTP status.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound, dErrors.CodeRouteNotFound:
		return http.StatusNotFound
	case dErrors.CodeValidation:
		return http.StatusBadRequest
	default:
		// CodeBadRequest lands here too: malformed bodies have always
		// surfaced as 500 and clients depend on it.
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads at most maxBytes from the request body into T. Unknown
// fields are tolerated so clients can echo full records back.
func DecodeJSON[T any](r *http.Request, maxBytes int64) (T, error) {
	var v T
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	if r.Body == nil {
		return v, dErrors.New(dErrors.CodeBadRequest, "Request body is empty.")
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return v, dErrors.Wrap(err, dErrors.CodeBadRequest, "Request body could not be read.")
	}
	if int64(len(body)) > maxBytes {
		return v, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("Request body exceeds %d bytes.", maxBytes))
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return v, dErrors.New(dErrors.CodeBadRequest, "Request body is empty.")
	}
	// null would decode into the zero value without error.
	if bytes.Equal(trimmed, []byte("null")) {
		return v, dErrors.New(dErrors.CodeBadRequest, "Request body must not be null.")
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, dErrors.Wrap(err, dErrors.CodeBadRequest, "Request body is not valid JSON for this resource.")
	}
	return v, nil
}
