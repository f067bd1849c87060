package server

import (
	"encoding/json"
	"net/http"

	"github.com/lifetree/lifetree/pkg/errors"
)

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and writes it as JSON. Internal
// details are not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(err)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		code, msg = errors.ErrCodeInternal, "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func statusFor(err error) int {
	if errors.IsStructural(err) {
		return http.StatusUnprocessableEntity
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized, errors.ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func notFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}

func badRequest(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, format, args...)
}
