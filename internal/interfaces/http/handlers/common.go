// Package handlers implements the HTTP endpoints of the dashboard.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// writeJSON writes data as JSON with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps err to a status code through its ErrorCode. Server
// errors only expose the default message for their code.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown || code == errors.CodeOK {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: string(code), Message: errors.DefaultMessageForCode(code)}
	if status < http.StatusInternalServerError {
		var ae *errors.AppError
		if errors.As(err, &ae) {
			resp.Message = ae.Message
			resp.Detail = ae.Detail
		}
	}
	writeJSON(w, status, resp)
}
