package web

// errors.go provides unified error response handling for the web layer.
//
// Handlers call respondError with the raw error; the technical detail
// is logged with the request id for correlation while the client gets
// the mapped user message and a status derived from the error kind.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/studylog/studylog/internal/core"
	"github.com/studylog/studylog/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes the mapped user
// message as JSON, with the status derived from the error kind.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondErrorStatus(w, r, err, statusFromError(err))
}

// respondErrorStatus is respondError with an explicit status, for
// request-shape failures the error kinds do not cover.
func (s *Server) respondErrorStatus(w http.ResponseWriter, r *http.Request, err error, status int) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	respondErrorJSON(w, userMsg, status)
}

// statusFromError maps error kinds to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, core.ErrMalformedCSV),
		errors.Is(err, core.ErrUnparsableFilename):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateSession),
		errors.Is(err, core.ErrCommitConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrPreviewExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON writes a success response as JSON.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
