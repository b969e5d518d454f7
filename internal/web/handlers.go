package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studylog/studylog/internal/core"
	"github.com/studylog/studylog/internal/logging"
)

// handlePreview parses an uploaded study CSV (and optional text CSV)
// and returns the dry-run result with a preview token.
//
// Multipart fields: study_csv (required), text_csv (optional).
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondErrorStatus(w, r, fmt.Errorf("file too large or invalid form: %w", err), http.StatusBadRequest)
		return
	}

	study, err := readFormFile(r, "study_csv")
	if err != nil {
		s.respondErrorStatus(w, r, errors.New("no file provided: study_csv"), http.StatusBadRequest)
		return
	}

	text, err := readFormFile(r, "text_csv")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		s.respondErrorStatus(w, r, fmt.Errorf("text_csv: %w", err), http.StatusBadRequest)
		return
	}

	result, err := s.service.Preview(r.Context(), *study, text)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleConfirm commits a previously previewed import.
//
// Body: {"preview_id": "..."}.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PreviewID string `json:"preview_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PreviewID == "" {
		s.respondErrorStatus(w, r, errors.New("preview_id is required"), http.StatusBadRequest)
		return
	}

	result, err := s.service.Confirm(r.Context(), req.PreviewID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleBatchImport imports every study/text CSV pair found in a
// directory on the server's filesystem.
//
// Body: {"data_dir": "..."}; an empty body uses the configured default.
func (s *Server) handleBatchImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DataDir string `json:"data_dir"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondErrorStatus(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
			return
		}
	}
	dir := req.DataDir
	if dir == "" {
		dir = s.cfg.Import.DataDir
	}

	logging.FromContext(r.Context()).Info("batch import requested", "dir", dir)

	result, err := s.service.BatchImport(r.Context(), dir)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListSessions returns every committed session with row counts.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// handleGetSession returns one session by id.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondErrorStatus(w, r, errors.New("invalid session id"), http.StatusBadRequest)
		return
	}

	session, err := s.service.GetSession(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleDeleteSession deletes a session and all of its cascaded rows.
// Required before re-importing the same term.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondErrorStatus(w, r, errors.New("invalid session id"), http.StatusBadRequest)
		return
	}

	if err := s.service.DeleteSession(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// handleHealthz reports liveness including database connectivity.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		s.respondErrorStatus(w, r, fmt.Errorf("database ping: %w", err), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readFormFile reads one multipart file field fully into memory.
// Uploads are bounded by IMPORT_MAX_FILE_SIZE before this point.
func readFormFile(r *http.Request, field string) (*core.FileUpload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &core.FileUpload{Name: header.Filename, Data: data}, nil
}
